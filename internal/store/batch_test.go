package store

import (
	"errors"
	"testing"
)

func TestBatchedQuery_ChunkingAndOrder(t *testing.T) {
	const chunkSize = 5

	cases := []struct {
		name      string
		n         int
		wantCalls int
	}{
		{"empty", 0, 0},
		{"single", 1, 1},
		{"one below limit", chunkSize - 1, 1},
		{"exactly limit", chunkSize, 1},
		{"one above limit", chunkSize + 1, 2},
		{"ten chunks", chunkSize * 10, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ids := make([]int64, tc.n)
			for i := range ids {
				ids[i] = int64(i + 1)
			}

			calls := 0
			out, err := batchedQuery(ids, chunkSize, func(chunk []int64) ([]int64, error) {
				calls++
				if len(chunk) > chunkSize {
					t.Errorf("chunk size %d exceeds limit %d", len(chunk), chunkSize)
				}
				return chunk, nil
			})
			if err != nil {
				t.Fatalf("batchedQuery: %v", err)
			}

			if calls != tc.wantCalls {
				t.Errorf("calls: got %d, want %d", calls, tc.wantCalls)
			}
			if len(out) != tc.n {
				t.Fatalf("output length: got %d, want %d", len(out), tc.n)
			}
			// Concatenation must preserve input order with no dropped or
			// duplicated elements.
			for i, v := range out {
				if v != int64(i+1) {
					t.Fatalf("out[%d]: got %d, want %d", i, v, i+1)
				}
			}
		})
	}
}

func TestBatchedQuery_ErrorAbortsWhole(t *testing.T) {
	ids := make([]int64, 12)
	boom := errors.New("boom")

	calls := 0
	out, err := batchedQuery(ids, 5, func(chunk []int64) ([]int64, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return chunk, nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no partial results, got %d", len(out))
	}
	// The third chunk must never run.
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestBatchedQuery_DefaultLimit(t *testing.T) {
	ids := make([]int, ParamLimit+1)

	calls := 0
	_, err := BatchedQuery(ids, func(chunk []int) ([]int, error) {
		calls++
		return nil, nil
	})
	if err != nil {
		t.Fatalf("BatchedQuery: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}
