package store

// ParamLimit is the maximum number of bound parameters SQLite accepts in a
// single statement. Any query keyed by an arbitrarily large ID list must be
// split into chunks of at most this size.
const ParamLimit = 500

// BatchedQuery runs fn over ids in chunks of at most ParamLimit elements and
// concatenates the results in chunk order. Chunks are processed sequentially
// to bound load on the store. Empty input returns an empty result without
// invoking fn. Any chunk error aborts the whole operation; no partial results
// are returned.
func BatchedQuery[ID any, R any](ids []ID, fn func(chunk []ID) ([]R, error)) ([]R, error) {
	return batchedQuery(ids, ParamLimit, fn)
}

func batchedQuery[ID any, R any](ids []ID, size int, fn func(chunk []ID) ([]R, error)) ([]R, error) {
	var all []R
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		results, err := fn(ids[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}
