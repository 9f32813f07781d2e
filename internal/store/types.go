package store

// Restrict filters by bookmark visibility.
type Restrict string

// Restrict values.
const (
	RestrictAll     Restrict = "all"
	RestrictPublic  Restrict = "public"
	RestrictPrivate Restrict = "private"
)

// Aspect filters by image orientation. A square image satisfies both
// horizontal and vertical; this mirrors the upstream behavior and is
// intentionally kept.
type Aspect string

// Aspect values.
const (
	AspectAll        Aspect = "all"
	AspectHorizontal Aspect = "horizontal"
	AspectVertical   Aspect = "vertical"
)

// SizerMode selects which dimension a minimum-size threshold applies to.
type SizerMode string

// SizerMode values.
const (
	SizerNone   SizerMode = "none"
	SizerWidth  SizerMode = "width"
	SizerHeight SizerMode = "height"
)

// AIMode filters by AI-generation classification.
type AIMode string

// AIMode values.
const (
	AIModeAll       AIMode = "all"
	AIModeNonAIOnly AIMode = "non-ai-only"
	AIModeAIOnly    AIMode = "ai-only"
)

// SearchFilters holds the scalar predicates of a search request.
// Zero values mean "no restriction": each field contributes a predicate only
// when it deviates from its no-op default. A MaxPageCount of zero or below
// means no upper bound.
type SearchFilters struct {
	Restrict     Restrict
	Aspect       Aspect
	SizerMode    SizerMode
	SizerSize    int
	MinPageCount int
	MaxPageCount int
	AIMode       AIMode
}
