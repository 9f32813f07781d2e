// Package domain defines the core entities served by the Illustash server.
package domain

// IllustType enumerates the kinds of saved illustrations.
type IllustType string

const (
	// IllustTypeIllust is a standard single- or multi-page illustration.
	IllustTypeIllust IllustType = "illust"
	// IllustTypeUgoira is a multi-frame animation.
	IllustTypeUgoira IllustType = "ugoira"
)

// AI classification tiers assigned by the upstream source.
// AITypeUnknown ("inconclusive") is treated as non-AI by convention.
const (
	AITypeNone      = 0
	AITypeUnknown   = 1
	AITypeGenerated = 2
)

// ImageURLs holds the resized variants of an illustration image.
type ImageURLs struct {
	SquareMedium string `json:"square_medium"`
	Medium       string `json:"medium"`
	Large        string `json:"large"`
	Original     string `json:"original,omitempty"`
}

// MetaSinglePage holds metadata for single-page illustrations.
type MetaSinglePage struct {
	OriginalImageURL string `json:"original_image_url,omitempty"`
}

// MetaPage holds per-page metadata for multi-page illustrations.
type MetaPage struct {
	ImageURLs ImageURLs `json:"image_urls"`
}

// Illust is one saved illustration with its denormalized author and tags.
// Scalar fields map 1:1 to columns; ImageURLs, MetaSinglePage, MetaPages and
// Tools are stored as JSON-serialized TEXT and parsed on read.
type Illust struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	Type            IllustType     `json:"type"`
	Caption         string         `json:"caption"`
	CreateDate      string         `json:"create_date"`
	PageCount       int            `json:"page_count"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	SanityLevel     int            `json:"sanity_level"`
	TotalView       int            `json:"total_view"`
	TotalBookmarks  int            `json:"total_bookmarks"`
	IsBookmarked    bool           `json:"is_bookmarked"`
	Visible         bool           `json:"visible"`
	XRestrict       int            `json:"x_restrict"`
	IsMuted         bool           `json:"is_muted"`
	TotalComments   int            `json:"total_comments"`
	AIType          int            `json:"illust_ai_type"`
	BookStyle       int            `json:"illust_book_style"`
	Restrict        int            `json:"restrict"`
	BookmarkPrivate bool           `json:"bookmark_private"`
	ImageURLs       ImageURLs      `json:"image_urls"`
	MetaSinglePage  MetaSinglePage `json:"meta_single_page"`
	MetaPages       []MetaPage     `json:"meta_pages"`
	Tools           []string       `json:"tools"`
	URL             *string        `json:"url"`
	User            *User          `json:"user,omitempty"`
	Tags            []Tag          `json:"tags,omitempty"`
}

// User is the uploader of an illustration.
type User struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Account          string    `json:"account"`
	ProfileImageURLs ImageURLs `json:"profile_image_urls"`
	IsFollowed       *bool     `json:"is_followed"`
}

// Tag is one entry in the tag vocabulary. Name is globally unique;
// TranslatedName is nil when the upstream source carries no translation.
type Tag struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	TranslatedName *string `json:"translated_name"`
}
