package domain

// Defaults applied by the normalizer when an upstream record is missing a field.
const (
	UnknownAuthorName = "Unknown Author"
	UnknownReaderName = "Unknown Reader"
	UnknownBookTitle  = "Untitled Audiobook"
	DefaultCoverURL   = "https://librivox.app/assets/default-cover.png"

	// ChapterCountUnknown marks a listing entry whose section count was not
	// reported by the upstream record.
	ChapterCountUnknown = -1
)

// AuthorRef is a lightweight reference to an author carried by listing entries.
type AuthorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ReaderRef is a lightweight reference to a reader carried by chapter entries.
type ReaderRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CatalogEntry is one audiobook as it appears in a listing or search result.
// Entries are immutable once constructed and are never persisted.
type CatalogEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       AuthorRef `json:"author"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	ChapterCount int       `json:"chapterCount"`
	URL          string    `json:"url"`
}

// ChapterEntry is one section of an audiobook. Index is zero-based and stable
// only for the BookDetail snapshot it belongs to.
type ChapterEntry struct {
	Index       int         `json:"index"`
	Title       string      `json:"title"`
	DurationSec int         `json:"durationSec"`
	SectionID   string      `json:"sectionId,omitempty"`
	FileURL     string      `json:"fileUrl,omitempty"`
	HLSID       string      `json:"hlsId,omitempty"`
	Readers     []ReaderRef `json:"readers,omitempty"`
}

// AuthorEntity is a fully resolved author channel.
type AuthorEntity struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Links        []string `json:"links,omitempty"`
	// Lifespan is a display string derived from birth/death year fields,
	// e.g. "1835–1910". Empty when neither year is known.
	Lifespan string `json:"lifespan,omitempty"`
}

// ReaderEntity is a fully resolved reader channel. Readers are cached keyed
// by id in the persisted state.
type ReaderEntity struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Links        []string `json:"links,omitempty"`
}

// BookDetail is the resolved detail view of one audiobook, keyed in the
// persisted cache by canonical id or URL.
type BookDetail struct {
	ID          string         `json:"id"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Author      AuthorRef      `json:"author"`
	Authors     []AuthorRef    `json:"authors,omitempty"`
	CoverURL    string         `json:"coverUrl"`
	Chapters    []ChapterEntry `json:"chapters"`
	Views       int64          `json:"views,omitempty"`
}

// AudioSource is one playable representation of a chapter.
type AudioSource struct {
	Label       string `json:"label"`
	Container   string `json:"container"`
	Codec       string `json:"codec"`
	URL         string `json:"url"`
	DurationSec int    `json:"durationSec"`
}

// ChapterDetail is a chapter together with its resolved audio sources.
type ChapterDetail struct {
	BookID    string        `json:"bookId"`
	BookTitle string        `json:"bookTitle"`
	Chapter   ChapterEntry  `json:"chapter"`
	Sources   []AudioSource `json:"sources"`
}

// ChannelKind discriminates the two channel shapes an URL can resolve to.
type ChannelKind string

const (
	ChannelAuthor ChannelKind = "author"
	ChannelReader ChannelKind = "reader"
)

// Channel is the result of resolving an author or reader URL. Exactly one of
// Author and Reader is set, matching Kind.
type Channel struct {
	Kind   ChannelKind   `json:"kind"`
	Author *AuthorEntity `json:"author,omitempty"`
	Reader *ReaderEntity `json:"reader,omitempty"`
}
