package librivox

// Raw upstream records. The feed API and the HTML fallback produce different
// shapes for the same entities; both are carried here untouched and fed into
// one normalization pass. Alternate json fields cover upstream renames seen
// across feed revisions.

// APIAuthorRecord is an author as the feed API reports it.
type APIAuthorRecord struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	URL       string   `json:"url"`
	ImageURL  string   `json:"image_url"`
	BirthYear string   `json:"dob"`
	DeathYear string   `json:"dod"`
	Links     []string `json:"links"`
}

// APIReaderRecord is a reader as the feed API reports it.
type APIReaderRecord struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"display_name"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"image_url"`
	Links       []string `json:"links"`
}

// APISectionRecord is one audiobook section.
type APISectionRecord struct {
	ID            int64             `json:"id"`
	SectionNumber int               `json:"section_number"`
	Title         string            `json:"title"`
	Duration      int               `json:"playtime"`
	FileURL       string            `json:"file_url"`
	HLSID         string            `json:"hls_id"`
	Readers       []APIReaderRecord `json:"readers"`
}

// APIBookRecord is an audiobook as the feed API reports it. Title/Name and
// the cover fields are alternates from different feed revisions.
type APIBookRecord struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	URL          string            `json:"url"`
	Author       *APIAuthorRecord  `json:"author"`
	Authors      []APIAuthorRecord `json:"authors"`
	CoverURL     string            `json:"cover_url"`
	ThumbnailURL string            `json:"thumbnail_url"`
	Description  string            `json:"description"`
	NumSections  int               `json:"num_sections"`
	Views        int64             `json:"views"`
}

// APIReaderItemRecord is one entry of a reader-channel listing. Depending on
// the feed revision it is either book-shaped (the embedded fields) or
// section-shaped, in which case audiobook_id tags the parent book the
// narrated section belongs to.
type APIReaderItemRecord struct {
	APIBookRecord
	AudiobookID    int64  `json:"audiobook_id"`
	AudiobookTitle string `json:"audiobook_title"`
	AudiobookURL   string `json:"audiobook_url"`
	AudiobookCover string `json:"audiobook_cover"`
}

// SectionShaped reports whether this entry is a narrated section rather than
// a flat book record.
func (r APIReaderItemRecord) SectionShaped() bool {
	return r.AudiobookID != 0
}

// apiDetailEnvelope is the structured detail response. A response missing
// either field does not count as usable data and triggers escalation.
type apiDetailEnvelope struct {
	Book     *APIBookRecord     `json:"book"`
	Sections []APISectionRecord `json:"sections"`
}

// ScrapedLink is a name/href pair pulled out of the fallback HTML page.
type ScrapedLink struct {
	Name string
	URL  string
}

// ScrapedChapterRow is one row of the chapter table on a book page.
type ScrapedChapterRow struct {
	Title        string
	URL          string
	Reader       ScrapedLink
	DurationText string
}

// ScrapedBookRecord is a book as extracted from the HTML fallback page.
type ScrapedBookRecord struct {
	URL         string
	Title       string
	Description string
	Authors     []ScrapedLink
	CoverURL    string
	Chapters    []ScrapedChapterRow
}

// RecordSource tags which resolution strategy produced a BookRecord.
type RecordSource string

const (
	SourceAPIByID   RecordSource = "api-id"
	SourceAPIBySlug RecordSource = "api-slug"
	SourceScrape    RecordSource = "scrape"
)

// BookRecord is the tagged-variant result of the detail escalation chain.
// Exactly one of API and Scraped is set, matching Source.
type BookRecord struct {
	Source   RecordSource
	URL      string
	API      *APIBookRecord
	Sections []APISectionRecord
	Scraped  *ScrapedBookRecord
}
