package librivox

import (
	"testing"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

const testSite = "https://librivox.example"

func TestNormalizeBook_Defaults(t *testing.T) {
	entry := NormalizeBook(APIBookRecord{}, testSite)

	if entry.Title != domain.UnknownBookTitle {
		t.Errorf("expected default title, got %q", entry.Title)
	}
	if entry.Author.Name != domain.UnknownAuthorName {
		t.Errorf("expected default author, got %q", entry.Author.Name)
	}
	if entry.ThumbnailURL != domain.DefaultCoverURL {
		t.Errorf("expected default cover, got %q", entry.ThumbnailURL)
	}
	if entry.ChapterCount != domain.ChapterCountUnknown {
		t.Errorf("expected unknown chapter count, got %d", entry.ChapterCount)
	}
}

func TestNormalizeBook_TitleFallsBackToName(t *testing.T) {
	entry := NormalizeBook(APIBookRecord{Name: "Alternate Field Title"}, testSite)
	if entry.Title != "Alternate Field Title" {
		t.Errorf("expected fallback to name field, got %q", entry.Title)
	}
}

func TestNormalizeBook_ThumbnailOrder(t *testing.T) {
	tests := []struct {
		name string
		rec  APIBookRecord
		want string
	}{
		{"large image wins", APIBookRecord{CoverURL: "large.jpg", ThumbnailURL: "thumb.jpg"}, "large.jpg"},
		{"thumbnail second", APIBookRecord{ThumbnailURL: "thumb.jpg"}, "thumb.jpg"},
		{"default last", APIBookRecord{}, domain.DefaultCoverURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBook(tt.rec, testSite).ThumbnailURL; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeBook_URLFromSlug(t *testing.T) {
	entry := NormalizeBook(APIBookRecord{Slug: "moby-dick"}, testSite)
	if entry.URL != testSite+"/moby-dick/" {
		t.Errorf("unexpected detail URL %q", entry.URL)
	}
}

func TestCanonicalBookID(t *testing.T) {
	if got := CanonicalBookID(APIBookRecord{ID: 42, Slug: "s", URL: "u"}); got != "42" {
		t.Errorf("expected numeric id, got %q", got)
	}
	if got := CanonicalBookID(APIBookRecord{Slug: "moby-dick"}); got != "moby-dick" {
		t.Errorf("expected slug, got %q", got)
	}
	if got := CanonicalBookID(APIBookRecord{URL: "https://x/y/"}); got != "https://x/y/" {
		t.Errorf("expected URL, got %q", got)
	}
}

func TestNormalizeDetail_MultiAuthor(t *testing.T) {
	rec := &BookRecord{
		Source: SourceAPIByID,
		API: &APIBookRecord{
			ID:    7,
			Title: "Collected Essays",
			Authors: []APIAuthorRecord{
				{ID: 1, Name: "First Author"},
				{ID: 2, Name: "Second Author"},
			},
		},
		Sections: []APISectionRecord{},
	}
	detail := NormalizeDetail(rec, testSite)

	if detail.Author.Name != "First Author" {
		t.Errorf("primary author should be the first listed, got %q", detail.Author.Name)
	}
	if len(detail.Authors) != 2 {
		t.Fatalf("expected full author list retained, got %d", len(detail.Authors))
	}
	if detail.Authors[1].Name != "Second Author" {
		t.Errorf("unexpected second author %q", detail.Authors[1].Name)
	}
}

func TestNormalizeChapter(t *testing.T) {
	sec := APISectionRecord{
		ID:       900,
		Title:    "Chapter One",
		Duration: 1234,
		FileURL:  "https://files.example/ch1.mp3",
		Readers:  []APIReaderRecord{{ID: 5, DisplayName: "A Reader"}},
	}
	ch := NormalizeChapter(sec, 0)

	if ch.Index != 0 {
		t.Errorf("expected index 0, got %d", ch.Index)
	}
	if ch.SectionID != "900" {
		t.Errorf("expected section id 900, got %q", ch.SectionID)
	}
	if ch.DurationSec != 1234 {
		t.Errorf("expected duration 1234, got %d", ch.DurationSec)
	}
	if len(ch.Readers) != 1 || ch.Readers[0].Name != "A Reader" {
		t.Errorf("unexpected readers %+v", ch.Readers)
	}
}

func TestNormalizeChapter_UntitledFallback(t *testing.T) {
	ch := NormalizeChapter(APISectionRecord{}, 4)
	if ch.Title != "Chapter 5" {
		t.Errorf("expected positional title, got %q", ch.Title)
	}
}

func TestNormalizeAuthor_Lifespan(t *testing.T) {
	tests := []struct {
		birth, death, want string
	}{
		{"1835", "1910", "1835–1910"},
		{"1835", "", "1835–"},
		{"", "1910", "–1910"},
		{"", "", ""},
	}
	for _, tt := range tests {
		a := NormalizeAuthor(APIAuthorRecord{ID: 1, Name: "X", BirthYear: tt.birth, DeathYear: tt.death})
		if a.Lifespan != tt.want {
			t.Errorf("lifespan(%q,%q) = %q, want %q", tt.birth, tt.death, a.Lifespan, tt.want)
		}
	}
}

func TestNormalizeAuthor_NameFromParts(t *testing.T) {
	a := NormalizeAuthor(APIAuthorRecord{ID: 1, FirstName: "Herman", LastName: "Melville"})
	if a.Name != "Herman Melville" {
		t.Errorf("expected composed name, got %q", a.Name)
	}
}

func TestNormalizeReader_Defaults(t *testing.T) {
	r := NormalizeReader(APIReaderRecord{ID: 9})
	if r.Name != domain.UnknownReaderName {
		t.Errorf("expected default reader name, got %q", r.Name)
	}
	if r.ID != "9" {
		t.Errorf("expected id 9, got %q", r.ID)
	}
}

func TestNormalizeDetail_Scraped(t *testing.T) {
	rec := &BookRecord{
		Source: SourceScrape,
		Scraped: &ScrapedBookRecord{
			URL:   "https://librivox.example/moby-dick/",
			Title: "Moby Dick",
			Authors: []ScrapedLink{
				{Name: "Herman Melville", URL: "https://librivox.example/author/142"},
			},
			Chapters: []ScrapedChapterRow{
				{Title: "Loomings", URL: "https://files.example/1.mp3", DurationText: "01:02:03"},
				{Title: "The Carpet-Bag", DurationText: "garbage"},
			},
		},
	}
	detail := NormalizeDetail(rec, testSite)

	if detail.ID != rec.Scraped.URL {
		t.Errorf("scraped detail should be keyed by URL, got %q", detail.ID)
	}
	if detail.Author.ID != "142" {
		t.Errorf("expected author id from URL, got %q", detail.Author.ID)
	}
	if len(detail.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(detail.Chapters))
	}
	if detail.Chapters[0].DurationSec != 3723 {
		t.Errorf("expected 3723s, got %d", detail.Chapters[0].DurationSec)
	}
	if detail.Chapters[1].DurationSec != 0 {
		t.Errorf("malformed duration should be 0, got %d", detail.Chapters[1].DurationSec)
	}
}
