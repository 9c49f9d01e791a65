package librivox

import (
	"fmt"
	"strings"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

// Normalization converts raw upstream records into canonical entities. Every
// function here tolerates missing fields: each output field goes through an
// ordered fallback chain ending in a documented default, so a partial record
// still produces a renderable entity.

// CanonicalBookID derives the cache/dedup key for a raw book record: numeric
// id when present, then slug, then the detail URL.
func CanonicalBookID(rec APIBookRecord) string {
	if rec.ID != 0 {
		return fmt.Sprint(rec.ID)
	}
	if rec.Slug != "" {
		return rec.Slug
	}
	return rec.URL
}

// NormalizeBook converts a raw feed book into a listing entry.
func NormalizeBook(rec APIBookRecord, siteBase string) domain.CatalogEntry {
	title := firstNonEmpty(rec.Title, rec.Name, domain.UnknownBookTitle)

	count := rec.NumSections
	if count <= 0 {
		count = domain.ChapterCountUnknown
	}

	detailURL := rec.URL
	if detailURL == "" && rec.Slug != "" {
		detailURL = siteBase + "/" + rec.Slug + "/"
	}

	return domain.CatalogEntry{
		ID:           CanonicalBookID(rec),
		Title:        title,
		Author:       primaryAuthor(rec),
		ThumbnailURL: firstNonEmpty(rec.CoverURL, rec.ThumbnailURL, domain.DefaultCoverURL),
		ChapterCount: count,
		URL:          detailURL,
	}
}

// primaryAuthor picks the first listed author for single-author consumers.
func primaryAuthor(rec APIBookRecord) domain.AuthorRef {
	if len(rec.Authors) > 0 {
		return NormalizeAuthorRef(rec.Authors[0])
	}
	if rec.Author != nil {
		return NormalizeAuthorRef(*rec.Author)
	}
	return domain.AuthorRef{Name: domain.UnknownAuthorName}
}

// allAuthors retains the full author list for multi-author rendering.
func allAuthors(rec APIBookRecord) []domain.AuthorRef {
	if len(rec.Authors) > 0 {
		refs := make([]domain.AuthorRef, 0, len(rec.Authors))
		for _, a := range rec.Authors {
			refs = append(refs, NormalizeAuthorRef(a))
		}
		return refs
	}
	if rec.Author != nil {
		return []domain.AuthorRef{NormalizeAuthorRef(*rec.Author)}
	}
	return []domain.AuthorRef{{Name: domain.UnknownAuthorName}}
}

// NormalizeAuthorRef converts a raw author into a listing reference.
func NormalizeAuthorRef(a APIAuthorRecord) domain.AuthorRef {
	return domain.AuthorRef{
		ID:   fmt.Sprint(a.ID),
		Name: authorName(a),
		URL:  a.URL,
	}
}

// NormalizeAuthor converts a raw author into a full channel entity.
func NormalizeAuthor(a APIAuthorRecord) domain.AuthorEntity {
	return domain.AuthorEntity{
		ID:           fmt.Sprint(a.ID),
		Name:         authorName(a),
		URL:          a.URL,
		ThumbnailURL: a.ImageURL,
		Links:        a.Links,
		Lifespan:     lifespan(a.BirthYear, a.DeathYear),
	}
}

func authorName(a APIAuthorRecord) string {
	if a.Name != "" {
		return a.Name
	}
	full := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if full != "" {
		return full
	}
	return domain.UnknownAuthorName
}

// lifespan builds the estimated lifespan display string from birth/death
// year fields. Either side may be missing.
func lifespan(birth, death string) string {
	birth, death = strings.TrimSpace(birth), strings.TrimSpace(death)
	if birth == "" && death == "" {
		return ""
	}
	return birth + "–" + death
}

// NormalizeReader converts a raw reader into a channel entity.
func NormalizeReader(r APIReaderRecord) domain.ReaderEntity {
	return domain.ReaderEntity{
		ID:           fmt.Sprint(r.ID),
		Name:         firstNonEmpty(r.DisplayName, r.Name, domain.UnknownReaderName),
		URL:          r.URL,
		ThumbnailURL: r.ImageURL,
		Links:        r.Links,
	}
}

// NormalizeChapter converts a raw section into a chapter entry at the given
// zero-based index.
func NormalizeChapter(sec APISectionRecord, index int) domain.ChapterEntry {
	readers := make([]domain.ReaderRef, 0, len(sec.Readers))
	for _, r := range sec.Readers {
		readers = append(readers, domain.ReaderRef{
			ID:   fmt.Sprint(r.ID),
			Name: firstNonEmpty(r.DisplayName, r.Name, domain.UnknownReaderName),
			URL:  r.URL,
		})
	}
	var sectionID string
	if sec.ID != 0 {
		sectionID = fmt.Sprint(sec.ID)
	}
	return domain.ChapterEntry{
		Index:       index,
		Title:       firstNonEmpty(sec.Title, fmt.Sprintf("Chapter %d", index+1)),
		DurationSec: sec.Duration,
		SectionID:   sectionID,
		FileURL:     sec.FileURL,
		HLSID:       sec.HLSID,
		Readers:     readers,
	}
}

// NormalizeDetail converts an escalation-chain result into a BookDetail,
// whichever source produced it.
func NormalizeDetail(rec *BookRecord, siteBase string) domain.BookDetail {
	if rec.Source == SourceScrape {
		return normalizeScrapedDetail(rec)
	}
	book := *rec.API
	entry := NormalizeBook(book, siteBase)

	chapters := make([]domain.ChapterEntry, 0, len(rec.Sections))
	for i, sec := range rec.Sections {
		chapters = append(chapters, NormalizeChapter(sec, i))
	}

	detailURL := entry.URL
	if rec.URL != "" {
		detailURL = rec.URL
	}

	return domain.BookDetail{
		ID:          entry.ID,
		URL:         detailURL,
		Title:       entry.Title,
		Description: book.Description,
		Author:      entry.Author,
		Authors:     allAuthors(book),
		CoverURL:    firstNonEmpty(book.CoverURL, book.ThumbnailURL, domain.DefaultCoverURL),
		Chapters:    chapters,
		Views:       book.Views,
	}
}

func normalizeScrapedDetail(rec *BookRecord) domain.BookDetail {
	scraped := rec.Scraped

	authors := make([]domain.AuthorRef, 0, len(scraped.Authors))
	for _, a := range scraped.Authors {
		authors = append(authors, domain.AuthorRef{
			ID:   authorIDFromURL(a.URL),
			Name: firstNonEmpty(a.Name, domain.UnknownAuthorName),
			URL:  a.URL,
		})
	}
	if len(authors) == 0 {
		authors = []domain.AuthorRef{{Name: domain.UnknownAuthorName}}
	}

	chapters := make([]domain.ChapterEntry, 0, len(scraped.Chapters))
	for i, row := range scraped.Chapters {
		var readers []domain.ReaderRef
		if row.Reader.Name != "" || row.Reader.URL != "" {
			readers = []domain.ReaderRef{{
				ID:   readerIDFromURL(row.Reader.URL),
				Name: firstNonEmpty(row.Reader.Name, domain.UnknownReaderName),
				URL:  row.Reader.URL,
			}}
		}
		chapters = append(chapters, domain.ChapterEntry{
			Index:       i,
			Title:       firstNonEmpty(row.Title, fmt.Sprintf("Chapter %d", i+1)),
			DurationSec: parseDurationSeconds(row.DurationText),
			FileURL:     row.URL,
			Readers:     readers,
		})
	}

	return domain.BookDetail{
		ID:          scraped.URL,
		URL:         scraped.URL,
		Title:       firstNonEmpty(scraped.Title, domain.UnknownBookTitle),
		Description: scraped.Description,
		Author:      authors[0],
		Authors:     authors,
		CoverURL:    firstNonEmpty(scraped.CoverURL, domain.DefaultCoverURL),
		Chapters:    chapters,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
