package librivox

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

// URLKind classifies an incoming catalog URL.
type URLKind string

const (
	URLUnknown URLKind = "unknown"
	URLBook    URLKind = "book"
	URLChapter URLKind = "chapter"
	URLAuthor  URLKind = "author"
	URLReader  URLKind = "reader"
)

// Classification is the result of matching a URL against the pattern rules.
type Classification struct {
	Kind URLKind
	// Slug is the book path segment, set for book and chapter URLs.
	Slug string
	// BookID is the numeric id from the URL query, 0 when absent.
	BookID int64
	// Chapter is the zero-based chapter index, set for chapter URLs.
	Chapter int
	// ChannelID is the numeric author or reader id, set for channel URLs.
	ChannelID int64
}

// reservedSegments are system paths that never identify a single book.
var reservedSegments = map[string]bool{
	"search":     true,
	"category":   true,
	"group":      true,
	"collection": true,
	"author":     true,
	"reader":     true,
	"page":       true,
	"api":        true,
}

var (
	authorPathRe = regexp.MustCompile(`^/author/(\d+)/?$`)
	readerPathRe = regexp.MustCompile(`^/reader/(\d+)/?$`)
	// datedArchiveRe matches blog-style archive paths like /2023/05/....
	datedArchiveRe = regexp.MustCompile(`^/\d{4}/\d{2}(/|$)`)
)

// ClassifyURL applies the mutually exclusive pattern rules in fixed priority
// order: chapter, author channel, reader channel, then plain book. A URL
// matching none of the rules is URLUnknown and must be rejected, not guessed.
func ClassifyURL(raw string) Classification {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return Classification{Kind: URLUnknown}
	}
	path := u.Path

	if m := authorPathRe.FindStringSubmatch(path); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		return Classification{Kind: URLAuthor, ChannelID: id}
	}
	if m := readerPathRe.FindStringSubmatch(path); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		return Classification{Kind: URLReader, ChannelID: id}
	}

	slug, ok := bookSlug(path)
	if !ok {
		return Classification{Kind: URLUnknown}
	}

	cls := Classification{Kind: URLBook, Slug: slug}
	if id, err := strconv.ParseInt(u.Query().Get("id"), 10, 64); err == nil && id > 0 {
		cls.BookID = id
	}
	if ch := u.Query().Get("chapter"); ch != "" {
		n, err := strconv.Atoi(ch)
		if err != nil || n < 0 {
			return Classification{Kind: URLUnknown}
		}
		cls.Kind = URLChapter
		cls.Chapter = n
	}
	return cls
}

// bookSlug extracts the single-segment book slug from a path, rejecting
// reserved system paths, dated archives and collection-aggregation pages.
func bookSlug(path string) (string, bool) {
	if datedArchiveRe.MatchString(path) {
		return "", false
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return "", false
	}
	if reservedSegments[trimmed] || strings.HasSuffix(trimmed, "-collection") {
		return "", false
	}
	return trimmed, true
}

// IsBookURL reports whether raw identifies a single audiobook page.
func IsBookURL(raw string) bool { return ClassifyURL(raw).Kind == URLBook }

// IsChapterURL reports whether raw identifies a chapter of an audiobook.
func IsChapterURL(raw string) bool { return ClassifyURL(raw).Kind == URLChapter }

// IsChannelURL reports whether raw identifies an author or reader channel.
func IsChannelURL(raw string) bool {
	kind := ClassifyURL(raw).Kind
	return kind == URLAuthor || kind == URLReader
}

var (
	authorIDRe = regexp.MustCompile(`/author/(\d+)`)
	readerIDRe = regexp.MustCompile(`/reader/(\d+)`)
)

func authorIDFromURL(raw string) string {
	if m := authorIDRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func readerIDFromURL(raw string) string {
	if m := readerIDRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// Resolver runs the detail escalation chain against the upstream catalog.
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver on top of an upstream client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

type resolveStep struct {
	tag RecordSource
	run func(ctx context.Context) (*BookRecord, error)
}

// ResolveBook resolves a book or chapter URL into a raw detail record. The
// strategies are tried once each, in priority order: structured endpoint by
// numeric id, structured endpoint by slug, HTML scrape of the original page.
// The first usable result wins; exhausting the chain is fatal because no
// playable content can be constructed.
func (r *Resolver) ResolveBook(ctx context.Context, rawURL string) (*BookRecord, error) {
	cls := ClassifyURL(rawURL)
	if cls.Kind != URLBook && cls.Kind != URLChapter {
		return nil, domain.Errf(domain.DataAbsence, "resolveBook", "unrecognized catalog URL %q", rawURL)
	}

	var steps []resolveStep
	if cls.BookID != 0 {
		steps = append(steps, resolveStep{SourceAPIByID, func(ctx context.Context) (*BookRecord, error) {
			env, err := r.client.BookByID(ctx, cls.BookID)
			if err != nil {
				return nil, err
			}
			return &BookRecord{Source: SourceAPIByID, URL: rawURL, API: env.Book, Sections: env.Sections}, nil
		}})
	}
	if cls.Slug != "" {
		steps = append(steps, resolveStep{SourceAPIBySlug, func(ctx context.Context) (*BookRecord, error) {
			env, err := r.client.BookBySlug(ctx, cls.Slug)
			if err != nil {
				return nil, err
			}
			return &BookRecord{Source: SourceAPIBySlug, URL: rawURL, API: env.Book, Sections: env.Sections}, nil
		}})
	}
	steps = append(steps, resolveStep{SourceScrape, func(ctx context.Context) (*BookRecord, error) {
		scraped, err := r.client.ScrapeBook(ctx, CanonicalPageURL(rawURL))
		if err != nil {
			return nil, err
		}
		return &BookRecord{Source: SourceScrape, URL: rawURL, Scraped: scraped}, nil
	}})

	var lastErr error
	for _, step := range steps {
		rec, err := step.run(ctx)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		slog.Warn("book resolution strategy failed, escalating",
			"strategy", string(step.tag), "url", rawURL, "error", err)
	}
	return nil, domain.WrapErr(domain.DataAbsence, "resolveBook",
		"all resolution strategies exhausted for "+rawURL, lastErr)
}

// CanonicalPageURL strips the chapter parameter so every chapter URL and its
// parent book page share one canonical form, used both for the scrape fetch
// and as a cache key.
func CanonicalPageURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Del("chapter")
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveAuthor fetches and normalizes an author channel by URL.
func (r *Resolver) ResolveAuthor(ctx context.Context, rawURL string) (*domain.AuthorEntity, error) {
	cls := ClassifyURL(rawURL)
	if cls.Kind != URLAuthor {
		return nil, domain.Errf(domain.DataAbsence, "resolveAuthor", "not an author URL: %q", rawURL)
	}
	rec, err := r.client.AuthorByID(ctx, cls.ChannelID)
	if err != nil {
		return nil, err
	}
	author := NormalizeAuthor(*rec)
	return &author, nil
}

// ResolveReader fetches and normalizes a reader channel by URL.
func (r *Resolver) ResolveReader(ctx context.Context, rawURL string) (*domain.ReaderEntity, error) {
	cls := ClassifyURL(rawURL)
	if cls.Kind != URLReader {
		return nil, domain.Errf(domain.DataAbsence, "resolveReader", "not a reader URL: %q", rawURL)
	}
	return r.FetchReader(ctx, cls.ChannelID)
}

// FetchReader fetches and normalizes a reader channel by id.
func (r *Resolver) FetchReader(ctx context.Context, id int64) (*domain.ReaderEntity, error) {
	rec, err := r.client.ReaderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reader := NormalizeReader(*rec)
	return &reader, nil
}
