// Package service orchestrates the adapter: it threads the persisted state
// through every operation, memoizes detail lookups and exposes the boundary
// contract consumed by the host.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/config"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/librivox"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/metrics"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/state"
)

// Service is the catalog adapter. All operations are synchronous; the state
// blob is the only shared mutable resource.
type Service struct {
	cfg      *config.Config
	client   *librivox.Client
	resolver *librivox.Resolver
	state    *state.State
}

// New creates a service around an upstream client and a (possibly restored)
// state blob.
func New(cfg *config.Config, client *librivox.Client, st *state.State) *Service {
	return &Service{
		cfg:      cfg,
		client:   client,
		resolver: librivox.NewResolver(client),
		state:    st,
	}
}

// Initialize replaces the current state contents with those restored from a
// persisted blob. Absent or corrupt input yields empty caches, never an
// error. The state's file binding is kept, so later saves still land in the
// same place.
func (s *Service) Initialize(persisted string) {
	s.state.Replace(persisted)
	s.persist()
	books, readers, authors, latest := s.state.Stats()
	slog.Info("state initialized",
		"books", books, "readers", readers, "authors", authors, "latestReleases", latest)
}

// PersistState serializes the cache/dedup state for the host.
func (s *Service) PersistState() (string, error) {
	return s.state.Serialize()
}

// State exposes the live state blob (server persistence, tests).
func (s *Service) State() *state.State { return s.state }

// StreamBase returns the proxied-stream root used to build playable URLs.
func (s *Service) StreamBase() string { return s.client.StreamBase() }

// ResetState drops all cached details and the dedup set.
func (s *Service) ResetState() {
	s.state.Reset()
	s.persist()
}

// persist saves the blob after a mutation so a load-then-mutate-then-save
// sequence is never left half applied.
func (s *Service) persist() {
	if err := s.state.SaveFile(); err != nil {
		slog.Error("state save failed", "error", err)
	}
}

// IsBookURL reports whether url identifies a single audiobook.
func (s *Service) IsBookURL(url string) bool { return librivox.IsBookURL(url) }

// IsChapterURL reports whether url identifies a chapter.
func (s *Service) IsChapterURL(url string) bool { return librivox.IsChapterURL(url) }

// IsChannelURL reports whether url identifies an author or reader channel.
func (s *Service) IsChannelURL(url string) bool { return librivox.IsChannelURL(url) }

// GetBookDetail resolves the detail view of a book URL, serving from the
// persisted cache when possible. On a miss the escalation chain runs and the
// result is cached under the canonical key.
func (s *Service) GetBookDetail(ctx context.Context, url string) (domain.BookDetail, error) {
	cls := librivox.ClassifyURL(url)
	if cls.Kind != librivox.URLBook && cls.Kind != librivox.URLChapter {
		return domain.BookDetail{}, domain.Errf(domain.DataAbsence, "getBookDetail", "unrecognized book URL %q", url)
	}

	for _, key := range cacheKeys(cls, url) {
		if detail, ok := s.state.Book(key); ok {
			metrics.CacheHits.WithLabelValues("book").Inc()
			return detail, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("book").Inc()

	rec, err := s.resolver.ResolveBook(ctx, url)
	if err != nil {
		return domain.BookDetail{}, err
	}
	detail := librivox.NormalizeDetail(rec, s.client.SiteBase())

	// Store under every key a later URL form can probe with, so an
	// id-resolved detail also hits from a slug-only or page URL.
	s.state.PutBook(detail.ID, detail)
	for _, key := range cacheKeys(cls, url) {
		s.state.PutBook(key, detail)
	}
	s.persist()
	return detail, nil
}

// cacheKeys lists the canonical keys a classified URL may be cached under:
// the numeric id when the URL carries one, the slug, and the chapter-stripped
// page URL.
func cacheKeys(cls librivox.Classification, url string) []string {
	var keys []string
	if cls.BookID != 0 {
		keys = append(keys, fmt.Sprint(cls.BookID))
	}
	if cls.Slug != "" {
		keys = append(keys, cls.Slug)
	}
	return append(keys, librivox.CanonicalPageURL(url))
}

// GetChapterDetail resolves a chapter URL into the chapter entry plus its
// ranked audio sources.
func (s *Service) GetChapterDetail(ctx context.Context, url string) (domain.ChapterDetail, error) {
	cls := librivox.ClassifyURL(url)
	if cls.Kind != librivox.URLChapter {
		return domain.ChapterDetail{}, domain.Errf(domain.DataAbsence, "getChapterDetail", "not a chapter URL: %q", url)
	}

	book, err := s.GetBookDetail(ctx, url)
	if err != nil {
		return domain.ChapterDetail{}, err
	}
	if cls.Chapter >= len(book.Chapters) {
		return domain.ChapterDetail{}, domain.Errf(domain.DataAbsence, "getChapterDetail",
			"chapter %d not found in %q", cls.Chapter, book.Title)
	}
	chapter := book.Chapters[cls.Chapter]

	sources, err := librivox.ResolveAudioSources(chapter, s.client.StreamBase(), s.cfg.AllowHLS)
	if err != nil {
		return domain.ChapterDetail{}, err
	}
	return domain.ChapterDetail{
		BookID:    book.ID,
		BookTitle: book.Title,
		Chapter:   chapter,
		Sources:   sources,
	}, nil
}

// GetChannel resolves an author or reader URL into a channel entity. Readers
// are served from the persisted cache keyed by id; authors are remembered in
// the persisted author list.
func (s *Service) GetChannel(ctx context.Context, url string) (domain.Channel, error) {
	cls := librivox.ClassifyURL(url)
	switch cls.Kind {
	case librivox.URLAuthor:
		author, err := s.resolver.ResolveAuthor(ctx, url)
		if err != nil {
			return domain.Channel{}, err
		}
		s.state.RememberAuthor(*author)
		s.persist()
		return domain.Channel{Kind: domain.ChannelAuthor, Author: author}, nil

	case librivox.URLReader:
		reader, err := s.getOrFetchReader(ctx, cls.ChannelID)
		if err != nil {
			return domain.Channel{}, err
		}
		return domain.Channel{Kind: domain.ChannelReader, Reader: reader}, nil

	default:
		return domain.Channel{}, domain.Errf(domain.DataAbsence, "getChannel", "not a channel URL: %q", url)
	}
}

// getOrFetchReader memoizes reader lookups in the persisted state.
func (s *Service) getOrFetchReader(ctx context.Context, id int64) (*domain.ReaderEntity, error) {
	key := fmt.Sprint(id)
	if reader, ok := s.state.Reader(key); ok {
		metrics.CacheHits.WithLabelValues("reader").Inc()
		return &reader, nil
	}
	metrics.CacheMisses.WithLabelValues("reader").Inc()

	reader, err := s.resolver.FetchReader(ctx, id)
	if err != nil {
		return nil, err
	}
	s.state.PutReader(*reader)
	s.persist()
	return reader, nil
}
