package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/librivox"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/pager"
)

// Pager endpoints. The endpoint name in a pagination context selects the
// strategy, so a cursor can be resumed across stateless requests.
const (
	EndpointHome    = "home"
	EndpointSearch  = "search"
	EndpointAuthors = "authors"
	EndpointAuthor  = "author"
	EndpointReader  = "reader"
)

// NewListContext builds a first-page pagination context for an endpoint.
func (s *Service) NewListContext(endpoint, query string) pager.Context {
	return pager.Context{Endpoint: endpoint, Query: query, Limit: s.cfg.PageSize}
}

// GetHome returns a pager over the home feed: the latest releases first,
// then general catalog pages with already-surfaced ids filtered out.
func (s *Service) GetHome() *pager.Pager[domain.CatalogEntry] {
	return pager.New(pager.Context{Endpoint: EndpointHome, Limit: s.cfg.PageSize}, s.BooksPage)
}

// Search returns a pager over free-text book search results.
func (s *Service) Search(query string) *pager.Pager[domain.CatalogEntry] {
	return pager.New(pager.Context{Endpoint: EndpointSearch, Query: query, Limit: s.cfg.PageSize}, s.BooksPage)
}

// SearchAuthors returns a pager over author search results.
func (s *Service) SearchAuthors(query string) *pager.Pager[domain.AuthorEntity] {
	return pager.New(pager.Context{Endpoint: EndpointAuthors, Query: query, Limit: s.cfg.PageSize}, s.AuthorsPage)
}

// GetChannelContents returns a pager over a channel's catalog: an author's
// books or a reader's narrated audiobooks.
func (s *Service) GetChannelContents(url string) (*pager.Pager[domain.CatalogEntry], error) {
	cls := librivox.ClassifyURL(url)
	switch cls.Kind {
	case librivox.URLAuthor:
		pc := pager.Context{Endpoint: EndpointAuthor, Query: fmt.Sprint(cls.ChannelID), Limit: s.cfg.PageSize}
		return pager.New(pc, s.BooksPage), nil
	case librivox.URLReader:
		pc := pager.Context{Endpoint: EndpointReader, Query: fmt.Sprint(cls.ChannelID), Limit: s.cfg.PageSize}
		return pager.New(pc, s.BooksPage), nil
	default:
		return nil, domain.Errf(domain.DataAbsence, "getChannelContents", "not a channel URL: %q", url)
	}
}

// BooksPage is the catalog-entry strategy behind every book listing. The
// context's endpoint selects the call site behavior.
func (s *Service) BooksPage(ctx context.Context, pc pager.Context) (pager.Page[domain.CatalogEntry], error) {
	switch pc.Endpoint {
	case EndpointHome:
		return s.homePage(ctx, pc)
	case EndpointSearch:
		return s.searchPage(ctx, pc)
	case EndpointAuthor:
		return s.authorPage(ctx, pc)
	case EndpointReader:
		return s.readerPage(ctx, pc)
	default:
		return pager.Page[domain.CatalogEntry]{Next: pc}, fmt.Errorf("unknown listing endpoint %q", pc.Endpoint)
	}
}

// homePage serves the home feed. The first page fetches the latest releases
// and seeds the dedup set; every later page walks the general catalog and
// drops ids the session already surfaced.
func (s *Service) homePage(ctx context.Context, pc pager.Context) (pager.Page[domain.CatalogEntry], error) {
	if pc.Page == 0 {
		books, err := s.client.LatestReleases(ctx, pc.Limit)
		if err != nil {
			return pager.Page[domain.CatalogEntry]{}, err
		}
		items := make([]domain.CatalogEntry, 0, len(books))
		for _, rec := range books {
			entry := librivox.NormalizeBook(rec, s.client.SiteBase())
			s.state.MarkLatest(entry.ID)
			items = append(items, entry)
		}
		s.persist()
		// The general catalog always follows the latest-releases segment.
		return pager.Page[domain.CatalogEntry]{Items: items, HasMore: true, Next: pc.Advance()}, nil
	}

	// The context offset advanced once for the latest-releases page; the
	// catalog itself starts at zero.
	books, err := s.client.CatalogPage(ctx, pc.Limit, pc.Offset-pc.Limit)
	if err != nil {
		return pager.Page[domain.CatalogEntry]{}, err
	}
	items := make([]domain.CatalogEntry, 0, len(books))
	for _, rec := range books {
		entry := librivox.NormalizeBook(rec, s.client.SiteBase())
		if s.state.IsLatest(entry.ID) {
			continue
		}
		items = append(items, entry)
	}
	return pager.Page[domain.CatalogEntry]{
		Items:   items,
		HasMore: pager.HasMore(len(books), pc.Limit),
		Next:    pc.Advance(),
	}, nil
}

// searchPage serves free-text search. Entries without a resolvable detail
// URL are in-progress or abandoned projects and are dropped before
// normalization.
func (s *Service) searchPage(ctx context.Context, pc pager.Context) (pager.Page[domain.CatalogEntry], error) {
	books, err := s.client.SearchBooks(ctx, pc.Query, pc.Limit, pc.Offset)
	if err != nil {
		return pager.Page[domain.CatalogEntry]{}, err
	}
	items := make([]domain.CatalogEntry, 0, len(books))
	for _, rec := range books {
		if rec.URL == "" && rec.Slug == "" {
			continue
		}
		items = append(items, librivox.NormalizeBook(rec, s.client.SiteBase()))
	}
	return pager.Page[domain.CatalogEntry]{
		Items:   items,
		HasMore: pager.HasMore(len(books), pc.Limit),
		Next:    pc.Advance(),
	}, nil
}

// authorPage serves an author's catalog. The endpoint does not guarantee
// order, so pages are sorted by descending numeric id (newest first).
func (s *Service) authorPage(ctx context.Context, pc pager.Context) (pager.Page[domain.CatalogEntry], error) {
	id, err := strconv.ParseInt(pc.Query, 10, 64)
	if err != nil {
		return pager.Page[domain.CatalogEntry]{}, fmt.Errorf("author listing: bad channel id %q", pc.Query)
	}
	books, err := s.client.AuthorBooks(ctx, id, pc.Limit, pc.Offset)
	if err != nil {
		return pager.Page[domain.CatalogEntry]{}, err
	}
	sort.SliceStable(books, func(i, j int) bool { return books[i].ID > books[j].ID })

	items := make([]domain.CatalogEntry, 0, len(books))
	for _, rec := range books {
		items = append(items, librivox.NormalizeBook(rec, s.client.SiteBase()))
	}
	return pager.Page[domain.CatalogEntry]{
		Items:   items,
		HasMore: pager.HasMore(len(books), pc.Limit),
		Next:    pc.Advance(),
	}, nil
}

// readerPage serves a reader's narrated catalog. Section-shaped responses
// are grouped by parent audiobook first, so a reader who narrated five
// sections of one book still yields a single listing entry for it.
func (s *Service) readerPage(ctx context.Context, pc pager.Context) (pager.Page[domain.CatalogEntry], error) {
	id, err := strconv.ParseInt(pc.Query, 10, 64)
	if err != nil {
		return pager.Page[domain.CatalogEntry]{}, fmt.Errorf("reader listing: bad channel id %q", pc.Query)
	}
	raw, err := s.client.ReaderItems(ctx, id, pc.Limit, pc.Offset)
	if err != nil {
		return pager.Page[domain.CatalogEntry]{}, err
	}

	items := make([]domain.CatalogEntry, 0, len(raw))
	grouped := make(map[int64]bool)
	for _, item := range raw {
		if !item.SectionShaped() {
			items = append(items, librivox.NormalizeBook(item.APIBookRecord, s.client.SiteBase()))
			continue
		}
		if grouped[item.AudiobookID] {
			continue
		}
		grouped[item.AudiobookID] = true
		items = append(items, domain.CatalogEntry{
			ID:           fmt.Sprint(item.AudiobookID),
			Title:        firstNonEmpty(item.AudiobookTitle, domain.UnknownBookTitle),
			Author:       domain.AuthorRef{Name: domain.UnknownAuthorName},
			ThumbnailURL: firstNonEmpty(item.AudiobookCover, domain.DefaultCoverURL),
			ChapterCount: domain.ChapterCountUnknown,
			URL:          item.AudiobookURL,
		})
	}
	return pager.Page[domain.CatalogEntry]{
		Items:   items,
		HasMore: pager.HasMore(len(raw), pc.Limit),
		Next:    pc.Advance(),
	}, nil
}

// AuthorsPage is the author-entity strategy behind author search.
func (s *Service) AuthorsPage(ctx context.Context, pc pager.Context) (pager.Page[domain.AuthorEntity], error) {
	authors, err := s.client.SearchAuthors(ctx, pc.Query, pc.Limit, pc.Offset)
	if err != nil {
		return pager.Page[domain.AuthorEntity]{}, err
	}
	items := make([]domain.AuthorEntity, 0, len(authors))
	for _, rec := range authors {
		items = append(items, librivox.NormalizeAuthor(rec))
	}
	return pager.Page[domain.AuthorEntity]{
		Items:   items,
		HasMore: pager.HasMore(len(authors), pc.Limit),
		Next:    pc.Advance(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
