package librivox

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

// Feed API endpoint paths. The upstream has renamed these across revisions;
// they are kept in one place so a contract change is a one-file edit.
const (
	pathLatest        = "/audiobooks/latest"
	pathCatalog       = "/audiobooks"
	pathSearchBooks   = "/audiobooks/search"
	pathBookByID      = "/audiobook/%d"
	pathBookBySlug    = "/audiobook/slug/%s"
	pathSearchAuthors = "/authors/search"
	pathAuthor        = "/author/%d"
	pathAuthorBooks   = "/author/%d/audiobooks"
	pathReader        = "/reader/%d"
	pathReaderItems   = "/reader/%d/sections"
)

func (c *Client) listURL(path, query string, limit, offset int) string {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))
	return c.apiBase + path + "?" + q.Encode()
}

// LatestReleases fetches the newest audiobooks, used once to seed the home
// feed and its dedup set.
func (c *Client) LatestReleases(ctx context.Context, limit int) ([]APIBookRecord, error) {
	var books []APIBookRecord
	if err := c.getJSON(ctx, c.listURL(pathLatest, "", limit, 0), &books); err != nil {
		return nil, err
	}
	return books, nil
}

// CatalogPage fetches one page of the general catalog.
func (c *Client) CatalogPage(ctx context.Context, limit, offset int) ([]APIBookRecord, error) {
	var books []APIBookRecord
	if err := c.getJSON(ctx, c.listURL(pathCatalog, "", limit, offset), &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SearchBooks fetches one page of free-text book search results.
func (c *Client) SearchBooks(ctx context.Context, query string, limit, offset int) ([]APIBookRecord, error) {
	var books []APIBookRecord
	if err := c.getJSON(ctx, c.listURL(pathSearchBooks, query, limit, offset), &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SearchAuthors fetches one page of author search results.
func (c *Client) SearchAuthors(ctx context.Context, query string, limit, offset int) ([]APIAuthorRecord, error) {
	var authors []APIAuthorRecord
	if err := c.getJSON(ctx, c.listURL(pathSearchAuthors, query, limit, offset), &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// BookByID fetches the structured detail endpoint by numeric id.
func (c *Client) BookByID(ctx context.Context, id int64) (*apiDetailEnvelope, error) {
	return c.bookDetail(ctx, c.apiBase+fmt.Sprintf(pathBookByID, id))
}

// BookBySlug fetches the structured detail endpoint by URL slug.
func (c *Client) BookBySlug(ctx context.Context, slug string) (*apiDetailEnvelope, error) {
	return c.bookDetail(ctx, c.apiBase+fmt.Sprintf(pathBookBySlug, url.PathEscape(slug)))
}

func (c *Client) bookDetail(ctx context.Context, u string) (*apiDetailEnvelope, error) {
	var env apiDetailEnvelope
	if err := c.getJSON(ctx, u, &env); err != nil {
		return nil, err
	}
	// A success without the book/sections structure is not usable data.
	if env.Book == nil || env.Sections == nil {
		return nil, domain.Errf(domain.MalformedResponse, "bookDetail", "response from %s missing book/sections", u)
	}
	return &env, nil
}

// AuthorByID fetches a single author record.
func (c *Client) AuthorByID(ctx context.Context, id int64) (*APIAuthorRecord, error) {
	var author APIAuthorRecord
	if err := c.getJSON(ctx, c.apiBase+fmt.Sprintf(pathAuthor, id), &author); err != nil {
		return nil, err
	}
	if author.ID == 0 {
		return nil, domain.Errf(domain.DataAbsence, "author", "author %d not found", id)
	}
	return &author, nil
}

// AuthorBooks fetches one page of an author's catalog.
func (c *Client) AuthorBooks(ctx context.Context, id int64, limit, offset int) ([]APIBookRecord, error) {
	var books []APIBookRecord
	u := c.apiBase + fmt.Sprintf(pathAuthorBooks, id) + fmt.Sprintf("?limit=%d&offset=%d", limit, offset)
	if err := c.getJSON(ctx, u, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ReaderByID fetches a single reader record.
func (c *Client) ReaderByID(ctx context.Context, id int64) (*APIReaderRecord, error) {
	var reader APIReaderRecord
	if err := c.getJSON(ctx, c.apiBase+fmt.Sprintf(pathReader, id), &reader); err != nil {
		return nil, err
	}
	if reader.ID == 0 {
		return nil, domain.Errf(domain.DataAbsence, "reader", "reader %d not found", id)
	}
	return &reader, nil
}

// ReaderItems fetches one page of a reader's narrated catalog. Depending on
// the feed revision the response is either flat book records or section
// records tagged with audiobook_id; callers must handle both shapes.
func (c *Client) ReaderItems(ctx context.Context, id int64, limit, offset int) ([]APIReaderItemRecord, error) {
	var items []APIReaderItemRecord
	u := c.apiBase + fmt.Sprintf(pathReaderItems, id) + fmt.Sprintf("?limit=%d&offset=%d", limit, offset)
	if err := c.getJSON(ctx, u, &items); err != nil {
		return nil, err
	}
	return items, nil
}
