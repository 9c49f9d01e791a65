// Package http exposes the adapter's boundary operations over HTTP: paged
// listings with opaque continuation cursors, single-entity detail lookups,
// URL classification and state persistence.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/pager"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/service"
)

// Handler handles HTTP requests for the catalog adapter API.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// listResponse is the wire shape of one listing page.
type listResponse[T any] struct {
	Items      []T    `json:"items"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// listContext restores the pagination context for a request: the cursor when
// one is present, a fresh first-page context otherwise.
func (h *Handler) listContext(r *http.Request, endpoint, query string) (pager.Context, error) {
	cursor := r.URL.Query().Get("cursor")
	if cursor == "" {
		return h.service.NewListContext(endpoint, query), nil
	}
	pc, err := pager.DecodeCursor(cursor)
	if err != nil {
		return pager.Context{}, err
	}
	if pc.Endpoint != endpoint {
		return pager.Context{}, errors.New("cursor does not belong to this listing")
	}
	return pc, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writePage[T any](w http.ResponseWriter, page pager.Page[T]) {
	resp := listResponse[T]{Items: page.Items, HasMore: page.HasMore}
	if page.Items == nil {
		resp.Items = []T{}
	}
	if page.HasMore {
		resp.NextCursor = pager.EncodeCursor(page.Next)
	}
	writeJSON(w, resp)
}

// statusFor maps the typed failure taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var e *domain.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case domain.DataAbsence, domain.NoPlayableSource:
			return http.StatusNotFound
		case domain.TransportFailure, domain.MalformedResponse:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	slog.Error("request failed", "op", op, "error", err)
	http.Error(w, err.Error(), statusFor(err))
}

// Home serves one page of the home feed.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	pc, err := h.listContext(r, service.EndpointHome, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := h.service.BooksPage(r.Context(), pc)
	if err != nil {
		// Listings degrade instead of failing.
		slog.Warn("home feed page failed, returning empty page", "error", err)
		page = pager.Page[domain.CatalogEntry]{}
	}
	writePage(w, page)
}

// Search serves one page of book search results.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" && r.URL.Query().Get("cursor") == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	pc, err := h.listContext(r, service.EndpointSearch, query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := h.service.BooksPage(r.Context(), pc)
	if err != nil {
		slog.Warn("search page failed, returning empty page", "query", query, "error", err)
		page = pager.Page[domain.CatalogEntry]{}
	}
	writePage(w, page)
}

// SearchAuthors serves one page of author search results.
func (h *Handler) SearchAuthors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" && r.URL.Query().Get("cursor") == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	pc, err := h.listContext(r, service.EndpointAuthors, query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := h.service.AuthorsPage(r.Context(), pc)
	if err != nil {
		slog.Warn("author search page failed, returning empty page", "query", query, "error", err)
		page = pager.Page[domain.AuthorEntity]{}
	}
	writePage(w, page)
}

// ChannelContents serves one page of an author's or reader's catalog.
func (h *Handler) ChannelContents(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	cursor := r.URL.Query().Get("cursor")

	var pc pager.Context
	if cursor != "" {
		decoded, err := pager.DecodeCursor(cursor)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if decoded.Endpoint != service.EndpointAuthor && decoded.Endpoint != service.EndpointReader {
			http.Error(w, "cursor does not belong to a channel listing", http.StatusBadRequest)
			return
		}
		pc = decoded
	} else {
		p, err := h.service.GetChannelContents(url)
		if err != nil {
			h.fail(w, "channelContents", err)
			return
		}
		pc = p.Cursor()
	}

	page, err := h.service.BooksPage(r.Context(), pc)
	if err != nil {
		slog.Warn("channel contents page failed, returning empty page", "url", url, "error", err)
		page = pager.Page[domain.CatalogEntry]{}
	}
	writePage(w, page)
}

// Book serves the resolved detail of a book URL.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}
	detail, err := h.service.GetBookDetail(r.Context(), url)
	if err != nil {
		h.fail(w, "book", err)
		return
	}
	writeJSON(w, detail)
}

// Chapter serves a chapter with its resolved audio sources.
func (h *Handler) Chapter(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}
	detail, err := h.service.GetChapterDetail(r.Context(), url)
	if err != nil {
		h.fail(w, "chapter", err)
		return
	}
	writeJSON(w, detail)
}

// Channel serves a resolved author or reader channel.
func (h *Handler) Channel(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}
	channel, err := h.service.GetChannel(r.Context(), url)
	if err != nil {
		h.fail(w, "channel", err)
		return
	}
	writeJSON(w, channel)
}

// Classify reports which URL predicates match.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{
		"book":    h.service.IsBookURL(url),
		"chapter": h.service.IsChapterURL(url),
		"channel": h.service.IsChannelURL(url),
	})
}

// State serves and manages the persisted blob: GET serializes it, PUT
// replaces it from the request body, DELETE resets it.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		serialized, err := h.service.PersistState()
		if err != nil {
			h.fail(w, "state", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(serialized))

	case http.MethodPut, http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.service.Initialize(string(body))
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		h.service.ResetState()
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
