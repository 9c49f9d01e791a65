package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	httphandler "github.com/stefancruz/grayjay-plugin-librivox/internal/adapter/http"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/config"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/librivox"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/service"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/state"
)

// fakeLibriVox serves the upstream feed API plus one scrapeable book page, so
// every resolution strategy can be exercised end to end.
func fakeLibriVox(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	writeBooks := func(w http.ResponseWriter, ids ...int) {
		books := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			books = append(books, map[string]any{
				"id":    id,
				"title": fmt.Sprintf("Book %d", id),
				"slug":  fmt.Sprintf("book-%d", id),
				"url":   fmt.Sprintf("https://example.org/book-%d/?id=%d", id, id),
			})
		}
		_ = json.NewEncoder(w).Encode(books)
	}

	mux.HandleFunc("/api/v1/audiobooks/latest", func(w http.ResponseWriter, _ *http.Request) {
		writeBooks(w, 10, 11)
	})
	mux.HandleFunc("/api/v1/audiobooks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			writeBooks(w, 11, 12)
			return
		}
		writeBooks(w)
	})
	mux.HandleFunc("/api/v1/audiobook/57", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"book": map[string]any{
				"id": 57, "title": "Moby Dick", "slug": "moby-dick",
				"author": map[string]any{"id": 142, "name": "Herman Melville"},
			},
			"sections": []map[string]any{
				{"id": 900, "title": "Loomings", "playtime": 600, "file_url": "https://files.example/900.mp3"},
				{"id": 901, "title": "The Carpet-Bag", "playtime": 540},
			},
		})
	})
	mux.HandleFunc("/api/v1/author/142", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 142, "name": "Herman Melville", "dob": "1819", "dod": "1891",
		})
	})
	// Only reachable through the scrape fallback: no API record at all.
	mux.HandleFunc("/obscure-title/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><body>
			<h1 class="book-title">Obscure Title</h1>
			<table class="chapters">
				<tr><td><a href="/obscure-title/?chapter=0">Part 1</a></td><td>10:00</td></tr>
			</table>
		</body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newAPIServer wires the adapter exactly as main does and returns the public
// test server plus the upstream fake.
func newAPIServer(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()
	upstream := fakeLibriVox(t)

	cfg := &config.Config{
		SiteBaseURL:   upstream.URL,
		APIBaseURL:    upstream.URL + "/api/v1",
		StreamBaseURL: upstream.URL + "/stream",
		UserAgent:     "integration-test",
		PageSize:      2,
		AllowHLS:      false,
		UpstreamRPS:   1000,
	}
	svc := service.New(cfg, librivox.NewClient(cfg), state.New())
	handler := httphandler.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/home", handler.Home)
	mux.HandleFunc("/api/search", handler.Search)
	mux.HandleFunc("/api/authors/search", handler.SearchAuthors)
	mux.HandleFunc("/api/book", handler.Book)
	mux.HandleFunc("/api/chapter", handler.Chapter)
	mux.HandleFunc("/api/channel", handler.Channel)
	mux.HandleFunc("/api/channel/contents", handler.ChannelContents)
	mux.HandleFunc("/api/classify", handler.Classify)
	mux.HandleFunc("/api/state", handler.State)

	server := httptest.NewServer(httphandler.Logging(mux))
	t.Cleanup(server.Close)
	return server, upstream
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("GET %s: bad JSON %q: %v", url, body, err)
		}
	}
	return resp
}

type pageResponse struct {
	Items      []json.RawMessage `json:"items"`
	HasMore    bool              `json:"hasMore"`
	NextCursor string            `json:"nextCursor"`
}

func TestAPI_HomeFeed_Integration(t *testing.T) {
	server, _ := newAPIServer(t)

	var first pageResponse
	resp := getJSON(t, server.URL+"/api/home", &first)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if len(first.Items) != 2 || !first.HasMore {
		t.Fatalf("unexpected first page: %d items, hasMore=%v", len(first.Items), first.HasMore)
	}

	var second pageResponse
	getJSON(t, server.URL+"/api/home?cursor="+url.QueryEscape(first.NextCursor), &second)

	// Book 11 appeared in the latest releases and must not repeat.
	if len(second.Items) != 1 {
		t.Fatalf("expected 1 deduplicated catalog item, got %d", len(second.Items))
	}
	var entry domain.CatalogEntry
	if err := json.Unmarshal(second.Items[0], &entry); err != nil {
		t.Fatalf("bad entry: %v", err)
	}
	if entry.ID != "12" {
		t.Errorf("expected catalog item 12, got %s", entry.ID)
	}
}

func TestAPI_BookAndChapter_Integration(t *testing.T) {
	server, upstream := newAPIServer(t)
	bookURL := upstream.URL + "/moby-dick/?id=57"

	var detail domain.BookDetail
	resp := getJSON(t, server.URL+"/api/book?url="+url.QueryEscape(bookURL), &detail)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if detail.Title != "Moby Dick" || len(detail.Chapters) != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Author.Name != "Herman Melville" {
		t.Errorf("unexpected author %q", detail.Author.Name)
	}

	var chapter domain.ChapterDetail
	getJSON(t, server.URL+"/api/chapter?url="+url.QueryEscape(bookURL+"&chapter=0"), &chapter)
	if chapter.Chapter.Title != "Loomings" {
		t.Errorf("unexpected chapter %q", chapter.Chapter.Title)
	}
	if len(chapter.Sources) != 2 {
		t.Errorf("expected proxied + direct sources, got %d", len(chapter.Sources))
	}
}

func TestAPI_ScrapeFallback_Integration(t *testing.T) {
	server, upstream := newAPIServer(t)

	var detail domain.BookDetail
	resp := getJSON(t, server.URL+"/api/book?url="+url.QueryEscape(upstream.URL+"/obscure-title/"), &detail)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if detail.Title != "Obscure Title" || len(detail.Chapters) != 1 {
		t.Fatalf("unexpected scraped detail: %+v", detail)
	}
	if detail.Chapters[0].DurationSec != 600 {
		t.Errorf("unexpected duration %d", detail.Chapters[0].DurationSec)
	}
}

func TestAPI_Channel_Integration(t *testing.T) {
	server, upstream := newAPIServer(t)

	var channel domain.Channel
	resp := getJSON(t, server.URL+"/api/channel?url="+url.QueryEscape(upstream.URL+"/author/142"), &channel)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if channel.Kind != domain.ChannelAuthor || channel.Author == nil {
		t.Fatalf("unexpected channel: %+v", channel)
	}
	if channel.Author.Lifespan != "1819–1891" {
		t.Errorf("unexpected lifespan %q", channel.Author.Lifespan)
	}
}

func TestAPI_StateSurvivesRestart_Integration(t *testing.T) {
	server, upstream := newAPIServer(t)
	bookURL := upstream.URL + "/moby-dick/?id=57"

	// Warm the cache, then capture the blob.
	getJSON(t, server.URL+"/api/book?url="+url.QueryEscape(bookURL), nil)
	resp, err := http.Get(server.URL + "/api/state")
	if err != nil {
		t.Fatalf("state GET failed: %v", err)
	}
	blob, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// A restarted adapter with no upstream must serve the detail from the
	// restored cache.
	cfg := &config.Config{
		SiteBaseURL: "http://down.invalid",
		APIBaseURL:  "http://down.invalid/api/v1",
		PageSize:    2,
		UpstreamRPS: 1000,
	}
	svc := service.New(cfg, librivox.NewClient(cfg), state.New())
	svc.Initialize(string(blob))
	handler := httphandler.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/book", handler.Book)
	restarted := httptest.NewServer(mux)
	defer restarted.Close()

	var detail domain.BookDetail
	resp2 := getJSON(t, restarted.URL+"/api/book?url="+url.QueryEscape(bookURL), &detail)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 from restored cache, got %d", resp2.StatusCode)
	}
	if detail.Title != "Moby Dick" {
		t.Errorf("unexpected restored title %q", detail.Title)
	}
}

func TestAPI_Classify_Integration(t *testing.T) {
	server, _ := newAPIServer(t)

	cases := []struct {
		url  string
		want string
	}{
		{"https://example.org/moby-dick/", `"book":true`},
		{"https://example.org/moby-dick/?chapter=2", `"chapter":true`},
		{"https://example.org/reader/88", `"channel":true`},
	}
	for _, c := range cases {
		resp, err := http.Get(server.URL + "/api/classify?url=" + url.QueryEscape(c.url))
		if err != nil {
			t.Fatalf("classify GET failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if !strings.Contains(string(body), c.want) {
			t.Errorf("classify %s: %s missing from %s", c.url, c.want, body)
		}
	}
}
