package librivox

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/config"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
)

// newTestClient creates a Client with all bases pointing at a test server.
func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		SiteBaseURL:   baseURL,
		APIBaseURL:    baseURL + "/api/v1",
		StreamBaseURL: baseURL + "/stream",
		UserAgent:     "test",
		UpstreamRPS:   1000,
	})
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"01:02:03", 3723},
		{"02:03", 123},
		{"garbage", 0},
		{"", 0},
		{"1:2", 62},
		{"0:00", 0},
		{"1:2:3:4", 0},
		{"12", 0},
		{"-1:30", 0},
		{"1x:30", 0},
		{" 02:03 ", 123},
	}
	for _, tt := range tests {
		if got := parseDurationSeconds(tt.text); got != tt.want {
			t.Errorf("parseDurationSeconds(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

const bookPageHTML = `
<html>
<body>
	<h1 class="book-title">Moby Dick</h1>
	<a class="book-author" href="/author/142">Herman Melville</a>
	<img class="book-cover" data-src="https://covers.example/moby.jpg" src="placeholder.jpg">
	<div class="book-description">Call me Ishmael.</div>
	<table class="chapters">
		<tr>
			<td><a href="/moby-dick/?chapter=0">Loomings</a></td>
			<td><a href="/reader/88">Some Reader</a></td>
			<td>1:02:03</td>
		</tr>
		<tr>
			<td><a href="/moby-dick/?chapter=1">The Carpet-Bag</a></td>
			<td><a href="/reader/88">Some Reader</a></td>
			<td>12:34</td>
		</tr>
		<tr><td>no links here</td></tr>
	</table>
</body>
</html>
`

func TestScrapeBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(bookPageHTML))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	rec, err := c.ScrapeBook(t.Context(), server.URL+"/moby-dick/")
	if err != nil {
		t.Fatalf("ScrapeBook failed: %v", err)
	}

	if rec.Title != "Moby Dick" {
		t.Errorf("expected title 'Moby Dick', got %q", rec.Title)
	}
	if rec.Description != "Call me Ishmael." {
		t.Errorf("unexpected description %q", rec.Description)
	}
	if rec.CoverURL != "https://covers.example/moby.jpg" {
		t.Errorf("data-src should win over src, got %q", rec.CoverURL)
	}
	if len(rec.Authors) != 1 || rec.Authors[0].Name != "Herman Melville" {
		t.Fatalf("unexpected authors %+v", rec.Authors)
	}
	if len(rec.Chapters) != 2 {
		t.Fatalf("expected 2 chapter rows, got %d", len(rec.Chapters))
	}

	first := rec.Chapters[0]
	if first.Title != "Loomings" {
		t.Errorf("unexpected chapter title %q", first.Title)
	}
	if first.Reader.URL != "/reader/88" {
		t.Errorf("reader link not detected, got %q", first.Reader.URL)
	}
	if first.DurationText != "1:02:03" {
		t.Errorf("unexpected duration text %q", first.DurationText)
	}
}

func TestScrapeBook_NoStructure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>not a book page</p></body></html>"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.ScrapeBook(t.Context(), server.URL+"/whatever/")
	if err == nil {
		t.Fatal("expected error for page without book structure")
	}
	if !domain.IsKind(err, domain.MalformedResponse) {
		t.Errorf("expected MalformedResponse, got %v", err)
	}
}

func TestScrapeBook_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.ScrapeBook(t.Context(), server.URL+"/whatever/")
	if !domain.IsKind(err, domain.TransportFailure) {
		t.Errorf("expected TransportFailure, got %v", err)
	}
}
