package librivox

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stefancruz/grayjay-plugin-librivox/internal/domain"
	"github.com/stefancruz/grayjay-plugin-librivox/internal/metrics"
)

// ScrapeBook is the last resort of the detail escalation chain: it fetches
// the original catalog page as HTML and extracts the book by structural
// position. Used only when both structured endpoints failed.
func (c *Client) ScrapeBook(ctx context.Context, pageURL string) (*ScrapedBookRecord, error) {
	metrics.ScrapeFallbacks.Inc()

	doc, err := c.getDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	rec := &ScrapedBookRecord{
		URL:         pageURL,
		Title:       strings.TrimSpace(doc.Find("h1.book-title").First().Text()),
		Description: strings.TrimSpace(doc.Find("div.book-description").First().Text()),
		CoverURL:    scrapeCover(doc),
	}

	doc.Find("a.book-author").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		href, _ := s.Attr("href")
		if name != "" || href != "" {
			rec.Authors = append(rec.Authors, ScrapedLink{Name: name, URL: href})
		}
	})

	doc.Find("table.chapters tr").Each(func(_ int, row *goquery.Selection) {
		if chapter, ok := scrapeChapterRow(row); ok {
			rec.Chapters = append(rec.Chapters, chapter)
		}
	})

	if rec.Title == "" && len(rec.Chapters) == 0 {
		return nil, domain.Errf(domain.MalformedResponse, "scrape", "page %s has no recognizable book structure", pageURL)
	}
	return rec, nil
}

func scrapeCover(doc *goquery.Document) string {
	img := doc.Find("img.book-cover").First()
	if src, ok := img.Attr("data-src"); ok && src != "" {
		return src
	}
	src, _ := img.Attr("src")
	return src
}

// scrapeChapterRow extracts one chapter from a table row: the first link is
// the chapter name/URL, a link into /reader/ is the reader, and the trailing
// cell carries the duration text.
func scrapeChapterRow(row *goquery.Selection) (ScrapedChapterRow, bool) {
	links := row.Find("a")
	if links.Length() == 0 {
		return ScrapedChapterRow{}, false
	}

	var chapter ScrapedChapterRow
	links.Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if strings.Contains(href, "/reader/") {
			if chapter.Reader.URL == "" {
				chapter.Reader = ScrapedLink{Name: text, URL: href}
			}
			return
		}
		if chapter.Title == "" {
			chapter.Title = text
			chapter.URL = href
		}
	})
	if chapter.Title == "" && chapter.URL == "" {
		return ScrapedChapterRow{}, false
	}

	chapter.DurationText = strings.TrimSpace(row.Find("td").Last().Text())
	return chapter, true
}

// parseDurationSeconds parses chapter durations written as "H:MM:SS" or
// "MM:SS". Any malformed or non-numeric component yields 0 rather than an
// error; a missing duration is not worth failing a chapter over.
func parseDurationSeconds(text string) int {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
