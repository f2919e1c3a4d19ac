// Package pricing refreshes catalog prices by scraping product pages on a
// cron schedule, politely rate limited per run.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// userAgent is a plain browser UA; retailer pages serve bot UAs a captcha.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrPriceNotFound is returned when the page contains no element with the
// configured price class.
var ErrPriceNotFound = errors.New("price element not found")

// Scraper fetches a product page and extracts the integer price from the
// first element carrying the configured CSS class.
type Scraper struct {
	client   *http.Client
	selector string // CSS class of the price element
}

// NewScraper builds a scraper that looks for elements with the given class.
func NewScraper(selector string, timeout time.Duration) *Scraper {
	return &Scraper{
		client:   &http.Client{Timeout: timeout},
		selector: selector,
	}
}

// Fetch retrieves url and returns the price found on the page.
func (s *Scraper) Fetch(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", url, err)
	}

	node := findByClass(doc, s.selector)
	if node == nil {
		return 0, ErrPriceNotFound
	}

	price, err := parsePrice(textContent(node))
	if err != nil {
		return 0, fmt.Errorf("parse price on %s: %w", url, err)
	}
	return price, nil
}

// findByClass walks the tree for the first element whose class attribute
// contains the given class.
func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "class" {
				continue
			}
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// parsePrice strips everything but digits, so "1,299" and "1 299 грн" both
// work. Fractional parts render as separate elements on the pages we scrape
// and never reach this string.
func parsePrice(text string) (int, error) {
	var sb strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, fmt.Errorf("no digits in %q", strings.TrimSpace(text))
	}
	return strconv.Atoi(sb.String())
}
