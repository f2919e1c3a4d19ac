package pricing

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/rigbot/internal/catalog"
)

// Fetcher is the page-price source, normally *Scraper.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (int, error)
}

// Refresher walks every catalog entry that has a source URL and updates its
// stored price. Failures are logged and skipped so one dead page cannot stall
// the whole run.
type Refresher struct {
	catalog  *catalog.Store
	fetcher  Fetcher
	limiter  *rate.Limiter
	minDelay time.Duration
	maxDelay time.Duration
	divisors map[string]int // host suffix -> divisor to convert to dollars
}

// NewRefresher builds a refresher. min/max bound the random pause between
// page fetches; divisors convert local-currency prices per host.
func NewRefresher(cat *catalog.Store, fetcher Fetcher, minDelay, maxDelay time.Duration, divisors map[string]int) *Refresher {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Refresher{
		catalog:  cat,
		fetcher:  fetcher,
		limiter:  rate.NewLimiter(rate.Every(minDelay), 1),
		minDelay: minDelay,
		maxDelay: maxDelay,
		divisors: divisors,
	}
}

// Run performs one full refresh pass and returns how many prices changed.
func (r *Refresher) Run(ctx context.Context) (int, error) {
	entries, err := r.catalog.WithSource(ctx)
	if err != nil {
		return 0, err
	}

	slog.Info("price refresh started", "entries", len(entries))

	updated := 0
	for _, e := range entries {
		if err := r.limiter.Wait(ctx); err != nil {
			return updated, err
		}
		if err := r.pause(ctx); err != nil {
			return updated, err
		}

		price, err := r.fetcher.Fetch(ctx, e.SourceURL)
		if err != nil {
			slog.Warn("price fetch failed", "entry", e.Name, "url", e.SourceURL, "error", err)
			continue
		}
		price = r.convert(e.SourceURL, price)
		if price <= 0 || price == e.Price {
			continue
		}

		if err := r.catalog.UpdatePrice(ctx, e.ID, price); err != nil {
			slog.Warn("price update failed", "entry", e.Name, "error", err)
			continue
		}
		slog.Info("price updated", "entry", e.Name, "old", e.Price, "new", price)
		updated++
	}

	slog.Info("price refresh finished", "entries", len(entries), "updated", updated)
	return updated, nil
}

// pause sleeps a random extra interval so request timing does not look
// mechanical.
func (r *Refresher) pause(ctx context.Context) error {
	span := r.maxDelay - r.minDelay
	if span <= 0 {
		return nil
	}
	t := time.NewTimer(time.Duration(rand.Int63n(int64(span))))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// convert divides the scraped price when the host has a configured currency
// divisor (e.g. hryvnia pages).
func (r *Refresher) convert(rawURL string, price int) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return price
	}
	host := u.Hostname()
	for suffix, div := range r.divisors {
		if div > 0 && (host == suffix || strings.HasSuffix(host, "."+suffix)) {
			return price / div
		}
	}
	return price
}
