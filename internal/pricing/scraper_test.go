package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScraperFetch(t *testing.T) {
	srv := servePage(t, `<html><body>
		<div class="product"><span class="a-price-whole">1,299</span></div>
	</body></html>`)

	s := NewScraper("a-price-whole", 5*time.Second)
	price, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if price != 1299 {
		t.Fatalf("price = %d, want 1299", price)
	}
}

func TestScraperMultiClassAttribute(t *testing.T) {
	srv := servePage(t, `<html><body>
		<span class="price big a-price-whole highlight">459</span>
	</body></html>`)

	s := NewScraper("a-price-whole", 5*time.Second)
	price, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if price != 459 {
		t.Fatalf("price = %d, want 459", price)
	}
}

func TestScraperPriceNotFound(t *testing.T) {
	srv := servePage(t, `<html><body><span class="other">100</span></body></html>`)

	s := NewScraper("a-price-whole", 5*time.Second)
	if _, err := s.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrPriceNotFound) {
		t.Fatalf("err = %v, want ErrPriceNotFound", err)
	}
}

func TestScraperNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	s := NewScraper("a-price-whole", 5*time.Second)
	if _, err := s.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("want error for 403")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1,299", 1299, false},
		{" 45 999 грн ", 45999, false},
		{"$599", 599, false},
		{"no digits", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePrice(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
