package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/rigbot/internal/session"
)

func newTestServer(t *testing.T) (*Server, *session.SQLiteStore) {
	t.Helper()
	store, err := session.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(":0", store), store
}

func TestUserPage(t *testing.T) {
	srv, store := newTestServer(t)

	sess := session.New(42)
	b := sess.NewBuild("Gaming rig")
	b.SetPart(session.KindCPU, "AMD Ryzen 5 5600X", 160)
	b.SetPart(session.KindGPU, "MSI RTX 4060", 1300)
	if err := store.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/user/42", nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Gaming rig", "AMD Ryzen 5 5600X", "$160", "$1,460"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	// Empty slots render a placeholder, not a price.
	if !strings.Contains(body, "—") {
		t.Error("page missing empty-slot placeholder")
	}
}

func TestUserPageUnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/user/999", nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUserPageBadID(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/user/abc", nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUserPageNoBuilds(t *testing.T) {
	srv, store := newTestServer(t)

	if err := store.Put(context.Background(), session.New(42)); err != nil {
		t.Fatalf("put: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/user/42", nil)
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No builds yet") {
		t.Error("page missing empty state")
	}
}
