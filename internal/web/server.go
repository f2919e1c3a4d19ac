// Package web serves the read-only build viewer: a single page listing all
// of a user's saved builds.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nextlevelbuilder/rigbot/internal/session"
)

// Server is the HTTP surface. It reads sessions straight from the store so
// the page always reflects persisted state.
type Server struct {
	store   session.Store
	httpSrv *http.Server
	tmpl    *template.Template
	printer *message.Printer
}

// NewServer builds the server listening on addr.
func NewServer(addr string, store session.Store) *Server {
	s := &Server{
		store:   store,
		tmpl:    template.Must(template.New("user").Parse(userPage)),
		printer: message.NewPrinter(language.English),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/{id}", s.handleUser)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.withAccessLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server started", "addr", s.httpSrv.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web server: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

type buildView struct {
	Name    string
	Created string
	Parts   []partView
	Total   string
}

type partView struct {
	Slot  string
	Name  string
	Price string
}

type userView struct {
	UserID int64
	Builds []buildView
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	sess, err := s.store.Get(r.Context(), userID)
	if errors.Is(err, session.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("load session failed", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view := userView{UserID: userID}
	for _, b := range sess.Builds {
		bv := buildView{
			Name:    b.Name,
			Created: b.CreatedAt.Format("02.01.2006"),
			Total:   s.printer.Sprintf("$%d", b.TotalPrice),
		}
		for _, k := range session.Kinds() {
			pv := partView{Slot: k.Label(), Name: "—"}
			if p, ok := b.Part(k); ok {
				pv.Name = p.Name
				pv.Price = s.printer.Sprintf("$%d", p.Price)
			}
			bv.Parts = append(bv.Parts, pv)
		}
		view.Builds = append(view.Builds, bv)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, view); err != nil {
		slog.Error("render page failed", "user_id", userID, "error", err)
	}
}

const userPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Builds of user {{.UserID}}</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; color: #222; }
.build { border: 1px solid #ddd; border-radius: 8px; padding: 1em 1.5em; margin-bottom: 1.5em; }
.build h2 { margin-top: 0; }
.created { color: #888; font-size: 0.9em; }
table { border-collapse: collapse; width: 100%; }
td { padding: 0.3em 0.5em; border-bottom: 1px solid #eee; }
td.price { text-align: right; white-space: nowrap; }
.total { font-weight: bold; }
</style>
</head>
<body>
<h1>Saved builds</h1>
{{if not .Builds}}<p>No builds yet.</p>{{end}}
{{range .Builds}}
<div class="build">
<h2>{{.Name}}</h2>
<p class="created">Created {{.Created}}</p>
<table>
{{range .Parts}}<tr><td>{{.Slot}}</td><td>{{.Name}}</td><td class="price">{{.Price}}</td></tr>
{{end}}<tr class="total"><td>Total</td><td></td><td class="price">{{.Total}}</td></tr>
</table>
</div>
{{end}}
</body>
</html>
`
