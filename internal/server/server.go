// Package server exposes the production dashboard and serves published
// landing pages.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyeonlab/casefactory/internal/database"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the HTTP server for the dashboard and published pages.
type Server struct {
	db        *database.DB
	publicDir string
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server serving published pages from publicDir.
func New(db *database.DB, publicDir string) (*Server, error) {
	if publicDir == "" {
		publicDir = "public"
	}

	base, err := template.New("base.html").ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets a clone of the base with its own content block.
	pageNames := []string{"index.html", "cases.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, publicDir: publicDir, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/cases", s.handleCases)
	s.mux.HandleFunc("/p/", s.handlePage)
	s.mux.HandleFunc("/api/todo", s.handleAPITodo)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	stats, err := s.db.GetStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	slugs, err := s.db.ListPublishedSlugs(20)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Stats": stats,
		"Slugs": slugs,
	})
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	todo, err := s.db.ListTodo(100)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, "cases.html", map[string]any{
		"Cases": todo,
	})
}

// handlePage serves a published landing page from the public directory.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/p/")
	slug = strings.TrimSuffix(slug, ".html")
	if slug == "" || strings.Contains(slug, "/") || strings.Contains(slug, "..") {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.publicDir, slug+".html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleAPITodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.db.ListTodo(100)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type todoCase struct {
		CaseID        string `json:"case_id"`
		Slug          string `json:"slug"`
		Title         string `json:"title"`
		UserIntent    string `json:"user_intent"`
		StructureType string `json:"structure_type"`
	}
	out := make([]todoCase, 0, len(todo))
	for _, c := range todo {
		out = append(out, todoCase{
			CaseID:        c.CaseID,
			Slug:          c.Slug,
			Title:         c.Title,
			UserIntent:    c.UserIntent,
			StructureType: c.StructureType,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, publicDir string, port int) error {
	srv, err := New(db, publicDir)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
