package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dcmanaus/laudosgo/internal/config"
	"github.com/dcmanaus/laudosgo/internal/middleware"
	"github.com/dcmanaus/laudosgo/internal/services/report"
	"github.com/dcmanaus/laudosgo/internal/store"
	"github.com/dcmanaus/laudosgo/internal/websocket"
	"github.com/dcmanaus/laudosgo/web"
)

// Router wraps the mux router with the store, pipeline and page templates
type Router struct {
	*mux.Router
	cfg      *config.Config
	store    store.Store
	pipeline *report.Pipeline
	hub      *websocket.Hub
	tmpl     *template.Template

	// bcrypt hash of the configured password, computed once at startup
	passwordHash string
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, st store.Store, pipeline *report.Pipeline, hub *websocket.Hub) (*Router, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	staticFS, err := web.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("loading static assets: %w", err)
	}

	r := &Router{
		Router:   mux.NewRouter(),
		cfg:      cfg,
		store:    st,
		pipeline: pipeline,
		hub:      hub,
		tmpl:     tmpl,
	}
	if r.passwordHash, err = hashCredential(cfg.Password); err != nil {
		return nil, err
	}

	// Public routes
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.HandleFunc("/login", r.loginForm).Methods("GET")
	r.HandleFunc("/login", r.login).Methods("POST")
	r.HandleFunc("/logout", r.logout).Methods("GET")
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Everything else requires a session
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(middleware.Session(cfg.JWTSecret))

	protected.HandleFunc("/", r.root).Methods("GET")
	protected.HandleFunc("/home", r.home).Methods("GET")
	protected.HandleFunc("/equipes", r.equipes).Methods("GET")
	protected.HandleFunc("/dashboard", r.dashboard).Methods("GET")

	protected.HandleFunc("/chuvas", r.chuvasForm).Methods("GET")
	protected.HandleFunc("/chuvas", r.chuvasSubmit).Methods("POST")
	protected.HandleFunc("/regularizacao", r.regularizacaoForm).Methods("GET")
	protected.HandleFunc("/regularizacao", r.regularizacaoSubmit).Methods("POST")
	protected.HandleFunc("/incendios", r.incendiosForm).Methods("GET")
	protected.HandleFunc("/incendios", r.incendiosSubmit).Methods("POST")

	protected.HandleFunc("/atendimentos", r.atendimentos).Methods("GET")
	protected.HandleFunc("/excluir_atendimento/{numero_laudo}", r.excluirAtendimento).Methods("POST")
	protected.HandleFunc("/download/{arquivo}", r.download).Methods("GET")
	protected.HandleFunc("/inserir_atendimento", r.inserirAtendimento).Methods("POST")
	protected.HandleFunc("/ws", r.hub.ServeWS).Methods("GET")

	return r, nil
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": r.cfg.StorageBackend,
	})
}

func (r *Router) root(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, "/home", http.StatusFound)
}

// render executes a page template, converting failures to a 500
func (r *Router) render(w http.ResponseWriter, name string, data interface{}) {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("❌ Failed to render %s: %v", name, err)
		http.Error(w, "Erro interno ao renderizar a página.", http.StatusInternalServerError)
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
