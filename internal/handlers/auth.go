package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dcmanaus/laudosgo/internal/middleware"
	"github.com/dcmanaus/laudosgo/internal/utils"
)

type loginPage struct {
	Erro string
}

// hashCredential prepares the configured shared password for comparison.
func hashCredential(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing credential: %w", err)
	}
	return hash, nil
}

func (r *Router) loginForm(w http.ResponseWriter, req *http.Request) {
	r.render(w, "login.html", loginPage{})
}

// login checks the shared credential pair and sets the session cookie
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		r.render(w, "login.html", loginPage{Erro: "Requisição inválida."})
		return
	}

	username := req.FormValue("username")
	password := req.FormValue("password")

	if username != r.cfg.Username || !utils.CheckPasswordHash(password, r.passwordHash) {
		r.render(w, "login.html", loginPage{Erro: "Usuário ou senha incorretos."})
		return
	}

	token, err := utils.GenerateSessionToken(username, r.cfg.JWTSecret)
	if err != nil {
		log.Printf("❌ Failed to generate session token: %v", err)
		http.Error(w, "Erro interno.", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, req, "/home", http.StatusFound)
}

// logout clears the session cookie
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, req, "/login", http.StatusFound)
}

func (r *Router) home(w http.ResponseWriter, req *http.Request) {
	r.render(w, "home.html", nil)
}

func (r *Router) equipes(w http.ResponseWriter, req *http.Request) {
	fmt.Fprint(w, "Página de Equipes (em construção)")
}

func (r *Router) dashboard(w http.ResponseWriter, req *http.Request) {
	fmt.Fprint(w, "Página de Dashboard (em construção)")
}
