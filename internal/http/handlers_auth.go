package http

import (
	"log/slog"
	"net/http"
)

// genericAuthError is the only message shown for rejected credentials.
// Backend detail never reaches the page.
const genericAuthError = "Não foi possível autenticar. Verifique os dados."

type loginView struct {
	Mode  string // "login" or "register"
	Email string
	Error string
}

// handleLoginPage renders the combined login/register page (GET /login).
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode != "register" {
		mode = "login"
	}
	s.render(w, r, "login.html", loginView{Mode: mode})
}

// handleLogin exchanges the submitted credentials for a session
// (POST /login).
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "login.html", loginView{Mode: "login", Error: genericAuthError})
		return
	}

	form := parseLoginForm(r)
	if err := s.validate.Struct(form); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "login.html", loginView{Mode: "login", Email: form.Email, Error: "Informe e-mail válido e senha com ao menos 6 caracteres."})
		return
	}

	sid := s.sessionID(w, r)
	if _, err := s.sessions.Login(r.Context(), sid, form.Email, form.Password); err != nil {
		slog.InfoContext(r.Context(), "Login rejected", "email", form.Email)
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login.html", loginView{Mode: "login", Email: form.Email, Error: genericAuthError})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRegister creates the account and logs it in right away
// (POST /register), mirroring the first-access flow.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "login.html", loginView{Mode: "register", Error: genericAuthError})
		return
	}

	form := parseLoginForm(r)
	if err := s.validate.Struct(form); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "login.html", loginView{Mode: "register", Email: form.Email, Error: "Informe e-mail válido e senha com ao menos 6 caracteres."})
		return
	}

	ctx := r.Context()
	if err := s.sessions.Register(ctx, form.Email, form.Password); err != nil {
		slog.InfoContext(ctx, "Registration rejected", "email", form.Email)
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login.html", loginView{Mode: "register", Email: form.Email, Error: genericAuthError})
		return
	}

	sid := s.sessionID(w, r)
	if _, err := s.sessions.Login(ctx, sid, form.Email, form.Password); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login.html", loginView{Mode: "login", Email: form.Email, Error: genericAuthError})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout clears the session synchronously; no backend call is made
// (POST /logout).
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	s.sessions.Logout(r.Context(), sid)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
