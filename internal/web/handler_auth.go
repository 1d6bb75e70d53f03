package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/identity"
	"github.com/vbonduro/wasteless/internal/service"
)

const (
	modeLogin    = "login"
	modeRegister = "register"
)

type landingData struct {
	Title    string
	Impact   service.Impact
	LastRole domain.Role
}

type authData struct {
	Title     string
	Role      domain.Role
	RoleLabel string
	Mode      string
	Error     string
	Name      string
	Email     string
}

func newAuthData(role domain.Role, mode string) authData {
	label := "Seller"
	if role == domain.RoleBuyer {
		label = "Buyer"
	}
	if mode != modeRegister {
		mode = modeLogin
	}
	title := "Wasteless - Log in"
	if mode == modeRegister {
		title = "Wasteless - Sign up"
	}
	return authData{Title: title, Role: role, RoleLabel: label, Mode: mode}
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.sessions.FromRequest(r); err == nil {
		redirect(w, r, dashboardPath(claims.Role))
		return
	}

	data := landingData{Title: "Wasteless", Impact: s.inventory.Impact()}
	role, _, err := s.auth.DeviceSession(r.Context())
	if err != nil {
		s.logger.Warn("failed to read device session", "error", err)
	}
	data.LastRole = role

	if err := s.renderPage(w, data, "base.html", "pages/landing.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleAuthForm(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.renderAuth(w, r, newAuthData(role, r.URL.Query().Get("mode")))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	email := r.FormValue("email")
	acct, err := s.auth.Login(r.Context(), role, email, r.FormValue("password"))
	if err != nil {
		data := newAuthData(role, modeLogin)
		data.Email = email
		data.Error = s.authErrorMessage(err)
		s.renderAuth(w, r, data)
		return
	}

	s.startSession(w, r, acct)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	role, ok := roleFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	name, email := r.FormValue("name"), r.FormValue("email")
	acct, err := s.auth.Register(r.Context(), role, name, email, r.FormValue("password"))
	if err != nil {
		data := newAuthData(role, modeRegister)
		data.Name = name
		data.Email = email
		data.Error = s.authErrorMessage(err)
		s.renderAuth(w, r, data)
		return
	}

	s.startSession(w, r, acct)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		s.logger.Error("logout failed", "error", err)
	}
	s.sessions.ClearCookie(w)
	redirect(w, r, "/")
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, acct *service.Account) {
	if err := s.sessions.SetCookie(w, acct.UID, acct.Profile.Email, acct.Profile.Role); err != nil {
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		s.logger.Error("start session failed", "uid", acct.UID, "error", err)
		return
	}
	redirect(w, r, dashboardPath(acct.Profile.Role))
}

// authErrorMessage shows identity failures as reported. Anything else is an
// internal failure and is only logged.
func (s *Server) authErrorMessage(err error) string {
	var idErr *identity.Error
	if errors.As(err, &idErr) {
		return identity.UserMessage(idErr)
	}
	s.logger.Error("auth failed", "error", err)
	return "Something went wrong. Please try again."
}

func (s *Server) renderAuth(w http.ResponseWriter, r *http.Request, data authData) {
	var err error
	if isHTMX(r) {
		err = s.renderPartial(w, "auth_form", data, "partials/auth_form.html")
	} else {
		err = s.renderPage(w, data, "base.html", "pages/auth.html", "partials/auth_form.html")
	}
	if err != nil {
		s.logger.Error("render auth failed", "error", err)
	}
}
