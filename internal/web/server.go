package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/wasteless/internal/domain"
	"github.com/vbonduro/wasteless/internal/recipes"
	"github.com/vbonduro/wasteless/internal/service"
	"github.com/vbonduro/wasteless/internal/session"
)

const defaultRecipeTimeout = 20 * time.Second

type Server struct {
	inventory     *service.InventoryService
	auth          *service.AuthService
	sessions      *session.Manager
	generator     recipes.Generator
	recipeTimeout time.Duration
	templates     embed.FS
	mux           *http.ServeMux
	tmplFuncs     template.FuncMap
	logger        *slog.Logger
	now           func() time.Time
}

// NewServer wires the HTTP handlers. gen may be nil, in which case the tips
// tabs show only the built-in recipes.
func NewServer(inv *service.InventoryService, auth *service.AuthService, sessions *session.Manager, gen recipes.Generator, tmpl embed.FS, logger *slog.Logger) *Server {
	s := &Server{
		inventory:     inv,
		auth:          auth,
		sessions:      sessions,
		generator:     gen,
		recipeTimeout: defaultRecipeTimeout,
		templates:     tmpl,
		mux:           http.NewServeMux(),
		logger:        logger,
		now:           time.Now,
		tmplFuncs: template.FuncMap{
			"dashboardPath": dashboardPath,
			"authPath":      authPath,
		},
	}
	s.registerRoutes()
	return s
}

// SetRecipeTimeout bounds each call to the recipe generator.
func (s *Server) SetRecipeTimeout(d time.Duration) {
	if d > 0 {
		s.recipeTimeout = d
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleLanding)
	s.mux.HandleFunc("GET /auth/{role}", s.handleAuthForm)
	s.mux.HandleFunc("POST /auth/{role}/login", s.handleLogin)
	s.mux.HandleFunc("POST /auth/{role}/register", s.handleRegister)
	s.mux.HandleFunc("POST /logout", s.handleLogout)

	s.mux.Handle("GET /seller", s.requireRole(domain.RoleSeller, s.handleDashboard))
	s.mux.Handle("POST /seller/items", s.requireRole(domain.RoleSeller, s.handleAddItem))
	s.mux.Handle("DELETE /seller/items/{id}", s.requireRole(domain.RoleSeller, s.handleDeleteItem))
	s.mux.Handle("POST /seller/items/{id}/listing", s.requireRole(domain.RoleSeller, s.handleListItem))
	s.mux.Handle("DELETE /seller/items/{id}/listing", s.requireRole(domain.RoleSeller, s.handleUnlistItem))

	s.mux.Handle("GET /buyer", s.requireRole(domain.RoleBuyer, s.handleDashboard))
	s.mux.Handle("POST /buyer/items", s.requireRole(domain.RoleBuyer, s.handleAddItem))
	s.mux.Handle("DELETE /buyer/items/{id}", s.requireRole(domain.RoleBuyer, s.handleDeleteItem))
	s.mux.Handle("POST /buyer/market/{id}/buy", s.requireRole(domain.RoleBuyer, s.handleBuy))
	s.mux.Handle("GET /buyer/sellers/{id}", s.requireRole(domain.RoleBuyer, s.handleSellerProfile))
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

type claimsKey struct{}

// requireRole rejects requests without a valid session for role. Page loads
// are redirected to the login form; other requests get a status code.
func (s *Server) requireRole(role domain.Role, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.sessions.FromRequest(r)
		if err != nil {
			if r.Method == http.MethodGet {
				redirect(w, r, authPath(role)+"?mode=login")
				return
			}
			http.Error(w, "login required", http.StatusUnauthorized)
			return
		}
		if claims.Role != role {
			if r.Method == http.MethodGet {
				redirect(w, r, dashboardPath(claims.Role))
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*session.Claims)
	return claims
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends htmx requests an HX-Redirect and everything else a 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	return s.render(w, "base", data, nil, files...)
}

// renderPartial parses files and executes the named template.
func (s *Server) renderPartial(w http.ResponseWriter, name string, data any, files ...string) error {
	return s.render(w, name, data, nil, files...)
}

// render parses files, applies aliases (new name -> existing template), and
// executes name.
func (s *Server) render(w http.ResponseWriter, name string, data any, aliases map[string]string, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	for alias, target := range aliases {
		if tmpl.Lookup(target) == nil {
			http.Error(w, "template error", http.StatusInternalServerError)
			return fmt.Errorf("template %q not defined", target)
		}
		if _, err := tmpl.New(alias).Parse(fmt.Sprintf("{{template %q .}}", target)); err != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
			return err
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, name, data)
}

// authPath is the sign-in page for a role.
func authPath(role domain.Role) string {
	if role == domain.RoleBuyer {
		return "/auth/buyer"
	}
	return "/auth/seller"
}

func dashboardPath(role domain.Role) string {
	if role == domain.RoleBuyer {
		return "/buyer"
	}
	return "/seller"
}

// roleFromPath parses the {role} path value. "user" is accepted as an alias
// for the seller role.
func roleFromPath(r *http.Request) (domain.Role, bool) {
	switch r.PathValue("role") {
	case "seller", string(domain.RoleSeller):
		return domain.RoleSeller, true
	case string(domain.RoleBuyer):
		return domain.RoleBuyer, true
	default:
		return "", false
	}
}
