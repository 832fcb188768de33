package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
	"github.com/isdelr/teamup-web/internal/api/handlers"
	"github.com/isdelr/teamup-web/internal/auth"
	"github.com/isdelr/teamup-web/internal/websocket"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions       *handlers.SessionLoader
	Cookies        *auth.CookieManager
	Hub            *websocket.Hub
	DB             handlers.Pinger
	AllowedOrigins []string
	// CSRFKey authenticates the CSRF cookie; 32 bytes.
	CSRFKey []byte
	// Secure is false only for plain-http development.
	Secure bool
}

// csrfCookieName names the cookie holding the CSRF token.
const csrfCookieName = "teamup_csrf"

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The single-page app calls with the session cookie, so credentials are allowed.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Location", handlers.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Cookies, deps.Sessions)
	projectHandler := handlers.NewProjectHandler()
	teamHandler := handlers.NewTeamHandler()
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	r.Get("/healthz", handlers.Health(deps.DB))

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		if !deps.Secure {
			r.Use(plaintext)
		}
		r.Use(csrfProtect(deps))
		r.Use(handlers.ExposeCSRFToken)
		r.Use(deps.Sessions.Middleware)

		r.Get("/", userHandler.Home)
		r.Post("/login", userHandler.Login)
		r.Post("/register", userHandler.Register)
		r.Post("/logout", userHandler.Logout)
		r.Get("/profile", userHandler.GetProfile)
		r.Put("/profile", userHandler.UpdateProfile)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.GetAll)
			r.Post("/", projectHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Put("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
				r.Get("/edit", projectHandler.Edit)
				r.Post("/vote", projectHandler.Vote)
				r.Get("/requests", projectHandler.GetRequests)
				r.Post("/requests", projectHandler.RequestJoin)

				r.Route("/team", func(r chi.Router) {
					r.Get("/", teamHandler.Get)
					r.Get("/comments", teamHandler.GetComments)
					r.Post("/comments", teamHandler.AddComment)
					r.Delete("/comments/{commentId}", teamHandler.DeleteComment)
					r.Delete("/{userId}", teamHandler.RemoveMember)
				})
			})
		})

		r.Put("/requests/{id}", projectHandler.RespondToRequest)

		r.Get("/me/projects", projectHandler.GetMine)
		r.Get("/me/requests", projectHandler.GetMyRequests)

		r.Get("/users", userHandler.List)
		r.Get("/users/{id}", userHandler.Get)

		// WebSocket connection endpoint
		r.Get("/ws/projects/{id}/team", wsHandler.Serve)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}

// csrfProtect rejects unsafe requests that lack the token issued in the
// X-CSRF-Token response header, or that come from an origin outside
// AllowedOrigins.
func csrfProtect(deps Deps) func(http.Handler) http.Handler {
	sameSite := csrf.SameSiteLaxMode
	if deps.Secure {
		sameSite = csrf.SameSiteNoneMode
	}
	return csrf.Protect(deps.CSRFKey,
		csrf.Secure(deps.Secure),
		csrf.Path("/"),
		csrf.SameSite(sameSite),
		csrf.CookieName(csrfCookieName),
		csrf.RequestHeader(handlers.CSRFHeader),
		csrf.TrustedOrigins(originHosts(deps.AllowedOrigins)),
		csrf.ErrorHandler(http.HandlerFunc(handlers.CSRFFailure)),
	)
}

// plaintext tells the CSRF check the request arrived over http, so the
// Referer requirement for https is skipped.
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// originHosts reduces CORS origins to the host[:port] form TrustedOrigins
// compares against.
func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
