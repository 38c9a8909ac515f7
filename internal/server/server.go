// Package server wires services, gates and handlers into the route table
// and wraps it with the global middleware.
package server

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/i18n"
	"github.com/diewo77/go-rems/internal/chat"
	"github.com/diewo77/go-rems/internal/handlers"
	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/metrics"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/moderation"
	"github.com/diewo77/go-rems/internal/policy"
	"github.com/diewo77/go-rems/internal/realtime"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/view"
)

// Deps are the collaborators built by the command.
type Deps struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	Sessions *auth.Sessions
	Broker   realtime.Broker
	Metrics  *metrics.Metrics
	// Leads is the shared lead store. When nil every session gets its own
	// in-memory store, dropped at logout.
	Leads leads.Store
	// Web holds templates/ and static/.
	Web          fs.FS
	AuthCacheTTL time.Duration
}

// App is the main application handler.
type App struct {
	mux          *http.ServeMux
	handler      http.Handler
	log          *logrus.Logger
	sessions     *auth.Sessions
	authGate     *policy.AuthGate
	metrics      *metrics.Metrics
	leadSessions *leads.SessionStores
}

// New builds the application. d.Web may be nil in tests that only use JSON.
func New(d Deps) *App {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.AuthCacheTTL == 0 {
		d.AuthCacheTTL = 5 * time.Minute
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Broker == nil {
		d.Broker = realtime.NewMemoryBroker()
	}
	a := &App{
		mux:      http.NewServeMux(),
		log:      d.Log,
		sessions: d.Sessions,
		authGate: policy.NewAuthGate(d.DB, d.AuthCacheTTL),
		metrics:  d.Metrics,
	}

	profiles := services.NewProfiles(d.DB)
	d.Sessions.SetUserVerifier(profiles.Exists)

	var leadsFor handlers.LeadStoreFunc
	if d.Leads != nil {
		leadsFor = handlers.SharedLeadStore(d.Leads)
	} else {
		a.leadSessions = leads.NewSessionStores()
		d.Sessions.OnSessionEnd(a.leadSessions.Drop)
		leadsFor = handlers.SessionLeadStores(a.leadSessions)
	}

	if d.Web != nil {
		view.SetFS(d.Web)
	}
	view.SetLangResolver(func(r *http.Request) string { return i18n.LangFromContext(r.Context()) })
	view.SetCanRoleResolver(func(r *http.Request, resource, action string) bool {
		return a.authGate.CanRole(r.Context(), gate.Action(action), resource)
	})
	view.SetRoleResolver(func(r *http.Request) string { return a.authGate.Role(r.Context()) })

	listings := services.NewListings(d.DB, a.authGate)
	reviews := services.NewReviews(d.DB, a.authGate)
	favorites := services.NewFavorites(d.DB)
	visits := services.NewVisits(d.DB, a.authGate)
	chatSvc := chat.NewService(d.DB, d.Broker, d.Log, d.Metrics)

	modOpts := []moderation.Option{moderation.WithLogger(d.Log), moderation.WithObserver(d.Metrics)}

	a.routes(routeHandlers{
		auth:       handlers.NewAuthHandler(profiles, d.Sessions, d.Log),
		properties: handlers.NewPropertyHandler(listings, reviews, favorites, visits, leadsFor, d.Log),
		messages:   handlers.NewMessageHandler(chatSvc, listings, d.Log),
		dashboard:  handlers.NewDashboardHandler(profiles, services.NewDashboards(d.DB), favorites, visits, leadsFor, d.Log),
		agent:      handlers.NewAgentHandler(listings, visits, leadsFor, d.Log),
		admin: handlers.NewAdminHandler(d.DB,
			moderation.NewListingGate(d.DB, modOpts...),
			moderation.NewReviewGate(d.DB, modOpts...),
			moderation.NewAgentGate(d.DB, a.authGate, modOpts...),
			profiles,
			d.Log),
		health: handlers.Health(d.DB),
		web:    d.Web,
	})

	a.handler = recoverPanics(d.Log,
		logRequests(d.Log,
			d.Metrics.Middleware(
				d.Sessions.Middleware(
					withPreferences(a.mux)))))
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// AuthGate is exposed for tests and the command.
func (a *App) AuthGate() *policy.AuthGate { return a.authGate }

// LeadSessions is nil when a shared lead store is used.
func (a *App) LeadSessions() *leads.SessionStores { return a.leadSessions }

type routeHandlers struct {
	auth       *handlers.AuthHandler
	properties *handlers.PropertyHandler
	messages   *handlers.MessageHandler
	dashboard  *handlers.DashboardHandler
	agent      *handlers.AgentHandler
	admin      *handlers.AdminHandler
	health     http.HandlerFunc
	web        fs.FS
}

func (a *App) routes(h routeHandlers) {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /healthz", h.health)
	a.mux.Handle("GET /metrics", a.metrics.Handler())
	a.mux.HandleFunc("GET /login", h.auth.Login)
	a.mux.HandleFunc("POST /login", h.auth.Login)
	a.mux.HandleFunc("GET /signup", h.auth.Signup)
	a.mux.HandleFunc("POST /signup", h.auth.Signup)
	a.mux.HandleFunc("POST /logout", h.auth.Logout)
	a.mux.HandleFunc("GET /{$}", h.properties.Index)
	a.mux.HandleFunc("GET /properties", h.properties.Index)
	a.mux.HandleFunc("GET /properties/{id}", h.properties.Show)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	ph, mh, dh := h.properties, h.messages, h.dashboard
	a.mux.Handle("GET /me", a.requireAuth(http.HandlerFunc(h.auth.Me)))
	a.mux.Handle("POST /properties/{id}/reviews", a.can("review", gate.ActionCreate, ph.Review))
	a.mux.Handle("POST /properties/{id}/favorite", a.can("favorite", gate.ActionCreate, ph.Favorite))
	a.mux.Handle("POST /properties/{id}/visits", a.can("visit", gate.ActionCreate, ph.Visit))
	a.mux.Handle("POST /properties/{id}/interest", a.can("lead", gate.ActionCreate, ph.Interest))
	a.mux.Handle("GET /properties/{id}/messages", a.can("message", gate.ActionView, mh.History))
	a.mux.Handle("POST /properties/{id}/messages", a.can("message", gate.ActionCreate, mh.Send))
	a.mux.Handle("GET /properties/{id}/messages/stream", a.can("message", gate.ActionView, mh.Stream))

	a.mux.Handle("GET /dashboard", a.requireAuth(http.HandlerFunc(dh.Show)))
	a.mux.Handle("GET /dashboard/profile", a.can("profile", gate.ActionView, dh.Profile))
	a.mux.Handle("POST /dashboard/profile", a.can("profile", gate.ActionUpdate, dh.Profile))
	a.mux.Handle("GET /dashboard/favorites", a.can("favorite", gate.ActionList, dh.Favorites))
	a.mux.Handle("GET /dashboard/visits", a.can("visit", gate.ActionList, dh.Visits))
	a.mux.Handle("GET /visits/{id}", a.can("visit", gate.ActionView, dh.Visit))

	// ─────────────────────────────────────────────────────────────────────────
	// Agent routes
	// ─────────────────────────────────────────────────────────────────────────
	ag := h.agent
	a.mux.Handle("GET /agent/listings", a.agentOnly("property", gate.ActionList, ag.Listings))
	a.mux.Handle("GET /agent/listings/new", a.agentOnly("property", gate.ActionCreate, ag.New))
	a.mux.Handle("POST /agent/listings", a.agentOnly("property", gate.ActionCreate, ag.Create))
	a.mux.Handle("GET /agent/listings/{id}", a.agentOnly("property", gate.ActionUpdate, ag.Edit))
	a.mux.Handle("POST /agent/listings/{id}", a.agentOnly("property", gate.ActionUpdate, ag.Update))
	a.mux.Handle("POST /agent/listings/{id}/delete", a.agentOnly("property", gate.ActionDelete, ag.Delete))
	a.mux.Handle("GET /agent/visits", a.agentOnly("visit", gate.ActionList, ag.Visits))
	a.mux.Handle("GET /agent/leads", a.agentOnly("lead", gate.ActionList, ag.Leads))
	a.mux.Handle("POST /agent/leads/{id}/status", a.agentOnly("lead", gate.ActionUpdate, ag.LeadStatus))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes (moderation actions require the "*:*" grant)
	// ─────────────────────────────────────────────────────────────────────────
	ad := h.admin
	a.mux.Handle("GET /admin/listings", a.can("property", gate.ActionModerate, ad.Listings))
	a.mux.Handle("POST /admin/listings/{id}/approve", a.can("property", gate.ActionApprove, ad.ApproveListing))
	a.mux.Handle("POST /admin/listings/{id}/reject", a.can("property", gate.ActionReject, ad.RejectListing))
	a.mux.Handle("GET /admin/reviews", a.can("review", gate.ActionModerate, ad.Reviews))
	a.mux.Handle("POST /admin/reviews/{id}/approve", a.can("review", gate.ActionApprove, ad.ApproveReview))
	a.mux.Handle("POST /admin/reviews/{id}/reject", a.can("review", gate.ActionReject, ad.RejectReview))
	a.mux.Handle("GET /admin/agents", a.can("profile", gate.ActionModerate, ad.Agents))
	a.mux.Handle("POST /admin/agents/{id}/approve", a.can("profile", gate.ActionApprove, ad.ApproveAgent))
	a.mux.Handle("POST /admin/agents/{id}/reject", a.can("profile", gate.ActionReject, ad.RejectAgent))
	a.mux.Handle("GET /admin/users", a.adminOnly(ad.Users))
	a.mux.Handle("GET /admin/permissions", a.adminOnly(ad.Permissions))

	// ─────────────────────────────────────────────────────────────────────────
	// Static files
	// ─────────────────────────────────────────────────────────────────────────
	if h.web != nil {
		if static, err := fs.Sub(h.web, "static"); err == nil {
			a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
		}
	}
}

// requireAuth also logs out sessions of deleted users.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return a.sessions.RequireAuth(next)
}

// can requires a signed-in user whose role grants resource:action.
func (a *App) can(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
	return a.requireAuth(a.authGate.RequirePermission(resource, action)(h))
}

func (a *App) agentOnly(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
	return a.requireAuth(a.authGate.RequireRole(models.RoleAgent)(a.authGate.RequirePermission(resource, action)(h)))
}

func (a *App) adminOnly(h http.HandlerFunc) http.Handler {
	return a.requireAuth(a.authGate.RequireAdmin()(h))
}
