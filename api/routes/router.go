package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/parkinglot-manager/api/controllers"
	"github.com/angelmondragon/parkinglot-manager/api/middleware"
	"github.com/angelmondragon/parkinglot-manager/api/views"
	"github.com/angelmondragon/parkinglot-manager/internal/auth"
	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/internal/users"
	"github.com/angelmondragon/parkinglot-manager/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
	"github.com/angelmondragon/parkinglot-manager/pkg/metrics"
)

// Params carries everything the HTTP surface is wired from.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       db.Pinger
	Sessions    session.AccessSessionChecker
	Views       *views.Renderer
	Flash       flash.Flasher
	AuthService auth.Service
	Users       users.Service
	Lots        parkinglots.Service
	// Registry and Gatherer back the /metrics endpoint; both may be nil.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg, p.Views.Error),
		middleware.Logging(logg),
		middleware.Metrics(metrics.NewHTTPMetrics(p.Registry)),
		middleware.Authenticate(cfg.JWT, cfg.Session.CookieName, p.Sessions, logg),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		p.Views.Error(w, r, http.StatusNotFound)
	})

	pages := controllers.Pages{
		Views:   p.Views,
		Flash:   p.Flash,
		Session: cfg.Session,
		Logger:  logg,
	}
	lotPages := controllers.LotPages{
		Pages:   pages,
		Lots:    p.Lots,
		Metrics: metrics.NewLotMetrics(p.Registry),
	}
	profilePages := controllers.ProfilePages{
		Pages: pages,
		Users: p.Users,
		Auth:  p.AuthService,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(p)...))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/lots", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))
		r.With(middleware.RequireAuthenticated()).Get("/", controllers.APIListLots(p.Lots, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(nil, logg, enums.UserRoleLotManager))
			r.Get("/summary", controllers.APILotSummary(p.Lots, logg))
			r.Get("/{id}", controllers.APIGetLot(p.Lots, logg))
		})
	})

	r.Get("/", controllers.Home(pages))
	r.Get("/register", controllers.RegisterPage(pages))
	r.Post("/register", controllers.Register(pages, p.Users))
	r.Get("/login", controllers.LoginPage(pages))
	r.Post("/login", controllers.Login(pages, p.AuthService))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthenticated())
		r.Post("/logout", controllers.Logout(pages, p.AuthService))
		r.Get("/dashboard", controllers.Dashboard(pages, p.Users, p.Lots))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profilePages.View)
			r.Get("/edit", profilePages.EditForm)
			r.Post("/update", profilePages.Update)
			r.Get("/change-password", profilePages.ChangePasswordForm)
			r.Post("/change-password", profilePages.ChangePassword)
			r.Get("/delete", profilePages.DeleteConfirm)
			r.Post("/delete", profilePages.Delete)
		})
	})

	r.Route("/lot-manager", func(r chi.Router) {
		r.Use(middleware.RequireRole(p.Views.Forbidden, logg, enums.UserRoleLotManager))
		r.Get("/dashboard", lotPages.Dashboard)
		r.Get("/lots", lotPages.List)
		r.Get("/create-lot", lotPages.CreateForm)
		r.Post("/create-lot", lotPages.Create)
		r.Get("/edit-lot/{id}", lotPages.EditForm)
		r.Post("/edit-lot/{id}", lotPages.Update)
		r.Get("/delete-lot/{id}", lotPages.DeleteConfirm)
		r.Post("/delete-lot/{id}", lotPages.Delete)
		r.Get("/lot-details/{id}", lotPages.Details)
		r.Post("/update-occupancy/{id}", lotPages.UpdateOccupancy)
	})

	return r
}

func readinessChecks(p Params) []controllers.ReadinessCheck {
	var checks []controllers.ReadinessCheck
	if p.DB != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "database", Ping: p.DB.Ping})
	}
	if p.Redis != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Ping: p.Redis.Ping})
	}
	return checks
}
