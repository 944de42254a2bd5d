package http

import (
	"net/http"

	"github.com/frontandrew/caretrip/internal/delivery/http/middleware"
	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/config"
	"github.com/frontandrew/caretrip/internal/pkg/jwt"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers - набор HTTP обработчиков приложения
type Handlers struct {
	Auth         *AuthHandler
	Organization *OrganizationHandler
	Driver       *DriverHandler
	Vehicle      *VehicleHandler
	Route        *RouteHandler
	Rider        *RiderHandler
	Record       *RecordHandler
	Report       *ReportHandler
}

// Router содержит все зависимости для HTTP роутера
type Router struct {
	handlers     Handlers
	tokenService *jwt.TokenService
	config       *config.Config
	logger       logger.Logger
}

// NewRouter создает новый HTTP router
func NewRouter(
	handlers Handlers,
	tokenService *jwt.TokenService,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		handlers:     handlers,
		tokenService: tokenService,
		config:       config,
		logger:       logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	h := rt.handlers
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.config.CORS.AllowedOrigins,
		AllowedMethods:   rt.config.CORS.AllowedMethods,
		AllowedHeaders:   rt.config.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: rt.config.CORS.AllowCredentials,
		MaxAge:           rt.config.CORS.MaxAge,
	}))

	health := func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	}
	r.Get("/health", health)

	adminOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		// Public routes (без аутентификации)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/driver/login", h.Auth.DriverLogin)
			r.Post("/refresh", h.Auth.Refresh)
			r.Get("/login-options", h.Auth.LoginOptions)
		})

		// Protected routes (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokenService))

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.GetMe)

			// Driver only
			r.Route("/driver", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleDriver))
				r.Get("/session", h.Auth.GetSession)
				r.Put("/session", h.Auth.UpdateSession)
				r.Get("/records/today", h.Record.Today)
				r.Post("/records/{kind}/reconcile", h.Record.Reconcile)
			})

			// Records: водитель видит только свои записи
			r.Route("/records/{kind}", func(r chi.Router) {
				r.With(adminOnly).Get("/", h.Record.ListRecords)
				r.With(adminOnly).Post("/", h.Record.Plan)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Record.GetRecord)
					r.Patch("/", h.Record.UpdateRecordField)
					r.Patch("/details/{detailID}", h.Record.UpdateDetailField)
					r.Post("/start", h.Record.StartRecord)
					r.Post("/complete", h.Record.CompleteRecord)
					r.Post("/cancel", h.Record.CancelRecord)
					r.With(adminOnly).Delete("/", h.Record.DeleteRecord)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Route("/drivers", func(r chi.Router) {
					r.Get("/", h.Driver.ListDrivers)
					r.Post("/", h.Driver.CreateDriver)
					r.Get("/{id}", h.Driver.GetDriver)
					r.Put("/{id}", h.Driver.UpdateDriver)
					r.Delete("/{id}", h.Driver.DeactivateDriver)
					r.Post("/{id}/password", h.Driver.ResetPassword)
				})

				r.Route("/vehicles", func(r chi.Router) {
					r.Get("/", h.Vehicle.ListVehicles)
					r.Post("/", h.Vehicle.CreateVehicle)
					r.Get("/oil-status", h.Vehicle.OilStatuses)
					r.Get("/{id}", h.Vehicle.GetVehicleByID)
					r.Put("/{id}", h.Vehicle.UpdateVehicle)
					r.Delete("/{id}", h.Vehicle.DeactivateVehicle)
					r.Post("/{id}/oil-change", h.Vehicle.RecordOilChange)
				})

				r.Route("/routes", func(r chi.Router) {
					r.Get("/", h.Route.ListRoutes)
					r.Post("/", h.Route.CreateRoute)
					r.Get("/{id}", h.Route.GetRoute)
					r.Put("/{id}", h.Route.UpdateRoute)
					r.Delete("/{id}", h.Route.DeleteRoute)
					r.Post("/{id}/destinations", h.Route.AddDestination)
					r.Put("/{id}/destinations/order", h.Route.ReorderDestinations)
					r.Put("/{id}/destinations/{destID}", h.Route.UpdateDestination)
					r.Delete("/{id}/destinations/{destID}", h.Route.DeleteDestination)
				})

				r.Route("/riders", func(r chi.Router) {
					r.Get("/", h.Rider.ListRiders)
					r.Post("/", h.Rider.CreateRider)
					r.Get("/{id}", h.Rider.GetRider)
					r.Put("/{id}", h.Rider.UpdateRider)
					r.Delete("/{id}", h.Rider.DeactivateRider)
					r.Post("/{id}/addresses", h.Rider.AddAddress)
					r.Put("/{id}/addresses/{addressID}", h.Rider.UpdateAddress)
					r.Delete("/{id}/addresses/{addressID}", h.Rider.DeleteAddress)
					r.Post("/{id}/addresses/{addressID}/primary", h.Rider.SetPrimaryAddress)
				})

				r.Route("/reports", func(r chi.Router) {
					r.Get("/completion", h.Report.Completion)
					r.Get("/route-performance", h.Report.RoutePerformance)
					r.Get("/dashboard", h.Report.Dashboard)
				})
				r.Get("/exports/{kind}", h.Report.Export)
			})

			// Super-admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleSuperAdmin))

				r.Route("/organizations", func(r chi.Router) {
					r.Get("/", h.Organization.ListOrganizations)
					r.Post("/", h.Organization.CreateOrganization)
					r.Get("/{id}/codes", h.Organization.ListCodes)
					r.Post("/{id}/codes", h.Organization.IssueCode)
					r.Delete("/{id}/codes/{codeID}", h.Organization.DeactivateCode)
				})

				r.Route("/admins", func(r chi.Router) {
					r.Get("/", h.Organization.ListAdmins)
					r.Post("/", h.Organization.CreateAdmin)
				})
			})
		})
	})

	return r
}
