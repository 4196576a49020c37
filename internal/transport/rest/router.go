package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal/audit"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/notification"
	"github.com/frahmantamala/timesheet-management/internal/project"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	timesheetHandler *timesheet.Handler,
	userHandler *user.Handler,
	projectHandler *project.Handler,
	notificationHandler *notification.Handler,
	auditHandler *audit.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestMeta)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/totp/verify", authHandler.VerifyTOTP)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		// Everything below requires a verified session.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			if timesheetHandler != nil {
				pr.Route("/timesheets", func(tr chi.Router) {
					tr.Get("/", timesheetHandler.ListMySheets)
					tr.Get("/{id}", timesheetHandler.GetSheet)
					tr.Post("/{id}/submit", timesheetHandler.Submit)
					tr.Post("/{id}/decision", timesheetHandler.Decide)
					tr.Post("/{id}/reopen", timesheetHandler.Reopen)
				})

				pr.Route("/entries", func(er chi.Router) {
					er.Post("/", timesheetHandler.CreateEntry)
					er.Patch("/{id}", timesheetHandler.UpdateEntry)
					er.Delete("/{id}", timesheetHandler.DeleteEntry)
				})

				pr.Get("/approvals/pending", timesheetHandler.ListPendingApprovals)
			}

			if notificationHandler != nil {
				pr.Get("/notifications", notificationHandler.ListMyNotifications)
			}

			if projectHandler != nil {
				pr.Get("/projects", projectHandler.ListProjects)
				pr.Get("/projects/{id}", projectHandler.GetProject)
				pr.Get("/projects/{id}/sub-projects", projectHandler.ListSubProjects)
			}

			// Administrative surface.
			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireRole(coreuser.RoleAdmin))

				if userHandler != nil {
					ar.Route("/users", func(ur chi.Router) {
						ur.Post("/", userHandler.CreateUser)
						ur.Get("/", userHandler.ListUsers)
						ur.Get("/{id}", userHandler.GetUser)
						ur.Put("/{id}/manager", userHandler.AssignManager)
						ur.Put("/{id}/role", userHandler.ChangeRole)
						ur.Delete("/{id}", userHandler.DeactivateUser)
					})
				}

				if projectHandler != nil {
					ar.Post("/projects", projectHandler.CreateProject)
					ar.Post("/projects/{id}/sub-projects", projectHandler.CreateSubProject)
					ar.Get("/projects/{id}/validators", projectHandler.ListValidators)
					ar.Post("/projects/{id}/validators", projectHandler.AssignValidator)
					ar.Delete("/projects/{id}/validators/{userID}", projectHandler.RemoveValidator)
				}

				if auditHandler != nil {
					ar.Route("/audit-logs", func(lr chi.Router) {
						lr.Get("/", auditHandler.ListLogs)
						lr.Get("/{id}", auditHandler.GetLog)
						lr.Get("/{id}/verify", auditHandler.VerifyLog)
					})
				}
			})
		})
	})
}
