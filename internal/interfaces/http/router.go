package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-portal/internal/application/auth"
	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/domain/access"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC   *auth.AuthUseCase
	Manager  *credential.Manager
	Guard    *access.Guard
	Sessions SessionConfig
	Log      *logger.Logger
	// Pages sirve las rutas de páginas que pasan el guard; nil deja que Fiber responda 404.
	Pages fiber.Handler
}

// Router registra el guard de páginas y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	// Debe registrarse antes que cualquier handler de páginas.
	app.Use(PageGuard(deps.Guard, deps.Sessions, log))

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Manager, deps.Sessions, log)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/register", authHandler.Register)

	// Auth (requiere sesión)
	session := RequireSession(deps.Sessions, log)
	authGroup.Get("/me", session, authHandler.Me)
	authGroup.Post("/change-password", session, authHandler.ChangePassword)

	// Administración de cuentas (solo admin)
	admin := api.Group("/admin", session, RequireRole(entity.RoleAdmin))
	adminHandler := NewAdminHandler(deps.Manager, log)
	admin.Post("/staff", adminHandler.ProvisionStaff)
	admin.Post("/patients/:id/account", adminHandler.ProvisionPatientAccount)
	admin.Post("/identities/:id/reset-password", adminHandler.ResetPassword)

	if deps.Pages != nil {
		pages := deps.Pages
		app.Get("/*", func(c *fiber.Ctx) error {
			canonical, ok := access.CanonicalPath(c.Path())
			if !ok || isAPIPath(canonical) {
				return fiber.ErrNotFound
			}
			return pages(c)
		})
	}
}
