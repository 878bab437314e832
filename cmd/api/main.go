package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/clinica-portal/internal/application/auth"
	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain/access"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/memory"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/postgres"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/security"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/session"
	httpRouter "github.com/jhoicas/clinica-portal/internal/interfaces/http"
	"github.com/jhoicas/clinica-portal/pkg/config"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Backend).
		Str("sessions", cfg.Session.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacén de identidades
	var (
		txRunner ports.IdentityTxRunner
		repos    auth.Repositories
	)
	switch cfg.DB.Backend {
	case "memory":
		log.Warn().Msg("STORAGE_BACKEND=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		txRunner = store
		repos = auth.Repositories{
			Identities:  store.Identities(),
			Credentials: store.Credentials(),
			Patients:    store.Patients(),
			Staff:       store.Staff(),
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		repos = auth.Repositories{
			Identities:  postgres.NewIdentityRepository(pool),
			Credentials: postgres.NewCredentialRepository(pool),
			Patients:    postgres.NewPatientRepository(pool),
			Staff:       postgres.NewStaffRepository(pool),
		}
	}

	// Sesiones
	var sessions ports.SessionProvider
	switch cfg.Session.Backend {
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() { _ = client.Close() }()
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
	default:
		sessions = session.NewJWTProvider(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.TTL)
	}

	guard, err := access.NewGuard(access.RouteTable{
		LoginPath:       cfg.Routes.LoginPath,
		StaffHome:       cfg.Routes.StaffHome,
		PatientHome:     cfg.Routes.PatientHome,
		AdminPrefixes:   cfg.Routes.AdminPrefixes,
		StaffPrefixes:   cfg.Routes.StaffPrefixes,
		PatientPrefixes: cfg.Routes.PatientPrefixes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("tabla de rutas inválida")
	}

	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	manager := credential.NewManager(txRunner, hasher, security.NewRandomGenerator(), credential.Options{
		TempPasswordLength:   cfg.Security.TempPasswordLength,
		MinPasswordLength:    cfg.Security.MinPasswordLength,
		SyntheticEmailDomain: cfg.Security.SyntheticEmailDomain,
	}, log)
	authUC, err := auth.NewAuthUseCase(repos, hasher, sessions, guard, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar autenticación")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Clínica Portal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	var pages fiber.Handler
	if cfg.HTTP.FrontendURL != "" {
		pages = httpRouter.FrontendProxy(cfg.HTTP.FrontendURL)
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:  authUC,
		Manager: manager,
		Guard:   guard,
		Sessions: httpRouter.SessionConfig{
			Provider:      sessions,
			CookieName:    cfg.Session.CookieName,
			CookieSecure:  cfg.Session.CookieSecure,
			TTL:           cfg.Session.TTL,
			LookupTimeout: cfg.Session.LookupTimeout,
		},
		Log:   log,
		Pages: pages,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
