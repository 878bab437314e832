// seed crea la primera cuenta de administrador sobre PostgreSQL e imprime su contraseña temporal.
//
// Uso: go run ./cmd/seed -email admin@clinica.com -name "Administración"
// La contraseña se muestra una sola vez; el administrador debe cambiarla al iniciar sesión.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/postgres"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/security"
	"github.com/jhoicas/clinica-portal/pkg/config"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email del administrador (obligatorio)")
	name := flag.String("name", "Administrador", "nombre completo")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "seed: -email es obligatorio")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DB.Backend != "postgres" {
		fmt.Fprintln(os.Stderr, "seed: STORAGE_BACKEND debe ser postgres")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintln(os.Stderr, "postgres:", err)
		os.Exit(1)
	}
	defer pool.Close()

	manager := credential.NewManager(
		postgres.NewTxRunner(pool),
		security.NewBcryptHasher(cfg.Security.BcryptCost),
		security.NewRandomGenerator(),
		credential.Options{
			TempPasswordLength:   cfg.Security.TempPasswordLength,
			MinPasswordLength:    cfg.Security.MinPasswordLength,
			SyntheticEmailDomain: cfg.Security.SyntheticEmailDomain,
		},
		log,
	)

	out, err := manager.ProvisionStaff(ctx, dto.ProvisionStaffRequest{
		FullName: *name,
		Email:    *email,
		Role:     entity.RoleAdmin.String(),
	})
	if errors.Is(err, domain.ErrEmailExists) {
		fmt.Fprintln(os.Stderr, "seed: ya existe una cuenta con ese email")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	fmt.Println("Administrador creado")
	fmt.Println("  id:      ", out.Identity.ID)
	fmt.Println("  usuario: ", out.Credentials.Username)
	fmt.Println("  password:", out.Credentials.Password)
}
