// Package migrate aplica las migraciones SQL embebidas con golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jhoicas/clinica-portal/internal/db"
)

// ErrNoChange la base ya está en la versión pedida.
var ErrNoChange = migrate.ErrNoChange

// Direcciones soportadas.
const (
	Up   = "up"
	Down = "down"
)

// Run aplica las migraciones en la dirección indicada ("up" o "down").
// Estar ya en la versión objetivo no es error.
func Run(dsn, direction string) error {
	if strings.TrimSpace(dsn) == "" {
		return errors.New("migrate: DSN vacío; defina DATABASE_URL o DB_HOST/DB_NAME")
	}
	if direction != Up && direction != Down {
		return fmt.Errorf("migrate: dirección inválida %q (up|down)", direction)
	}

	sourceDriver, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if direction == Up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}
