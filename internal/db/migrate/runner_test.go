package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-portal/internal/db"
)

func TestRun_DSNVacio(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		err := Run(dsn, Up)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DSN vacío")
	}
}

func TestRun_DireccionInvalida(t *testing.T) {
	for _, dir := range []string{"", "UP", "Down", "sideways"} {
		err := Run("postgres://localhost/test", dir)
		require.Error(t, err, dir)
		assert.Contains(t, err.Error(), "dirección inválida")
	}
}

func TestMigrationFS_ParesUpDown(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("archivo inesperado en migrations: %s", name)
		}
	}
	assert.Equal(t, ups, downs, "cada migración up tiene su down")
}

func TestMigrationFS_ConstraintsUsadasPorLosRepositorios(t *testing.T) {
	raw, err := fs.ReadFile(db.MigrationFS, "migrations/000001_identity.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	for _, name := range []string{
		"identities_email_key",
		"credentials_identity_provider_key",
		"patients_national_id_key",
		"patients_identity_id_key",
		"staff_identity_id_key",
		"staff_email_key",
		"forbid_identity_id_change",
	} {
		assert.Contains(t, sql, name)
	}
}
