package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/clinica-portal/internal/application/auth"
	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain/access"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/memory"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/security"
	"github.com/jhoicas/clinica-portal/internal/infrastructure/session"
	apphttp "github.com/jhoicas/clinica-portal/internal/interfaces/http"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCookie    = "clinica_session"
	testPatientID = "3d9f2a61-8b4c-4e0f-9a7d-5c6b1e2f3a40"
	testNational  = "29912345678901"
)

// countingProvider cuenta los Resolve para verificar que rutas públicas no consultan la sesión.
type countingProvider struct {
	ports.SessionProvider
	resolves atomic.Int32
}

func (p *countingProvider) Resolve(ctx context.Context, token string) (*entity.Session, error) {
	p.resolves.Add(1)
	return p.SessionProvider.Resolve(ctx, token)
}

type testEnv struct {
	app      *fiber.App
	store    *memory.Store
	manager  *credential.Manager
	provider *countingProvider
}

func routeTable() access.RouteTable {
	return access.RouteTable{
		LoginPath:       "/login",
		StaffHome:       "/dashboard",
		PatientHome:     "/patient",
		AdminPrefixes:   []string{"/dashboard/staff", "/dashboard/settings"},
		StaffPrefixes:   []string{"/dashboard/patients", "/dashboard/appointments"},
		PatientPrefixes: []string{"/patient"},
	}
}

// buildTestEnv arma la app completa sobre el store en memoria y sesiones JWT.
// provider reemplaza al proveedor JWT si no es nil.
func buildTestEnv(t *testing.T, provider ports.SessionProvider) *testEnv {
	t.Helper()
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	guard, err := access.NewGuard(routeTable())
	require.NoError(t, err)

	if provider == nil {
		provider = session.NewJWTProvider("test-secret", "clinica-test", time.Hour)
	}
	counting := &countingProvider{SessionProvider: provider}

	manager := credential.NewManager(store, hasher, security.NewRandomGenerator(), credential.Options{}, nil)
	authUC, err := auth.NewAuthUseCase(auth.Repositories{
		Identities:  store.Identities(),
		Credentials: store.Credentials(),
		Patients:    store.Patients(),
		Staff:       store.Staff(),
	}, hasher, counting, guard, nil)
	require.NoError(t, err)

	log := logger.Nop()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:  authUC,
		Manager: manager,
		Guard:   guard,
		Sessions: apphttp.SessionConfig{
			Provider:      counting,
			CookieName:    testCookie,
			TTL:           time.Hour,
			LookupTimeout: 100 * time.Millisecond,
		},
		Log: log,
		Pages: func(c *fiber.Ctx) error {
			return c.SendString("page " + c.Path())
		},
	})
	return &testEnv{app: app, store: store, manager: manager, provider: counting}
}

// provisionStaff crea una cuenta de personal y devuelve su contraseña temporal.
func (e *testEnv) provisionStaff(t *testing.T, email, role string) *dto.ProvisionedAccount {
	t.Helper()
	out, err := e.manager.ProvisionStaff(context.Background(), dto.ProvisionStaffRequest{FullName: "Personal " + role, Email: email, Role: role})
	require.NoError(t, err)
	return out
}

func (e *testEnv) provisionPatient(t *testing.T) *dto.ProvisionedAccount {
	t.Helper()
	e.addPatient(t)
	out, err := e.manager.ProvisionPatientAccount(context.Background(), testPatientID)
	require.NoError(t, err)
	return out
}

func (e *testEnv) addPatient(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.AddPatient(entity.Patient{
		ID: testPatientID, FullName: "Omar Hassan", NationalID: testNational, Status: entity.ProfileStatusActive,
	}))
}

// login inicia sesión por la API y devuelve el token.
func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Data dto.LoginResponse `json:"data"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

// do lanza una petición; token se envía como Bearer si no está vacío.
func (e *testEnv) do(t *testing.T, method, target string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// page pide una página con la cookie de sesión indicada.
func (e *testEnv) page(t *testing.T, target, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), "cuerpo: %s", raw)
}

func readEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	decode(t, resp, &env)
	return env
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
