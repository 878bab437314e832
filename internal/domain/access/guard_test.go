package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinica-portal/internal/domain/access"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func testTable() access.RouteTable {
	return access.RouteTable{
		LoginPath:       "/login",
		StaffHome:       "/dashboard",
		PatientHome:     "/patient",
		AdminPrefixes:   []string{"/dashboard/staff", "/dashboard/settings"},
		StaffPrefixes:   []string{"/dashboard/patients", "/dashboard/appointments"},
		PatientPrefixes: []string{"/patient"},
	}
}

func newGuard(t *testing.T) *access.Guard {
	t.Helper()
	g, err := access.NewGuard(testTable())
	require.NoError(t, err)
	return g
}

func sessionFor(role entity.Role) *entity.Session {
	return &entity.Session{IdentityID: "id-1", Role: role}
}

var allRoles = []entity.Role{entity.RoleAdmin, entity.RoleDoctor, entity.RoleStaff, entity.RolePatient}

// ──────────────────────────────────────────────────────────────────────────────
// Regla 1: sin sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide_SinSesion_RedirigeALoginConRedirect(t *testing.T) {
	g := newGuard(t)
	d := g.Decide("/dashboard/patients", nil)
	assert.False(t, d.Allowed())
	assert.Equal(t, "/login?redirect=/dashboard/patients", d.RedirectTo)
}

func TestDecide_SinSesion_LandingsTambienProtegidas(t *testing.T) {
	g := newGuard(t)
	assert.Equal(t, "/login?redirect=/dashboard", g.Decide("/dashboard", nil).RedirectTo)
	assert.Equal(t, "/login?redirect=/patient", g.Decide("/patient", nil).RedirectTo)
}

func TestDecide_SinSesion_EscapaCaracteresDeQuery(t *testing.T) {
	g := newGuard(t)
	d := g.Decide("/dashboard/patients/a&b c", nil)
	assert.Equal(t, "/login?redirect=/dashboard/patients/a%26b%20c", d.RedirectTo)
}

func TestDecide_SesionConRolDesconocido_CuentaComoAnonima(t *testing.T) {
	g := newGuard(t)
	d := g.Decide("/dashboard/patients", &entity.Session{IdentityID: "x", Role: entity.RoleUnknown})
	assert.Equal(t, "/login?redirect=/dashboard/patients", d.RedirectTo)
}

func TestDecide_RutasPublicasNoSeEvaluan(t *testing.T) {
	g := newGuard(t)
	for _, p := range []string{"/", "/about", "/login", "/dashboardx", "/patients", "/dashboard-public"} {
		assert.True(t, g.Decide(p, nil).Allowed(), "ruta pública %s debe permitirse", p)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas 2-6 por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide_AdminOnly_NuncaPermiteOtrosRoles(t *testing.T) {
	g := newGuard(t)
	paths := []string{"/dashboard/staff", "/dashboard/staff/42", "/dashboard/settings/users/"}
	for _, p := range paths {
		assert.False(t, g.Decide(p, nil).Allowed(), "anónimo en %s", p)
		for _, role := range []entity.Role{entity.RoleDoctor, entity.RoleStaff, entity.RolePatient} {
			d := g.Decide(p, sessionFor(role))
			assert.Equal(t, "/dashboard", d.RedirectTo, "rol %s en %s", role, p)
		}
		assert.True(t, g.Decide(p, sessionFor(entity.RoleAdmin)).Allowed(), "admin en %s", p)
	}
}

func TestDecide_PatientOnly_OtrosRolesVanAStaffHome(t *testing.T) {
	g := newGuard(t)
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleDoctor, entity.RoleStaff} {
		assert.Equal(t, "/dashboard", g.Decide("/patient/appointments", sessionFor(role)).RedirectTo)
		assert.Equal(t, "/dashboard", g.Decide("/patient", sessionFor(role)).RedirectTo)
	}
	assert.True(t, g.Decide("/patient/appointments", sessionFor(entity.RolePatient)).Allowed())
	assert.True(t, g.Decide("/patient", sessionFor(entity.RolePatient)).Allowed())
}

func TestDecide_StaffShared_PacienteVaAPatientHome(t *testing.T) {
	g := newGuard(t)
	assert.Equal(t, "/patient", g.Decide("/dashboard/patients/7", sessionFor(entity.RolePatient)).RedirectTo)
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleDoctor, entity.RoleStaff} {
		assert.True(t, g.Decide("/dashboard/appointments", sessionFor(role)).Allowed(), "rol %s", role)
	}
}

func TestDecide_StaffHome_PacienteRedirigido(t *testing.T) {
	g := newGuard(t)
	assert.Equal(t, "/patient", g.Decide("/dashboard", sessionFor(entity.RolePatient)).RedirectTo)
	assert.True(t, g.Decide("/dashboard", sessionFor(entity.RoleDoctor)).Allowed())
}

func TestDecide_PatientHomeFueraDePrefijos_OtrosRolesVanAStaffHome(t *testing.T) {
	table := testTable()
	table.PatientHome = "/my-health"
	g, err := access.NewGuard(table)
	require.NoError(t, err)

	assert.Equal(t, "/dashboard", g.Decide("/my-health", sessionFor(entity.RoleStaff)).RedirectTo)
	assert.True(t, g.Decide("/my-health", sessionFor(entity.RolePatient)).Allowed())
}

// Un prefijo admin anidado dentro de uno compartido se evalúa antes que el compartido.
func TestDecide_AdminAnidadoEnPrefijoCompartido(t *testing.T) {
	table := testTable()
	table.StaffPrefixes = []string{"/dashboard/records"}
	table.AdminPrefixes = []string{"/dashboard/records/audit"}
	g, err := access.NewGuard(table)
	require.NoError(t, err)

	assert.True(t, g.Decide("/dashboard/records/1", sessionFor(entity.RoleDoctor)).Allowed())
	assert.Equal(t, "/dashboard", g.Decide("/dashboard/records/audit", sessionFor(entity.RoleDoctor)).RedirectTo)
	assert.True(t, g.Decide("/dashboard/records/audit", sessionFor(entity.RoleAdmin)).Allowed())
	assert.Equal(t, "/patient", g.Decide("/dashboard/records/1", sessionFor(entity.RolePatient)).RedirectTo)
}

func TestDecide_NormalizaRuta(t *testing.T) {
	g := newGuard(t)
	d := g.Decide("/dashboard/../dashboard/staff/", sessionFor(entity.RoleStaff))
	assert.Equal(t, "/dashboard", d.RedirectTo)
}

// Escapes y mayúsculas no sacan una ruta de la tabla: se decide sobre la forma canónica.
func TestDecide_RutaCodificadaOMayusculas_SigueProtegida(t *testing.T) {
	g := newGuard(t)
	cases := []struct {
		raw      string
		redirect string
	}{
		{"/dash%62oard/patients", "/login?redirect=/dashboard/patients"},
		{"/dashboard/%70atients", "/login?redirect=/dashboard/patients"},
		{"/%64ashboard", "/login?redirect=/dashboard"},
		{"/Dashboard/patients", "/login?redirect=/Dashboard/patients"},
		{"/PATIENT/plan", "/login?redirect=/PATIENT/plan"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.True(t, g.IsProtected(tc.raw))
			assert.Equal(t, tc.redirect, g.Decide(tc.raw, nil).RedirectTo)
		})
	}
}

func TestDecide_MayusculasRespetanRoles(t *testing.T) {
	g := newGuard(t)
	assert.Equal(t, "/dashboard", g.Decide("/DASHBOARD/Staff", sessionFor(entity.RoleDoctor)).RedirectTo)
	assert.Equal(t, "/patient", g.Decide("/Dashboard", sessionFor(entity.RolePatient)).RedirectTo)
	assert.True(t, g.Decide("/Dash%62oard/Staff", sessionFor(entity.RoleAdmin)).Allowed())
}

// Una ruta que no tiene forma canónica va al login aunque haya sesión válida.
func TestDecide_RutaNoCanonica_FallaCerrado(t *testing.T) {
	g := newGuard(t)
	for _, raw := range []string{
		"/dashboard%2Fpatients",
		"/dashboard%2fstaff",
		"/dashboard/patients/..%2Fstaff",
		"/dashboard%5Cstaff",
		"/dash%2562oard/patients",
		"/dashboard/%zz",
		"/dashboard/staff%00",
		"/dashboard/patients%3F",
		"/dashboard/staff;x",
	} {
		t.Run(raw, func(t *testing.T) {
			assert.True(t, g.IsProtected(raw))
			assert.Equal(t, "/login", g.Decide(raw, sessionFor(entity.RoleAdmin)).RedirectTo)
		})
	}
}

func TestCanonicalPath(t *testing.T) {
	p, ok := access.CanonicalPath("/dash%62oard//patients/./x/")
	require.True(t, ok)
	assert.Equal(t, "/dashboard/patients/x", p)

	p, ok = access.CanonicalPath("/Patient/Plan")
	require.True(t, ok)
	assert.Equal(t, "/Patient/Plan", p, "conserva mayúsculas; solo la comparación las ignora")

	_, ok = access.CanonicalPath("/a%2Fb")
	assert.False(t, ok)
}

func TestIsLoginPath(t *testing.T) {
	g := newGuard(t)
	assert.True(t, g.IsLoginPath("/login"))
	assert.True(t, g.IsLoginPath("/LOGIN/"))
	assert.True(t, g.IsLoginPath("/l%6Fgin"))
	assert.False(t, g.IsLoginPath("/login/otra"))
}

// Ninguna decisión redirige a la misma ruta que se pidió (evita bucles).
func TestDecide_NuncaRedirigeALaMismaRuta(t *testing.T) {
	g := newGuard(t)
	paths := []string{"/dashboard", "/patient", "/dashboard/staff", "/dashboard/patients", "/patient/x"}
	for _, p := range paths {
		for _, role := range allRoles {
			d := g.Decide(p, sessionFor(role))
			assert.NotEqual(t, p, d.RedirectTo, "rol %s en %s", role, p)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Construcción y helpers
// ──────────────────────────────────────────────────────────────────────────────

func TestNewGuard_RechazaTablasInvalidas(t *testing.T) {
	cases := map[string]func(*access.RouteTable){
		"login relativo":        func(t *access.RouteTable) { t.LoginPath = "login" },
		"landings iguales":      func(t *access.RouteTable) { t.PatientHome = t.StaffHome },
		"prefijo repetido":      func(t *access.RouteTable) { t.StaffPrefixes = append(t.StaffPrefixes, "/patient") },
		"prefijo raíz":          func(t *access.RouteTable) { t.AdminPrefixes = []string{"/"} },
		"login bajo protección": func(t *access.RouteTable) { t.LoginPath = "/dashboard/staff/login" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			table := testTable()
			mutate(&table)
			_, err := access.NewGuard(table)
			assert.Error(t, err)
		})
	}
}

func TestNewGuard_CopiaLaTabla(t *testing.T) {
	table := testTable()
	g, err := access.NewGuard(table)
	require.NoError(t, err)

	table.AdminPrefixes[0] = "/otra"
	assert.Equal(t, "/dashboard", g.Decide("/dashboard/staff", sessionFor(entity.RoleStaff)).RedirectTo)
}

func TestLandingFor(t *testing.T) {
	g := newGuard(t)
	assert.Equal(t, "/dashboard", g.LandingFor(entity.RoleAdmin))
	assert.Equal(t, "/dashboard", g.LandingFor(entity.RoleDoctor))
	assert.Equal(t, "/dashboard", g.LandingFor(entity.RoleStaff))
	assert.Equal(t, "/patient", g.LandingFor(entity.RolePatient))
	assert.Equal(t, "/login", g.LandingFor(entity.RoleUnknown))
}

func TestSafeRedirect(t *testing.T) {
	cases := map[string]string{
		"/dashboard/patients":       "/dashboard/patients",
		"/patient?tab=1":            "/patient?tab=1",
		"":                          "/fallback",
		"https://evil.example":      "/fallback",
		"//evil.example/x":          "/fallback",
		"/\\evil.example":           "/fallback",
		"dashboard":                 "/fallback",
		"javascript:alert(1)":       "/fallback",
		"/ok\r\nSet-Cookie: a=b":    "/fallback",
	}
	for in, want := range cases {
		assert.Equal(t, want, access.SafeRedirect(in, "/fallback"), "entrada %q", in)
	}
}
