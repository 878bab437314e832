// Package access decide, para cada ruta de página, si una sesión puede verla
// o a dónde debe redirigirse. Es puro: no hace I/O y no conoce HTTP.
package access

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

// RouteTable tabla estática de rutas protegidas. Se carga una vez al arrancar.
type RouteTable struct {
	LoginPath       string
	StaffHome       string // landing de admin, doctor y staff
	PatientHome     string // landing exclusiva de pacientes
	AdminPrefixes   []string
	StaffPrefixes   []string // compartidas por admin, doctor y staff
	PatientPrefixes []string
}

// Decision resultado de evaluar la matriz. RedirectTo vacío significa permitir.
type Decision struct {
	RedirectTo string
}

// Allowed indica si la petición puede continuar.
func (d Decision) Allowed() bool { return d.RedirectTo == "" }

// Allow decisión de permitir.
var Allow = Decision{}

// RedirectTo decisión de redirigir a target.
func RedirectTo(target string) Decision { return Decision{RedirectTo: target} }

// Guard evalúa la matriz de acceso. Inmutable y seguro para uso concurrente.
type Guard struct {
	table RouteTable
}

// NewGuard valida la tabla y construye el guard con una copia propia.
func NewGuard(table RouteTable) (*Guard, error) {
	t := RouteTable{
		LoginPath:       strings.ToLower(table.LoginPath),
		StaffHome:       strings.ToLower(table.StaffHome),
		PatientHome:     strings.ToLower(table.PatientHome),
		AdminPrefixes:   cleanAll(table.AdminPrefixes),
		StaffPrefixes:   cleanAll(table.StaffPrefixes),
		PatientPrefixes: cleanAll(table.PatientPrefixes),
	}
	for name, p := range map[string]string{"login": t.LoginPath, "staff home": t.StaffHome, "patient home": t.PatientHome} {
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("access: ruta %s debe ser absoluta: %q", name, p)
		}
	}
	if t.StaffHome == t.PatientHome {
		return nil, fmt.Errorf("access: staff home y patient home no pueden coincidir")
	}
	sets := [][]string{t.AdminPrefixes, t.StaffPrefixes, t.PatientPrefixes}
	seen := map[string]bool{}
	for _, set := range sets {
		for _, p := range set {
			if !strings.HasPrefix(p, "/") || p == "/" {
				return nil, fmt.Errorf("access: prefijo inválido %q", p)
			}
			if seen[p] {
				return nil, fmt.Errorf("access: prefijo %q repetido entre conjuntos", p)
			}
			seen[p] = true
			if hasPrefix(t.LoginPath, p) {
				return nil, fmt.Errorf("access: la ruta de login no puede estar protegida (%q)", p)
			}
		}
	}
	return &Guard{table: t}, nil
}

// Table devuelve una copia de la tabla configurada.
func (g *Guard) Table() RouteTable {
	t := g.table
	t.AdminPrefixes = append([]string(nil), t.AdminPrefixes...)
	t.StaffPrefixes = append([]string(nil), t.StaffPrefixes...)
	t.PatientPrefixes = append([]string(nil), t.PatientPrefixes...)
	return t
}

// CanonicalPath decodifica los escapes una sola vez y limpia la ruta.
// Rechaza (ok=false) escapes mal formados, separadores codificados (%2F, %5C),
// dobles codificaciones y, ya decodificados, barras invertidas, bytes nulos, '?', '#'
// y ';'. Ninguna ruta del portal los usa y un frontend podría leerlos como otra ruta.
func CanonicalPath(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "%2f") || strings.Contains(lower, "%5c") {
		return "", false
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil || strings.ContainsAny(decoded, "%\\\x00?#;") {
		return "", false
	}
	return cleanPath(decoded), true
}

// IsProtected indica si la ruta cae bajo algún conjunto protegido o es una landing.
// Una ruta que no se puede canonizar se considera protegida.
func (g *Guard) IsProtected(rawPath string) bool {
	p, ok := CanonicalPath(rawPath)
	if !ok {
		return true
	}
	return g.protected(matchKey(p))
}

// IsLoginPath indica si la ruta es la página de login.
func (g *Guard) IsLoginPath(rawPath string) bool {
	p, ok := CanonicalPath(rawPath)
	return ok && matchKey(p) == g.table.LoginPath
}

func (g *Guard) protected(key string) bool {
	return key == g.table.StaffHome || key == g.table.PatientHome ||
		matchAny(key, g.table.AdminPrefixes) ||
		matchAny(key, g.table.StaffPrefixes) ||
		matchAny(key, g.table.PatientPrefixes)
}

// Decide evalúa la matriz en orden de precedencia; la primera regla que aplica gana.
// La comparación es sobre la ruta canónica y sin distinguir mayúsculas, igual que el
// ruteo de Fiber. Una ruta no canónica redirige al login sin mirar la sesión.
// Una sesión nil o con rol fuera del conjunto cerrado cuenta como no autenticada.
func (g *Guard) Decide(rawPath string, sess *entity.Session) Decision {
	canonical, ok := CanonicalPath(rawPath)
	if !ok {
		return RedirectTo(g.table.LoginPath)
	}
	p := matchKey(canonical)
	if !g.protected(p) {
		return Allow
	}
	if !sess.Valid() {
		return RedirectTo(g.loginRedirect(canonical))
	}

	t := g.table
	role := sess.Role
	switch {
	case matchAny(p, t.AdminPrefixes) && role != entity.RoleAdmin:
		return RedirectTo(t.StaffHome)
	case matchAny(p, t.PatientPrefixes) && role != entity.RolePatient:
		return RedirectTo(t.StaffHome)
	case matchAny(p, t.StaffPrefixes) && role == entity.RolePatient:
		return RedirectTo(t.PatientHome)
	case p == t.StaffHome && role == entity.RolePatient:
		return RedirectTo(t.PatientHome)
	case p == t.PatientHome && role != entity.RolePatient:
		return RedirectTo(t.StaffHome)
	}
	return Allow
}

// LandingFor landing del rol después del login.
func (g *Guard) LandingFor(role entity.Role) string {
	switch role.Audience() {
	case entity.AudiencePatient:
		return g.table.PatientHome
	case entity.AudienceStaff:
		return g.table.StaffHome
	default:
		return g.table.LoginPath
	}
}

// loginRedirect arma "<login>?redirect=<ruta>" dejando las barras sin escapar.
func (g *Guard) loginRedirect(p string) string {
	escaped := (&url.URL{Path: p}).EscapedPath()
	escaped = strings.NewReplacer("&", "%26", "+", "%2B").Replace(escaped)
	return g.table.LoginPath + "?redirect=" + escaped
}

// hasPrefix coincide por segmento completo: "/a/b" es prefijo de "/a/b" y "/a/b/c", no de "/a/bc".
func hasPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func matchAny(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if hasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func matchKey(p string) string { return strings.ToLower(p) }

func cleanAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, matchKey(cleanPath(p)))
		}
	}
	return out
}
