package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-portal/internal/domain/access"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// PageGuard protege las rutas de páginas según la matriz de acceso.
// Decide sobre la ruta canónica (escapes decodificados, sin distinguir mayúsculas);
// una ruta sin forma canónica redirige al login. Rutas fuera de la tabla pasan sin
// consultar la sesión; /api tiene su propio middleware JSON.
// La sesión se resuelve una vez, sin reintentos: un error o timeout del proveedor
// equivale a no tener sesión. Una redirección responde 302 con Location y cuerpo vacío.
func PageGuard(guard *access.Guard, sessions SessionConfig, log *logger.Logger) fiber.Handler {
	log = log.Component("page_guard")
	return func(c *fiber.Ctx) error {
		raw := c.Path()
		if isAPIPath(raw) {
			return c.Next()
		}
		if canonical, ok := access.CanonicalPath(raw); ok && isAPIPath(canonical) {
			return c.Next()
		}
		if !guard.IsProtected(raw) {
			return c.Next()
		}

		token := tokenFromCookie(c, sessions.CookieName)
		sess := sessions.resolve(c, log, token)

		d := guard.Decide(raw, sess)
		if !d.Allowed() {
			log.Debug().Str("path", raw).Str("redirect", d.RedirectTo).Msg("acceso a página redirigido")
			return c.Redirect(d.RedirectTo, fiber.StatusFound)
		}
		if sess != nil {
			setSessionLocals(c, sess, token)
		}
		return c.Next()
	}
}

// isAPIPath compara sin distinguir mayúsculas, como el ruteo de Fiber.
func isAPIPath(p string) bool {
	p = strings.ToLower(p)
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
