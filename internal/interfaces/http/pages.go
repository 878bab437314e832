package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"github.com/jhoicas/clinica-portal/internal/domain/access"
)

// FrontendProxy reenvía las páginas (ya autorizadas por PageGuard) al servidor del frontend.
// Reenvía la ruta canónica que evaluó el guard, nunca la URL original.
func FrontendProxy(baseURL string) fiber.Handler {
	base := strings.TrimRight(baseURL, "/")
	return func(c *fiber.Ctx) error {
		canonical, ok := access.CanonicalPath(c.Path())
		if !ok {
			return fiber.ErrBadRequest
		}
		target := base + (&url.URL{Path: canonical}).EscapedPath()
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			target += "?" + string(q)
		}
		if err := proxy.Do(c, target); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "frontend no disponible")
		}
		// No reenviar la cabecera del servidor upstream.
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	}
}
