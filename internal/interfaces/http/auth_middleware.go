package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-portal/internal/application/ports"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// Locals keys de la sesión en Fiber.
const (
	LocalIdentityID = "identity_id"
	LocalRole       = "role"
	LocalToken      = "session_token"
)

// SessionConfig cómo se transporta y resuelve la sesión.
type SessionConfig struct {
	Provider      ports.SessionProvider
	CookieName    string
	CookieSecure  bool
	TTL           time.Duration
	LookupTimeout time.Duration
}

func (s SessionConfig) lookupTimeout() time.Duration {
	if s.LookupTimeout <= 0 {
		return 2 * time.Second
	}
	return s.LookupTimeout
}

// resolve consulta el proveedor una sola vez con timeout acotado. Cualquier error cuenta como sin sesión.
func (s SessionConfig) resolve(c *fiber.Ctx, log *logger.Logger, token string) *entity.Session {
	if token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), s.lookupTimeout())
	defer cancel()
	sess, err := s.Provider.Resolve(ctx, token)
	if err != nil {
		log.Warn().Err(err).Str("path", c.Path()).Msg("no se pudo resolver la sesión")
		return nil
	}
	if !sess.Valid() {
		return nil
	}
	return sess
}

// tokenFromCookie token de la cookie de sesión (navegador).
func tokenFromCookie(c *fiber.Ctx, cookieName string) string {
	return strings.TrimSpace(c.Cookies(cookieName))
}

// tokenFromRequest cookie de sesión o, para clientes de API, "Authorization: Bearer <token>".
func tokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if tok := tokenFromCookie(c, cookieName); tok != "" {
		return tok
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setSessionLocals(c *fiber.Ctx, sess *entity.Session, token string) {
	c.Locals(LocalIdentityID, sess.IdentityID)
	c.Locals(LocalRole, sess.Role)
	c.Locals(LocalToken, token)
}

// RequireSession exige una sesión válida en rutas /api; responde 401 AUTHENTICATION_REQUIRED si no la hay.
func RequireSession(cfg SessionConfig, log *logger.Logger) fiber.Handler {
	log = log.Component("api_auth")
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c, cfg.CookieName)
		sess := cfg.resolve(c, log, token)
		if sess == nil {
			return respondError(c, log, domain.ErrAuthenticationRequired)
		}
		setSessionLocals(c, sess, token)
		return c.Next()
	}
}

// RequireRole autoriza por rol. Debe usarse DESPUÉS de RequireSession.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if !role.IsValid() {
			return c.Status(fiber.StatusUnauthorized).JSON(failOf(domain.ErrAuthenticationRequired))
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(failOf(domain.ErrForbidden))
	}
}

// GetIdentityID devuelve la identidad de la sesión (después de RequireSession o PageGuard).
func GetIdentityID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalIdentityID).(string)
	return s
}

// GetRole devuelve el rol de la sesión; RoleUnknown si no hay sesión.
func GetRole(c *fiber.Ctx) entity.Role {
	r, _ := c.Locals(LocalRole).(entity.Role)
	return r
}

// GetToken devuelve el token de la sesión actual.
func GetToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalToken).(string)
	return s
}
