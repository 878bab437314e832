package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-portal/internal/application/auth"
	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/application/validation"
	"github.com/jhoicas/clinica-portal/internal/domain"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// AuthHandler maneja login, logout, auto-registro, identidad actual y cambio de contraseña.
type AuthHandler struct {
	uc       *auth.AuthUseCase
	manager  *credential.Manager
	sessions SessionConfig
	log      *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, manager *credential.Manager, sessions SessionConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, manager: manager, sessions: sessions, log: log.Component("auth_handler")}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  username es el email (personal) o el número nacional (pacientes).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password, redirect opcional"
// @Success      200   {object}  dto.Envelope{data=dto.LoginResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      401   {object}  dto.Envelope
// @Failure      403   {object}  dto.Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, invalidBody())
	}
	if err := validation.Struct(in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.setSessionCookie(c, out.Token, time.Now().Add(h.sessions.TTL))
	return respondOK(c, fiber.StatusOK, out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.Envelope
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), tokenFromRequest(c, h.sessions.CookieName)); err != nil {
		return respondError(c, h.log, err)
	}
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return respondOK(c, fiber.StatusOK, nil)
}

// Register godoc
// @Summary      Auto-registro de paciente
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterPatientRequest  true  "fullName, nationalId, password"
// @Success      201   {object}  dto.Envelope{data=dto.RegisteredPatient}
// @Failure      400   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterPatientRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, invalidBody())
	}
	out, err := h.manager.RegisterPatient(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, fiber.StatusCreated, out)
}

// Me godoc
// @Summary      Identidad de la sesión actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.IdentityResponse}
// @Failure      401  {object}  dto.Envelope
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.UserContext(), GetIdentityID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// ChangePassword godoc
// @Summary      Cambiar la propia contraseña
// @Description  Limpia mustChangePassword. La sesión actual sigue válida.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePasswordRequest  true  "currentPassword, newPassword"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      401   {object}  dto.Envelope
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, invalidBody())
	}
	if err := validation.Struct(in); err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.manager.ChangePassword(c.UserContext(), GetIdentityID(c), in.CurrentPassword, in.NewPassword); err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"mustChangePassword": false})
}

// setSessionCookie HttpOnly + SameSite=Lax; valor vacío y expiración pasada la borran.
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	cookie := &fiber.Cookie{
		Name:     h.sessions.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   h.sessions.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	c.Cookie(cookie)
}

func invalidBody() error {
	return domain.ErrInvalidInput.WithMessage("cuerpo inválido")
}
