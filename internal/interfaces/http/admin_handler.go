package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinica-portal/internal/application/credential"
	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/pkg/logger"
)

// AdminHandler alta de cuentas y reseteo forzado de contraseñas (solo admin).
type AdminHandler struct {
	manager *credential.Manager
	log     *logger.Logger
}

// NewAdminHandler construye el handler de administración de cuentas.
func NewAdminHandler(manager *credential.Manager, log *logger.Logger) *AdminHandler {
	return &AdminHandler{manager: manager, log: log.Component("admin_handler")}
}

// ProvisionStaff godoc
// @Summary      Alta de personal
// @Description  Devuelve la contraseña temporal una única vez en data.credentials.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProvisionStaffRequest  true  "fullName, email, role"
// @Success      201   {object}  dto.Envelope{data=dto.ProvisionedAccount}
// @Failure      400   {object}  dto.Envelope
// @Failure      403   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/admin/staff [post]
func (h *AdminHandler) ProvisionStaff(c *fiber.Ctx) error {
	var in dto.ProvisionStaffRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, invalidBody())
	}
	out, err := h.manager.ProvisionStaff(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("by", GetIdentityID(c)).Str("identity_id", out.Identity.ID).Msg("alta de personal")
	return respondOK(c, fiber.StatusCreated, out)
}

// ProvisionPatientAccount godoc
// @Summary      Crear la cuenta de un paciente existente
// @Tags         admin
// @Produce      json
// @Param        id   path  string  true  "ID del paciente"
// @Success      201  {object}  dto.Envelope{data=dto.ProvisionedAccount}
// @Failure      404  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/admin/patients/{id}/account [post]
func (h *AdminHandler) ProvisionPatientAccount(c *fiber.Ctx) error {
	out, err := h.manager.ProvisionPatientAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("by", GetIdentityID(c)).Str("identity_id", out.Identity.ID).Msg("alta de cuenta de paciente")
	return respondOK(c, fiber.StatusCreated, out)
}

// ResetPassword godoc
// @Summary      Reseteo forzado de contraseña
// @Description  Sin password en el cuerpo se genera una temporal y se devuelve en data.credentials.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la identidad"
// @Param        body  body  dto.ResetPasswordRequest   false  "password opcional"
// @Success      200   {object}  dto.Envelope{data=dto.PasswordResetResult}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/admin/identities/{id}/reset-password [post]
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return respondError(c, h.log, invalidBody())
		}
	}
	out, err := h.manager.AdminResetPassword(c.UserContext(), c.Params("id"), in.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().Str("by", GetIdentityID(c)).Str("identity_id", out.IdentityID).Msg("reseteo de contraseña")
	return respondOK(c, fiber.StatusOK, out)
}
