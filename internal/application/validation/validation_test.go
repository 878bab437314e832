package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/application/validation"
	"github.com/jhoicas/clinica-portal/internal/domain"
)

func TestStruct_StaffValido(t *testing.T) {
	err := validation.Struct(dto.ProvisionStaffRequest{FullName: "Ana", Email: "ana@clinica.test", Role: "doctor"})
	assert.NoError(t, err)
}

func TestStruct_EmailInvalido(t *testing.T) {
	for _, email := range []string{"", "no-es-email", "a@", "@b.com"} {
		err := validation.Struct(dto.ProvisionStaffRequest{FullName: "Ana", Email: email, Role: "doctor"})
		assert.True(t, errors.Is(err, domain.ErrInvalidEmail), "email %q: %v", email, err)
	}
}

func TestStruct_RolVacio(t *testing.T) {
	err := validation.Struct(dto.ProvisionStaffRequest{FullName: "Ana", Email: "ana@clinica.test"})
	assert.True(t, errors.Is(err, domain.ErrInvalidRole))
}

func TestStruct_NombreRequerido(t *testing.T) {
	err := validation.Struct(dto.ProvisionStaffRequest{Email: "ana@clinica.test", Role: "staff"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "fullName es requerido")
}

func TestStruct_NationalID(t *testing.T) {
	base := dto.RegisterPatientRequest{FullName: "Omar", Password: "secreto"}

	base.NationalID = "29912345678901"
	assert.NoError(t, validation.Struct(base))

	for _, bad := range []string{"", "123", "2991234567890A", "299123456789012"} {
		base.NationalID = bad
		assert.True(t, errors.Is(validation.Struct(base), domain.ErrInvalidNationalID), "nationalId %q", bad)
	}
}

func TestIsNationalID(t *testing.T) {
	assert.True(t, validation.IsNationalID("29912345678901"))
	assert.False(t, validation.IsNationalID("ana@clinica.test"))
}
