// Package validation valida DTOs de entrada con go-playground/validator y traduce
// el primer fallo a un error de dominio con código estable.
package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/clinica-portal/internal/domain"
)

// nationalIDPattern número nacional: 14 dígitos.
var nationalIDPattern = regexp.MustCompile(`^[0-9]{14}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("nationalid", func(fl validator.FieldLevel) bool {
		return IsNationalID(fl.Field().String())
	})
	return v
}

// IsNationalID indica si s tiene el formato de número nacional.
func IsNationalID(s string) bool {
	return nationalIDPattern.MatchString(s)
}

// Struct valida s según sus tags `validate`. Devuelve nil o un *domain.AppError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInvalidInput
	}
	return toDomain(verrs[0])
}

func toDomain(fe validator.FieldError) error {
	field := fe.Field()
	switch {
	case field == "Email":
		return domain.ErrInvalidEmail
	case field == "Role":
		return domain.ErrInvalidRole
	case field == "NationalID":
		return domain.ErrInvalidNationalID
	}
	return domain.ErrInvalidInput.WithMessage(describe(fe))
}

func describe(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return name + " es requerido"
	case "max":
		return name + " excede la longitud máxima (" + fe.Param() + ")"
	case "min":
		return name + " es demasiado corto (mínimo " + fe.Param() + ")"
	default:
		return name + " es inválido"
	}
}
