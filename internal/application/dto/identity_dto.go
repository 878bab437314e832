package dto

import "time"

// ProvisionStaffRequest alta de personal por un admin.
type ProvisionStaffRequest struct {
	FullName    string   `json:"fullName" validate:"required,min=1,max=200"`
	Email       string   `json:"email" validate:"required,email,max=254"`
	Role        string   `json:"role" validate:"required"`
	Phone       string   `json:"phone" validate:"omitempty,max=30"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,min=1,max=64"`
}

// RegisterPatientRequest auto-registro de un paciente.
type RegisterPatientRequest struct {
	FullName   string `json:"fullName" validate:"required,min=1,max=200"`
	NationalID string `json:"nationalId" validate:"required,nationalid"`
	Email      string `json:"email" validate:"omitempty,email,max=254"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	Password   string `json:"password" validate:"required"`
}

// ResetPasswordRequest reseteo forzado por admin. Password vacío = generar una temporal.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest cambio de contraseña por el propio usuario.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// LoginRequest usuario (email para personal, número nacional para pacientes) y contraseña.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Redirect string `json:"redirect"`
}

// Credentials usuario y contraseña temporal. Solo aparece en la respuesta que la crea.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IdentityResponse salida de una identidad (sin hash).
type IdentityResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	MustChangePassword bool      `json:"mustChangePassword"`
	EmailVerified      bool      `json:"emailVerified"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// StaffResponse perfil de personal.
type StaffResponse struct {
	ID          string   `json:"id"`
	FullName    string   `json:"fullName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
	IdentityID  string   `json:"identityId"`
}

// PatientResponse perfil de paciente.
type PatientResponse struct {
	ID         string  `json:"id"`
	FullName   string  `json:"fullName"`
	NationalID string  `json:"nationalId"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Status     string  `json:"status"`
	IdentityID *string `json:"identityId"`
}

// ProvisionedAccount resultado del alta de una cuenta: identidad, perfil y credenciales de un solo uso.
type ProvisionedAccount struct {
	Identity    IdentityResponse `json:"identity"`
	Staff       *StaffResponse   `json:"staff,omitempty"`
	Patient     *PatientResponse `json:"patient,omitempty"`
	Credentials Credentials      `json:"credentials"`
}

// PasswordResetResult resultado del reseteo. Credentials solo si la contraseña fue generada.
type PasswordResetResult struct {
	IdentityID         string       `json:"identityId"`
	MustChangePassword bool         `json:"mustChangePassword"`
	Credentials        *Credentials `json:"credentials,omitempty"`
}

// RegisteredPatient resultado del auto-registro.
type RegisteredPatient struct {
	Identity IdentityResponse `json:"identity"`
	Patient  PatientResponse  `json:"patient"`
}

// LoginResponse salida del login. El token va además en la cookie de sesión.
type LoginResponse struct {
	Token              string           `json:"token"`
	Identity           IdentityResponse `json:"identity"`
	MustChangePassword bool             `json:"mustChangePassword"`
	RedirectTo         string           `json:"redirectTo"`
}
