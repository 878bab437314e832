package credential

import (
	"github.com/jhoicas/clinica-portal/internal/application/dto"
	"github.com/jhoicas/clinica-portal/internal/domain/entity"
)

// ToIdentityResponse expone la identidad sin datos de credencial.
func ToIdentityResponse(i *entity.Identity) dto.IdentityResponse {
	return toIdentityResponse(i)
}

func toIdentityResponse(i *entity.Identity) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:                 i.ID,
		Name:               i.Name,
		Email:              i.Email,
		Role:               i.Role.String(),
		MustChangePassword: i.MustChangePassword,
		EmailVerified:      i.EmailVerified,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
}

func toStaffResponse(s *entity.Staff) *dto.StaffResponse {
	if s == nil {
		return nil
	}
	return &dto.StaffResponse{
		ID:          s.ID,
		FullName:    s.FullName,
		Email:       s.Email,
		Phone:       s.Phone,
		Role:        s.Role.String(),
		Permissions: s.Permissions,
		Status:      s.Status,
		IdentityID:  s.IdentityID,
	}
}

func toPatientResponse(p *entity.Patient) *dto.PatientResponse {
	if p == nil {
		return nil
	}
	return &dto.PatientResponse{
		ID:         p.ID,
		FullName:   p.FullName,
		NationalID: p.NationalID,
		Email:      p.Email,
		Phone:      p.Phone,
		Status:     p.Status,
		IdentityID: p.IdentityID,
	}
}
