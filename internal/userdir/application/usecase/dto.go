package usecase

import (
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

func toDTO(u *domain.User) in.UserDTO {
	return in.UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		CPF:       u.CPF,
		Email:     u.Email,
		Role:      u.Role.String(),
		Phone:     u.Phone,
		CRM:       u.CRM,
		Specialty: u.Specialty,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
