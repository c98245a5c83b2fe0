package domain

import (
	"strings"
	"time"
)

// User представляет пользователя системы консультаций
type User struct {
	ID           int64
	Name         string
	CPF          string
	Email        string
	PasswordHash string
	Role         Role
	Phone        *string
	CRM          *string // только DOCTOR
	Specialty    *string // только DOCTOR
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch описывает частичное обновление, nil означает "поле не передано"
type UserPatch struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	CRM          *string
	Specialty    *string
}

// IsEmpty: ни одно поле не передано
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil &&
		p.PasswordHash == nil && p.CRM == nil && p.Specialty == nil
}

// Apply сливает переданные поля в пользователя. CRM и специальность
// применяются только к врачам.
func (u *User) Apply(p UserPatch, now time.Time) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if u.Role.HasProfessionalRecord() {
		if p.CRM != nil {
			u.CRM = p.CRM
		}
		if p.Specialty != nil {
			u.Specialty = p.Specialty
		}
	}
	u.UpdatedAt = now
}

// ListFilter: nil означает отсутствие ограничения по полю
type ListFilter struct {
	Role   *Role
	Active *bool
}

// Matches используется репозиториями без SQL
func (f ListFilter) Matches(u *User) bool {
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	if f.Active != nil && u.Active != *f.Active {
		return false
	}
	return true
}

// NormalizeEmail: email сравнивается без учета регистра и пробелов
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
