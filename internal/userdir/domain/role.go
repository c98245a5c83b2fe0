package domain

import (
	"fmt"
	"strings"
)

// Role: закрытый набор ролей. Нулевое значение недопустимо.
type Role int

const (
	RolePatient Role = iota + 1
	RoleDoctor
	RoleReceptionist
	RoleAdmin
)

// AllRoles в порядке объявления
var AllRoles = []Role{RolePatient, RoleDoctor, RoleReceptionist, RoleAdmin}

// ParseRole принимает имя роли без учета регистра
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PATIENT":
		return RolePatient, nil
	case "DOCTOR":
		return RoleDoctor, nil
	case "RECEPTIONIST":
		return RoleReceptionist, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) String() string {
	switch r {
	case RolePatient:
		return "PATIENT"
	case RoleDoctor:
		return "DOCTOR"
	case RoleReceptionist:
		return "RECEPTIONIST"
	case RoleAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Valid проверяет принадлежность к закрытому набору
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleReceptionist, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasProfessionalRecord: только у врача есть CRM и специальность
func (r Role) HasProfessionalRecord() bool {
	switch r {
	case RoleDoctor:
		return true
	case RolePatient, RoleReceptionist, RoleAdmin:
		return false
	default:
		return false
	}
}

// Label: название роли для писем пользователю
func (r Role) Label() string {
	switch r {
	case RolePatient:
		return "paciente"
	case RoleDoctor:
		return "médico"
	case RoleReceptionist:
		return "recepcionista"
	case RoleAdmin:
		return "administrador"
	default:
		return r.String()
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
