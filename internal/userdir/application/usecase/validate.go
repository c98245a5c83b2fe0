package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в сообщениях поля называются так же, как в протоколе
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// bcrypt ограничивает пароль байтами, а не символами
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// validateInput возвращает *domain.ValidationError со всеми нарушениями
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	problems := make([]string, 0, len(ve))
	for _, fe := range ve {
		problems = append(problems, fieldError(fe))
	}
	return domain.NewValidationError(problems...)
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// normalizeCreate приводит строки к виду, в котором они хранятся.
// Вызывается до валидации, чтобы "   " считалось пустым значением.
func normalizeCreate(input in.CreateUserInput) in.CreateUserInput {
	input.Name = strings.TrimSpace(input.Name)
	input.CPF = strings.TrimSpace(input.CPF)
	input.Email = domain.NormalizeEmail(input.Email)
	input.Role = strings.TrimSpace(input.Role)
	input.Phone = trimmed(input.Phone)
	input.CRM = trimmed(input.CRM)
	input.Specialty = trimmed(input.Specialty)
	return input
}

func normalizeUpdate(input in.UpdateUserInput) in.UpdateUserInput {
	input.Name = trimmed(input.Name)
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		input.Email = &email
	}
	input.Phone = trimmed(input.Phone)
	input.CRM = trimmed(input.CRM)
	input.Specialty = trimmed(input.Specialty)
	return input
}

// passwordError переводит отказ bcrypt из-за длины в ошибку валидации
func passwordError(err error) error {
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
