package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

func ana() in.CreateUserInput {
	return in.CreateUserInput{Name: "Ana", CPF: "1", Email: "ana@x.com", Password: "pw", Role: "PATIENT"}
}

func TestCreateUser_Scenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.create.Execute(ctx, ana())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID != 1 || user.Role != "PATIENT" || !user.Active {
		t.Fatalf("unexpected user: %+v", user)
	}
	if _, err := time.Parse(time.RFC3339, user.CreatedAt); err != nil {
		t.Fatalf("created_at must be ISO-8601: %q", user.CreatedAt)
	}

	stored, _ := f.repo.FindByID(ctx, user.ID)
	if stored.PasswordHash == "pw" || stored.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	if got := f.notifier.events(); !reflect.DeepEqual(got, []string{out.EventUserCreated}) {
		t.Fatalf("expected welcome notification, got %v", got)
	}
	if !strings.Contains(f.notifier.sent[0].Message, "paciente") {
		t.Fatalf("welcome message must name the role: %q", f.notifier.sent[0].Message)
	}

	second := ana()
	second.CPF = "2"
	if _, err := f.create.Execute(ctx, second); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if f.repo.count() != 1 || len(f.notifier.events()) != 1 {
		t.Fatalf("duplicate must not mutate storage or notify")
	}
}

func TestCreateUser_DuplicateOfInactiveUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.create.Execute(ctx, ana())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.remove.Execute(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sameCPF := ana()
	sameCPF.Email = "other@x.com"
	if _, err := f.create.Execute(ctx, sameCPF); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("cpf of an inactive user must stay reserved, got %v", err)
	}

	sameEmail := ana()
	sameEmail.CPF = "9"
	sameEmail.Email = " ANA@X.com"
	if _, err := f.create.Execute(ctx, sameEmail); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("email comparison must be case-insensitive, got %v", err)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*in.CreateUserInput)
		want   string
	}{
		{"missing name", func(i *in.CreateUserInput) { i.Name = "" }, "name is required"},
		{"bad email", func(i *in.CreateUserInput) { i.Email = "nope" }, "email must be a valid email"},
		{"bad role", func(i *in.CreateUserInput) { i.Role = "NURSE" }, "role must be one of"},
		{"long password", func(i *in.CreateUserInput) { i.Password = strings.Repeat("x", 73) }, "password must be at most 72"},
		{"multibyte password over 72 bytes", func(i *in.CreateUserInput) { i.Password = strings.Repeat("é", 40) }, "password must be at most 72 bytes"},
		{"blank name", func(i *in.CreateUserInput) { i.Name = "   " }, "name is required"},
		{"blank cpf", func(i *in.CreateUserInput) { i.CPF = " \t " }, "cpf is required"},
		{"blank email", func(i *in.CreateUserInput) { i.Email = "  " }, "email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := ana()
			tt.mutate(&input)
			_, err := f.create.Execute(ctx, input)

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, ve.Error())
			}
		})
	}
	if f.repo.count() != 0 {
		t.Fatalf("invalid input must not be stored")
	}
}

func TestCreateUser_NormalizesBeforeValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := ana()
	input.Name = "  Ana  "
	input.CPF = " 1 "
	input.Email = "  ANA@X.com "
	input.Role = " patient "
	input.Password = strings.Repeat("é", 36) // 72 байта

	user, err := f.create.Execute(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Name != "Ana" || user.CPF != "1" || user.Email != "ana@x.com" || user.Role != "PATIENT" {
		t.Fatalf("input not normalised: %+v", user)
	}

	if _, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "Ana@x.com", Password: input.Password}); err != nil {
		t.Fatalf("72-byte password must round trip: %v", err)
	}
}

func TestCreateUser_ProfessionalFieldsOnlyForDoctors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	patient := ana()
	patient.CRM = strPtr("CRM-1")
	p, err := f.create.Execute(ctx, patient)
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	if p.CRM != nil {
		t.Fatalf("patient must not keep crm")
	}

	doctor := in.CreateUserInput{
		Name: "Bruno", CPF: "2", Email: "bruno@x.com", Password: "pw", Role: "doctor",
		CRM: strPtr("CRM-1"), Specialty: strPtr("cardiologia"),
	}
	d, err := f.create.Execute(ctx, doctor)
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	if d.Role != "DOCTOR" || d.CRM == nil || *d.CRM != "CRM-1" {
		t.Fatalf("unexpected doctor: %+v", d)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, _ := f.create.Execute(ctx, ana())

	res, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "Ana@X.com", Password: "pw"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.User.ID != user.ID || res.Token == "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	payload, err := f.verify.Execute(ctx, res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if payload.UserID != user.ID || payload.Role != "PATIENT" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if d := time.Until(time.Unix(payload.Exp, 0)); d < 23*time.Hour || d > 24*time.Hour+time.Minute {
		t.Fatalf("token must live ~24h, got %s", d)
	}

	if _, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "ana@x.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "ghost@x.com", Password: "pw"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDeleteUser_SoftDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user, _ := f.create.Execute(ctx, ana())

	if err := f.remove.Execute(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "ana@x.com", Password: "pw"}); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("inactive user must not authenticate, got %v", err)
	}

	got, err := f.get.Execute(ctx, user.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.Active {
		t.Fatalf("record must be inactive")
	}

	// повторная деактивация успешна и не шлет второе письмо
	if err := f.remove.Execute(ctx, user.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	want := []string{out.EventUserCreated, out.EventUserDeactivated}
	if got := f.notifier.events(); !reflect.DeepEqual(got, want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}

	if _, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: user.ID, Phone: strPtr("1")}); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("update of inactive user: expected ErrUserInactive, got %v", err)
	}
	if err := f.remove.Execute(ctx, 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUser_OnlyPhone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _ := f.create.Execute(ctx, ana())
	before, _ := f.repo.FindByID(ctx, created.ID)

	updated, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: created.ID, Phone: strPtr("X")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != "X" {
		t.Fatalf("phone not updated: %+v", updated)
	}

	after, _ := f.repo.FindByID(ctx, created.ID)
	if after.Name != before.Name || after.Email != before.Email || after.CPF != before.CPF ||
		after.PasswordHash != before.PasswordHash || after.Role != before.Role || after.Active != before.Active {
		t.Fatalf("fields other than phone changed:\nbefore %+v\nafter  %+v", before, after)
	}

	want := []string{out.EventUserCreated, out.EventUserUpdated}
	if got := f.notifier.events(); !reflect.DeepEqual(got, want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
}

func TestUpdateUser_PasswordAndEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, _ := f.create.Execute(ctx, ana())
	second := in.CreateUserInput{Name: "Bia", CPF: "2", Email: "bia@x.com", Password: "pw", Role: "ADMIN"}
	if _, err := f.create.Execute(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: a.ID, Email: strPtr("bia@x.com")}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("taken email: expected ErrDuplicate, got %v", err)
	}

	if _, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: a.ID, Password: strPtr("new-pw")}); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "ana@x.com", Password: "pw"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := f.authenticate.Execute(ctx, in.AuthenticateInput{Email: "ana@x.com", Password: "new-pw"}); err != nil {
		t.Fatalf("new password must work: %v", err)
	}

	if _, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: a.ID}); err == nil {
		t.Fatalf("empty update must be rejected")
	}
	if _, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: 42, Name: strPtr("x")}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUser_RejectsBlankAndOversizedValues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _ := f.create.Execute(ctx, ana())

	tests := []struct {
		name  string
		input in.UpdateUserInput
		want  string
	}{
		{"blank name", in.UpdateUserInput{UserID: created.ID, Name: strPtr("   ")}, "name must be at least 1"},
		{"blank email", in.UpdateUserInput{UserID: created.ID, Email: strPtr(" ")}, "email must be a valid email"},
		{"multibyte password", in.UpdateUserInput{UserID: created.ID, Password: strPtr(strings.Repeat("é", 37))}, "password must be at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.update.Execute(ctx, tt.input)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, ve.Error())
			}
		})
	}

	stored, _ := f.repo.FindByID(ctx, created.ID)
	if stored.Name != "Ana" || stored.Email != "ana@x.com" {
		t.Fatalf("rejected updates must not change the user: %+v", stored)
	}
	if got := f.notifier.events(); len(got) != 1 {
		t.Fatalf("rejected updates must not notify, got %v", got)
	}
}

func TestUpdateUser_NormalizesEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _ := f.create.Execute(ctx, ana())

	updated, err := f.update.Execute(ctx, in.UpdateUserInput{UserID: created.ID, Email: strPtr("  New@X.COM ")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "new@x.com" {
		t.Fatalf("email must be normalised, got %q", updated.Email)
	}
}

func TestListUsers_Filters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inputs := []in.CreateUserInput{
		{Name: "D1", CPF: "1", Email: "d1@x.com", Password: "pw", Role: "DOCTOR"},
		{Name: "P1", CPF: "2", Email: "p1@x.com", Password: "pw", Role: "PATIENT"},
		{Name: "D2", CPF: "3", Email: "d2@x.com", Password: "pw", Role: "DOCTOR"},
	}
	for _, i := range inputs {
		if _, err := f.create.Execute(ctx, i); err != nil {
			t.Fatalf("create %s: %v", i.Name, err)
		}
	}
	if err := f.remove.Execute(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	doctors, err := f.list.Execute(ctx, in.ListUsersInput{Role: strPtr("DOCTOR")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("role filter must ignore active state, got %d users", len(doctors))
	}
	for _, d := range doctors {
		if d.Role != "DOCTOR" {
			t.Fatalf("unexpected role %q", d.Role)
		}
	}

	active, _ := f.list.Execute(ctx, in.ListUsersInput{Active: boolPtr(true)})
	if len(active) != 2 {
		t.Fatalf("expected 2 active users, got %d", len(active))
	}

	all, _ := f.list.Execute(ctx, in.ListUsersInput{})
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}

	var ve *domain.ValidationError
	if _, err := f.list.Execute(ctx, in.ListUsersInput{Role: strPtr("NURSE")}); !errors.As(err, &ve) {
		t.Fatalf("unknown role filter must be a validation error, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.get.Execute(context.Background(), 7); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerifyToken_Invalid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	expired, err := f.tokens.WithClock(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	}).GenerateToken(1, "PATIENT")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, tok := range []string{expired, "garbage", "a.b.c"} {
		if _, err := f.verify.Execute(ctx, tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}

	good, _ := f.tokens.GenerateToken(5, "ADMIN")
	if p, err := f.verify.Execute(ctx, "Bearer "+good); err != nil || p.UserID != 5 {
		t.Fatalf("bearer prefix must be accepted: %+v %v", p, err)
	}
}
