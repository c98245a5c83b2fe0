package usecase

import (
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/out"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// Тексты писем читает сервис уведомлений, они на португальском.

func welcomeNotification(u *domain.User, at time.Time) out.Notification {
	return out.Notification{
		Event:   out.EventUserCreated,
		Email:   u.Email,
		Subject: "Bem-vindo ao Sistema de Consultas Médicas",
		Message: fmt.Sprintf(
			"Olá %s! Sua conta foi criada com sucesso. Você está cadastrado como %s.",
			u.Name, u.Role.Label(),
		),
		OccurredAt: at,
	}
}

func updatedNotification(u *domain.User, at time.Time) out.Notification {
	return out.Notification{
		Event:      out.EventUserUpdated,
		Email:      u.Email,
		Subject:    "Dados Atualizados",
		Message:    fmt.Sprintf("Olá %s! Seus dados cadastrais foram atualizados com sucesso.", u.Name),
		OccurredAt: at,
	}
}

func deactivatedNotification(u *domain.User, at time.Time) out.Notification {
	return out.Notification{
		Event:   out.EventUserDeactivated,
		Email:   u.Email,
		Subject: "Conta Desativada",
		Message: fmt.Sprintf(
			"Olá %s! Sua conta foi desativada. Entre em contato com o suporte se precisar de ajuda.",
			u.Name,
		),
		OccurredAt: at,
	}
}
