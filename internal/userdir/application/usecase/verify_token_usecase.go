package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/auth"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/application/ports/in"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/domain"
)

// VerifyTokenService реализует VerifyTokenUseCase. Хранилище не
// используется: валидность определяется только подписью и сроком.
type VerifyTokenService struct {
	tokens *auth.JWTService
	log    *logger.Logger
}

func NewVerifyTokenService(tokens *auth.JWTService, log *logger.Logger) *VerifyTokenService {
	return &VerifyTokenService{tokens: tokens, log: log}
}

// Execute возвращает domain.ErrInvalidToken и для поддельного, и для
// просроченного токена
func (s *VerifyTokenService) Execute(_ context.Context, token string) (*in.TokenPayload, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, domain.NewValidationError("token is required")
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "expired"
		}
		s.log.Debug(logger.Entry{
			Action:     "token_rejected",
			Message:    err.Error(),
			Additional: map[string]any{"reason": reason},
		})
		return nil, domain.ErrInvalidToken
	}

	return &in.TokenPayload{
		UserID: claims.UserID,
		Role:   claims.Role,
		Exp:    claims.ExpiresAt.Unix(),
	}, nil
}
