package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid подпись, формат или алгоритм не прошли проверку
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired срок действия истек
	ErrTokenExpired = errors.New("token expired")
)

const issuer = "user-service"

// Claims представляет JWT claims для нашей системы
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"` // PATIENT | DOCTOR | RECEPTIONIST | ADMIN
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет bearer-токены (HS256)
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService создает новый сервис для работы с JWT
func NewJWTService(cfg config.JWTConfig) *JWTService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени (для тестов и утилит)
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	cp := *s
	cp.now = now
	return &cp
}

// TTL возвращает срок жизни выпускаемых токенов
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken создает новый JWT токен для пользователя
func (s *JWTService) GenerateToken(userID int64, role string) (string, error) {
	now := s.now()

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken проверяет подпись и срок действия. Возвращает ErrTokenExpired
// или ErrTokenInvalid; снаружи сервиса оба случая неразличимы.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
