package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_SaltedAndVerifiable(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password must differ")
	}
	if first == "pw" {
		t.Fatalf("hash must not equal the password")
	}

	if !h.Verify("pw", first) || !h.Verify("pw", second) {
		t.Fatalf("both hashes must verify")
	}
	if h.Verify("wrong", first) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	for _, hash := range []string{"", "not-a-hash", "$2a$04$short"} {
		if h.Verify("pw", hash) {
			t.Fatalf("malformed hash %q must not verify", hash)
		}
	}
}

func TestPasswordHasher_LimitCountsBytes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	// 36 символов по 2 байта: ровно на границе
	if _, err := h.Hash(strings.Repeat("é", 36)); err != nil {
		t.Fatalf("72-byte password must hash: %v", err)
	}

	// 40 символов, но 80 байт
	_, err := h.Hash(strings.Repeat("é", 40))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func newTestJWT() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret", TTL: 24 * time.Hour})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWT()
	before := time.Now()

	token, err := svc.GenerateToken(42, "DOCTOR")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "DOCTOR" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	exp := claims.ExpiresAt.Time
	if exp.Before(before.Add(24*time.Hour-time.Second)) || exp.After(time.Now().Add(24*time.Hour+time.Second)) {
		t.Fatalf("expiry must be ~24h from issuance, got %s", exp)
	}
}

func TestJWTService_TamperedSignature(t *testing.T) {
	svc := newTestJWT()
	token, err := svc.GenerateToken(1, "PATIENT")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parts := strings.Split(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	sig[0] ^= 0xFF
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = svc.ValidateToken(strings.Join(parts, "."))
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTService_Expired(t *testing.T) {
	issuedLongAgo := newTestJWT().WithClock(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	})
	token, err := issuedLongAgo.GenerateToken(1, "PATIENT")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = newTestJWT().ValidateToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_RejectsOtherSecretAndAlgorithm(t *testing.T) {
	other := NewJWTService(config.JWTConfig{Secret: "other", TTL: time.Hour})
	token, _ := other.GenerateToken(1, "ADMIN")
	if _, err := newTestJWT().ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("token signed with another secret must be invalid, got %v", err)
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 1,
		"role":    "ADMIN",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := newTestJWT().ValidateToken(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("alg=none must be rejected, got %v", err)
	}

	if _, err := newTestJWT().ValidateToken("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage must be invalid, got %v", err)
	}
}
