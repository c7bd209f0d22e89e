package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func newIssuer(t *testing.T, secret string, now time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(config.AuthConfig{JWTSecret: secret, JWTIssuer: "taskboard", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	issuer := newIssuer(t, "s3cret", now)

	token, expires, err := issuer.Issue(domain.Caller{UserID: 42, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Fatalf("expires = %v, want %v", expires, now.Add(time.Hour))
	}

	caller, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if caller.UserID != 42 || caller.Role != domain.RoleAdmin {
		t.Fatalf("caller = %+v, want {42 ADMIN}", caller)
	}
}

func TestParseRejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	issuer := newIssuer(t, "s3cret", now)
	good, _, err := issuer.Issue(domain.Caller{UserID: 7, Role: domain.RoleEmployee})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := newIssuer(t, "another", now)
	forged, _, _ := other.Issue(domain.Caller{UserID: 7, Role: domain.RoleAdmin})

	later := newIssuer(t, "s3cret", now.Add(2*time.Hour))

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    "taskboard",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	badRoleToken, _ := badRole.SignedString([]byte("s3cret"))

	tests := []struct {
		name   string
		issuer *TokenIssuer
		token  string
	}{
		{"garbage", issuer, "not-a-token"},
		{"wrong secret", issuer, forged},
		{"expired", later, good},
		{"unknown role", issuer, badRoleToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.issuer.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Parse error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(config.AuthConfig{}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("error = %v, want ErrMissingSecret", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals the plain password")
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("Compare(right) = %v", err)
	}
	if err := h.Compare(hash, "wrong"); err == nil {
		t.Fatal("Compare(wrong) = nil, want error")
	}
}
