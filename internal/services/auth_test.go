package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slotter-org/batai-backend/internal/config"
	"github.com/slotter-org/batai-backend/internal/logger"
	"github.com/slotter-org/batai-backend/internal/requestdata"
)

func TestAuthRoundTrip(t *testing.T) {
	as := NewAuthService(logger.Nop(), config.Auth{JWTSecret: "test-secret", Issuer: "idp", Audience: "batai"})
	tok, err := as.IssueToken("Alice@Example.com", "Alice", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := as.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserEmail != "alice@example.com" || rd.UserName != "Alice" {
		t.Fatalf("unexpected request data %+v", rd)
	}
	if requestdata.OwnerFrom(ctx) != "alice@example.com" {
		t.Fatalf("expected owner to be the lower-cased email")
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	as := NewAuthService(logger.Nop(), config.Auth{JWTSecret: "test-secret"})
	other := NewAuthService(logger.Nop(), config.Auth{JWTSecret: "other-secret"})

	wrongKey, _ := other.IssueToken("a@example.com", "", time.Hour)
	expired, _ := as.IssueToken("a@example.com", "", -time.Hour)
	noEmail, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{Email: "a@example.com"}).SignedString([]byte("test-secret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
		Email:            "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not.a.jwt",
		"wrong key": wrongKey,
		"expired":   expired,
		"no email":  noEmail,
		"no exp":    noExp,
		"alg none":  none,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, err := as.SetContextFromToken(context.Background(), tok)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if requestdata.GetRequestData(ctx) != nil {
				t.Fatalf("rejected token must not attach request data")
			}
		})
	}
}

func TestAuthEnforcesIssuer(t *testing.T) {
	strict := NewAuthService(logger.Nop(), config.Auth{JWTSecret: "k", Issuer: "idp"})
	lax := NewAuthService(logger.Nop(), config.Auth{JWTSecret: "k"})
	tok, _ := lax.IssueToken("a@example.com", "", time.Hour)
	if _, err := strict.SetContextFromToken(context.Background(), tok); err == nil {
		t.Fatalf("expected missing issuer to be rejected")
	}
}
