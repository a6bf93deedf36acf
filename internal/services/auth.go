package services

import (
  "context"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"

  "github.com/slotter-org/batai-backend/internal/config"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/normalization"
  "github.com/slotter-org/batai-backend/internal/requestdata"
)

// JWTClaims is the session token minted by the identity provider. Only the
// email is load-bearing: it is the owner identity for every conversation.
type JWTClaims struct {
  jwt.RegisteredClaims
  Email       string      `json:"email"`
  Name        string      `json:"name,omitempty"`
}

type AuthService interface {
  // SetContextFromToken verifies tokenString and returns ctx carrying the
  // caller's RequestData.
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  // IssueToken signs a session token the same way the identity provider does.
  // Used by local tooling and tests.
  IssueToken(email, name string, ttl time.Duration) (string, error)
}

type authService struct {
  log           *logger.Logger
  secret        []byte
  issuer        string
  audience      string
}

func NewAuthService(log *logger.Logger, cfg config.Auth) AuthService {
  return &authService{
    log:        log.With("service", "AuthService"),
    secret:     []byte(cfg.JWTSecret),
    issuer:     cfg.Issuer,
    audience:   cfg.Audience,
  }
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, fmt.Errorf("missing token")
  }
  opts := []jwt.ParserOption{
    jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
    jwt.WithExpirationRequired(),
    jwt.WithLeeway(30 * time.Second),
  }
  if as.issuer != "" {
    opts = append(opts, jwt.WithIssuer(as.issuer))
  }
  if as.audience != "" {
    opts = append(opts, jwt.WithAudience(as.audience))
  }

  claims := &JWTClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    return as.secret, nil
  }, opts...)
  if err != nil {
    as.log.Debug("Token rejected", "error", err)
    return ctx, fmt.Errorf("invalid token: %w", err)
  }
  if !token.Valid {
    return ctx, fmt.Errorf("invalid token")
  }
  email := normalization.ParseEmail(claims.Email)
  if email == "" {
    as.log.Debug("Token has no email claim", "subject", claims.Subject)
    return ctx, fmt.Errorf("token carries no email")
  }

  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    rd = &requestdata.RequestData{}
  } else {
    cp := *rd
    rd = &cp
  }
  rd.TokenString = tokenString
  rd.UserEmail = email
  rd.UserName = claims.Name
  rd.UserID = claims.Subject
  if rd.UserID == "" {
    rd.UserID = email
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) IssueToken(email, name string, ttl time.Duration) (string, error) {
  now := time.Now()
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      ID:         uuid.NewString(),
      Subject:    email,
      IssuedAt:   jwt.NewNumericDate(now),
      ExpiresAt:  jwt.NewNumericDate(now.Add(ttl)),
    },
    Email:  email,
    Name:   name,
  }
  if as.issuer != "" {
    claims.Issuer = as.issuer
  }
  if as.audience != "" {
    claims.Audience = jwt.ClaimStrings{as.audience}
  }
  signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
  if err != nil {
    return "", fmt.Errorf("failed signing token: %w", err)
  }
  return signed, nil
}
