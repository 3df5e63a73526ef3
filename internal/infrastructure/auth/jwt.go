// Package auth выпускает и проверяет сессионные JWT.
//
// Токен выдаётся после успешного входа и затем используется только для
// определения действующего пользователя (@UsuarioAccion). Права доступа
// проверяют процедуры.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken - токен не прошёл проверку.
var ErrInvalidToken = errors.New("invalid token")

// Config - настройки токенов.
type Config struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// Claims - содержимое сессионного токена.
type Claims struct {
	Session  string `json:"sid,omitempty"`
	BranchID string `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService - выпуск и проверка HS256-токенов.
type TokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService создаёт сервис. Пустой секрет недопустим.
func NewTokenService(cfg Config) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: cfg.Expiry,
		now:    time.Now,
	}, nil
}

// Issue выпускает токен для пользователя.
func (s *TokenService) Issue(userID, session, branchID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	now := s.now()
	claims := Claims{
		Session:  session,
		BranchID: branchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate проверяет подпись, срок и издателя токена.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
