package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

var ErrInvalidTokenType = errors.New("invalid token type")

// Service verifies the tokens issued to workers. Access tokens carry
// worker_id and role claims.
type Service interface {
	GenerateAccessToken(workerID string, role worker.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(workerID string) (token string, expiresIn int, err error)
	ValidateSSEToken(token string) (workerID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessExpiration time.Duration
	tokenAuth        *jwtauth.JWTAuth
	now              func() time.Time
}

func NewJWTService(secretKey string, accessExpiration string) (Service, error) {
	d, err := time.ParseDuration(accessExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}
	return &JWTService{
		accessExpiration: d,
		tokenAuth:        jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:              time.Now,
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(workerID string, role worker.Role) (string, int64, error) {
	expiresAt := j.now().Add(j.accessExpiration).Unix()
	_, token, err := j.tokenAuth.Encode(map[string]interface{}{
		"worker_id": workerID,
		"role":      string(role),
		"type":      TokenTypeAccess,
		"exp":       expiresAt,
	})
	return token, expiresAt, err
}

// GenerateSSEToken issues a short-lived token for EventSource clients, which
// cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(workerID string) (string, int, error) {
	_, token, err := j.tokenAuth.Encode(map[string]interface{}{
		"worker_id": workerID,
		"type":      TokenTypeSSE,
		"exp":       j.now().Add(sseTokenLifetime).Unix(),
	})
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenLifetime.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	if typ, ok := token.Get("type"); !ok || typ != TokenTypeSSE {
		return "", ErrInvalidTokenType
	}
	raw, ok := token.Get("worker_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	workerID, ok := raw.(string)
	if !ok || workerID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return workerID, nil
}
