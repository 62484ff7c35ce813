package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/koweyli/vantage-console/internal/metrics"
	"github.com/koweyli/vantage-console/internal/models"
	"github.com/koweyli/vantage-console/internal/store"
)

// ErrBadCredentials is returned for unknown usernames and wrong passwords
// alike; the login response does not distinguish them.
var ErrBadCredentials = errors.New("invalid username or password")

// ErrBadToken is returned when a bearer token fails validation.
var ErrBadToken = errors.New("invalid or expired token")

// AuthService handles credential login, registration and bearer tokens.
// Tokens are signed JWTs: opaque to the client, verifiable server-side
// without session state.
type AuthService struct {
	users  *store.UserStore
	perms  *store.PermissionStore
	audit  *AuditService
	alerts *AlertService
	secret []byte
	ttl    time.Duration
}

// NewAuthService wires the service. alerts may be nil.
func NewAuthService(users *store.UserStore, perms *store.PermissionStore, audit *AuditService, alerts *AlertService, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, perms: perms, audit: audit, alerts: alerts, secret: []byte(secret), ttl: ttl}
}

// TokenClaims is the JWT payload: subject is the user id, plus the username
// for log context.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into the numeric user id.
func (c *TokenClaims) UserID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

// Login verifies the plaintext credentials, records the attempt in the audit
// log and returns a bearer token on success.
func (s *AuthService) Login(ctx context.Context, username, password string, prov *Provenance) (string, models.User, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil || user.Password != password {
		// Audit the failure under the real account when the username
		// exists, otherwise under the attempted name with user id 0.
		failedID := 0
		failedName := username
		if err == nil {
			failedID = user.ID
			failedName = user.Username
		}
		s.audit.Record(ctx, failedID, failedName, "login", "auth", "login failed: wrong username or password", models.AuditFailed, prov)
		metrics.IncLoginFailure()
		if s.alerts != nil {
			s.alerts.Notify(fmt.Sprintf("Failed login for %q from %s", username, provIP(prov)))
		}
		return "", models.User{}, ErrBadCredentials
	}

	s.audit.Record(ctx, user.ID, user.Username, "login", "auth", "user signed in", models.AuditSuccess, prov)

	token, err := s.issueToken(user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// Register creates an account with the default route-permission assignment
// and records the event.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirm string, prov *Provenance) (models.User, error) {
	if err := store.ValidateRequired(map[string]string{
		"username":        username,
		"email":           email,
		"password":        password,
		"confirmPassword": confirm,
	}); err != nil {
		return models.User{}, err
	}
	if err := store.ValidatePassword(password, confirm); err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(store.CreateUser{Username: username, Email: email, Password: password})
	if err != nil {
		return models.User{}, err
	}
	s.perms.AssignDefaults(user.Username)
	s.audit.Record(ctx, user.ID, user.Username, "create", "user", "account registered", models.AuditSuccess, prov)
	return user, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *AuthService) ParseToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrBadToken
	}
	return claims, nil
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func provIP(prov *Provenance) string {
	if prov == nil {
		return "system"
	}
	return prov.IP
}
