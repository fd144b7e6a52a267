// Package authservice implements registration, login, and signed-token
// issuance. It owns the only code that ever sees a plaintext password.
package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/store"
)

// minPasswordLen is defended here even though the API layer validates
// request bodies first.
const minPasswordLen = 6

// Claims is the payload of an issued token: enough to identify the user
// without a database round trip.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Service provides credential and identity operations.
type Service struct {
	store  store.UserStore
	secret []byte
	ttl    time.Duration
}

// New creates a new Service. The secret signs and verifies every token;
// ttl is the validity window of issued tokens.
func New(st store.UserStore, secret string, ttl time.Duration) *Service {
	return &Service{
		store:  st,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Register creates a new user and returns a signed token plus the user
// record with the password hash blanked. A duplicate email surfaces as
// apperr.ErrConflict via the storage unique index.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (string, *models.User, error) {
	if email == "" || firstName == "" || lastName == "" || len(password) < minPasswordLen {
		return "", nil, apperr.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("authservice: hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	user.PasswordHash = ""
	return token, user, nil
}

// Login verifies the credentials and returns a signed token plus the user
// record with the password hash blanked. An unknown email and a wrong
// password both return apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	user.PasswordHash = ""
	return token, user, nil
}

// GetUserByID returns the user with the password hash blanked, or
// apperr.ErrNotFound.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// issueToken signs an HS256 token carrying the user's id, email, and
// display name, valid for s.ttl from now.
func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   fmt.Sprintf("%s %s", user.FirstName, user.LastName),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("authservice: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of a token string and
// returns its claims. The signing method must be HMAC; asymmetric headers
// are rejected outright.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("authservice: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("authservice: token is invalid")
	}
	if claims.UserID == 0 {
		return nil, errors.New("authservice: token has no user_id claim")
	}
	return claims, nil
}
