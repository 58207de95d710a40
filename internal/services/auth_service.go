package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"flashcards/internal/models"
	"flashcards/internal/repositories"
	"flashcards/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit. Longer passwords are rejected at
// the boundary instead of being silently truncated.
const maxPasswordBytes = 72

// AuthService handles business logic for authentication: credential storage,
// token issuance and token validation.
type AuthService struct {
	userRepo  repositories.UserRepository
	mqClient  *rabbitmq.Client
	jwtSecret []byte
	tokenTTL  time.Duration // Duration for which a JWT is valid
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to
// the default 30-minute token lifetime.
func NewAuthService(userRepo repositories.UserRepository, mqClient *rabbitmq.Client, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthService{
		userRepo:  userRepo,
		mqClient:  mqClient,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// RegisterUser registers a new user, hashes their password with bcrypt, and
// saves them to the database. Username uniqueness is backed by the storage
// unique constraint, so a racing duplicate registration loses cleanly with
// ErrUsernameTaken instead of slipping past a read-then-write check.
func (s *AuthService) RegisterUser(user *models.User) error {
	if len([]byte(user.Password)) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.publishEvent("user.registered", map[string]interface{}{
		"userID":   user.ID,
		"username": user.Username,
	})

	return nil
}

// LoginUser authenticates a user and returns a signed JWT if successful.
// Unknown username and wrong password collapse into the same error, so a
// caller can never probe which usernames exist.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                 // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// TokenTTL reports the configured token lifetime, used by handlers to set
// the session cookie max age.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// ValidateToken parses and validates a JWT, returning the claims if valid.
// This is a pure signature + expiry check; storage is never consulted.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// CurrentUser resolves a raw token to the user it identifies. It returns
// ErrInvalidToken for bad or expired tokens, ErrUserNotFound when the
// subject no longer exists and ErrUserInactive for deactivated accounts.
func (s *AuthService) CurrentUser(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(sub)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user for token: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user, nil
}

// publishEvent sends a study event if a message broker is configured.
// Publishing is best effort and never fails the calling operation.
func (s *AuthService) publishEvent(eventType string, data map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishStudyEvent(eventType, data); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}
