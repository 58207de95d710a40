package services

import (
	"errors"
	"fmt"

	"flashcards/internal/models"
	"flashcards/internal/repositories"
)

// UserService handles the admin-facing user management operations: listing
// accounts, toggling flags and deleting users.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers retrieves all users, newest first.
func (s *UserService) ListUsers() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// GetUserByID retrieves a single user.
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables an account. Deactivating an account makes
// every token it holds useless at the session resolver, even though the
// tokens themselves stay cryptographically valid until expiry.
func (s *UserService) SetActive(targetID string, active bool) (*models.User, error) {
	user, err := s.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil // idempotent
	}
	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAdmin grants or revokes the admin flag. An admin cannot demote their
// own account; the check compares identities, not roles, so it holds no
// matter how the request was shaped.
func (s *UserService) SetAdmin(actorID, targetID string, admin bool) (*models.User, error) {
	if targetID == actorID && !admin {
		return nil, fmt.Errorf("%w: demote another admin first", ErrSelfAction)
	}
	user, err := s.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin == admin {
		return user, nil // idempotent
	}
	user.IsAdmin = admin
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and all of its data. The repository deletes
// the user's progress, per-card records and owned cards in one transaction.
// Admins cannot delete their own account.
func (s *UserService) DeleteUser(actorID, targetID string) error {
	if targetID == actorID {
		return fmt.Errorf("%w: transfer admin rights to another user first", ErrSelfAction)
	}
	if err := s.userRepo.Delete(targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, targetID)
		}
		return err
	}
	return nil
}
