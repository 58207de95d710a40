package repositories

import "flashcards/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll() ([]models.User, error)
	Update(user *models.User) error
	// Delete removes the user together with their Progress, UserCardProgress
	// rows and owned cards in a single transaction.
	Delete(id string) error
}
