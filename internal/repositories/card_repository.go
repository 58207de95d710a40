package repositories

import "flashcards/internal/models"

// CardRepository defines the interface for flashcard data access.
type CardRepository interface {
	GetAll() ([]models.Card, error)
	GetAllPublic() ([]models.Card, error)
	GetByID(id string) (*models.Card, error)
	CountPublic() (int64, error)
	Create(card *models.Card) error
	// Update persists changes to a card. Flipping is_public off removes the
	// card from the study set: its per-pair rows are dropped and affected
	// aggregates decremented in the same transaction.
	Update(card *models.Card) error
	// Delete removes the card and its dependent UserCardProgress rows, and
	// decrements the aggregate of every user who had completed the card,
	// all in a single transaction.
	Delete(id string) error
}
