package repositories

import (
	"errors"
	"fmt"

	"flashcards/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCardRepository is a GORM implementation of CardRepository.
type GORMCardRepository struct {
	db *gorm.DB
}

// NewGORMCardRepository creates a new instance of GORMCardRepository.
func NewGORMCardRepository(db *gorm.DB) *GORMCardRepository {
	return &GORMCardRepository{
		db: db,
	}
}

// GetAll retrieves all cards from the database.
func (r *GORMCardRepository) GetAll() ([]models.Card, error) {
	var cards []models.Card
	if err := r.db.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get all cards: %w", err)
	}
	return cards, nil
}

// GetAllPublic retrieves the cards that are eligible for study.
func (r *GORMCardRepository) GetAllPublic() ([]models.Card, error) {
	var cards []models.Card
	if err := r.db.Where("is_public = ?", true).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get public cards: %w", err)
	}
	return cards, nil
}

// GetByID retrieves a single card by its ID from the database.
func (r *GORMCardRepository) GetByID(id string) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("card with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card by ID %s: %w", id, err)
	}
	return &card, nil
}

// CountPublic returns the number of cards currently eligible for study.
func (r *GORMCardRepository) CountPublic() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Card{}).Where("is_public = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count public cards: %w", err)
	}
	return count, nil
}

// Create creates a new card in the database.
func (r *GORMCardRepository) Create(card *models.Card) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if err := r.db.Create(card).Error; err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// Update updates an existing card in the database. Taking a public card
// private removes it from the study set, so the dependent per-pair rows are
// dropped and affected aggregates decremented the same way Delete does it.
func (r *GORMCardRepository) Update(card *models.Card) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Card
		if err := tx.First(&existing, "id = ?", card.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("card with ID %s not found for update: %w", card.ID, ErrNotFound)
			}
			return fmt.Errorf("failed to load card %s for update: %w", card.ID, err)
		}

		if existing.IsPublic && !card.IsPublic {
			completedUsers := tx.Model(&models.UserCardProgress{}).
				Select("user_id").
				Where("card_id = ? AND is_completed = ?", card.ID, true)
			err := tx.Model(&models.Progress{}).
				Where("user_id IN (?)", completedUsers).
				UpdateColumn("completed_cards",
					gorm.Expr("CASE WHEN completed_cards > 0 THEN completed_cards - 1 ELSE 0 END")).Error
			if err != nil {
				return fmt.Errorf("failed to adjust aggregates for card %s: %w", card.ID, err)
			}
			if err := tx.Where("card_id = ?", card.ID).Delete(&models.UserCardProgress{}).Error; err != nil {
				return fmt.Errorf("failed to delete card progress for card %s: %w", card.ID, err)
			}
		}

		// Save updates all fields, including zero values
		if err := tx.Save(card).Error; err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}
		return nil
	})
}

// Delete removes a card and cleans up everything that depends on it. Users
// who had completed the card get their aggregate decremented (floored at
// zero) before the per-pair rows are dropped, all inside one transaction.
func (r *GORMCardRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Delete(&models.Card{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete card: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("card with ID %s not found for deletion: %w", id, ErrNotFound)
		}

		completedUsers := tx.Model(&models.UserCardProgress{}).
			Select("user_id").
			Where("card_id = ? AND is_completed = ?", id, true)
		err := tx.Model(&models.Progress{}).
			Where("user_id IN (?)", completedUsers).
			UpdateColumn("completed_cards",
				gorm.Expr("CASE WHEN completed_cards > 0 THEN completed_cards - 1 ELSE 0 END")).Error
		if err != nil {
			return fmt.Errorf("failed to adjust aggregates for card %s: %w", id, err)
		}

		if err := tx.Where("card_id = ?", id).Delete(&models.UserCardProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete card progress for card %s: %w", id, err)
		}
		return nil
	})
}
