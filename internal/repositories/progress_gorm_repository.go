package repositories

import (
	"errors"
	"fmt"
	"time"

	"flashcards/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProgressRepository is a GORM implementation of ProgressRepository.
//
// The exactly-once behaviour of MarkComplete rests on two things: the unique
// index on (user_id, card_id), and the fact that the pair write and the
// aggregate increment run inside one transaction with the increment only
// issued when the pair write actually flipped a row.
type GORMProgressRepository struct {
	db *gorm.DB
}

// NewGORMProgressRepository creates a new instance of GORMProgressRepository.
func NewGORMProgressRepository(db *gorm.DB) *GORMProgressRepository {
	return &GORMProgressRepository{
		db: db,
	}
}

// GetByUserID retrieves the aggregate row for a user.
func (r *GORMProgressRepository) GetByUserID(userID string) (*models.Progress, error) {
	var progress models.Progress
	if err := r.db.First(&progress, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress for user %s: %w", userID, err)
	}
	return &progress, nil
}

// GetAll retrieves every user's aggregate row.
func (r *GORMProgressRepository) GetAll() ([]models.Progress, error) {
	var progresses []models.Progress
	if err := r.db.Find(&progresses).Error; err != nil {
		return nil, fmt.Errorf("failed to get all progress: %w", err)
	}
	return progresses, nil
}

// GetPair retrieves the completion record for one (user, card) pair.
func (r *GORMProgressRepository) GetPair(userID, cardID string) (*models.UserCardProgress, error) {
	var pair models.UserCardProgress
	err := r.db.First(&pair, "user_id = ? AND card_id = ?", userID, cardID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress for user %s on card %s: %w", userID, cardID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card progress: %w", err)
	}
	return &pair, nil
}

// EnsureForUser lazily creates the aggregate row for a user. The upsert with
// DO NOTHING on the user_id unique index means two concurrent callers race
// harmlessly; whoever loses simply reads the winner's row.
func (r *GORMProgressRepository) EnsureForUser(userID string, totalCards int) (*models.Progress, error) {
	var progress models.Progress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureProgressRow(tx, userID, totalCards); err != nil {
			return err
		}
		return tx.First(&progress, "user_id = ?", userID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize progress for user %s: %w", userID, err)
	}
	return &progress, nil
}

// MarkComplete records a card as learned. The pair row is flipped (or
// created), total_cards is refreshed and the aggregate incremented by one in
// the same transaction. If the pair is already completed the counters are
// left alone.
func (r *GORMProgressRepository) MarkComplete(userID, cardID string, totalCards int) (*models.Progress, error) {
	var progress models.Progress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureProgressRow(tx, userID, totalCards); err != nil {
			return err
		}

		now := time.Now()

		// Flip an existing not-yet-completed pair row. RowsAffected tells us
		// whether this call actually changed state.
		res := tx.Model(&models.UserCardProgress{}).
			Where("user_id = ? AND card_id = ? AND is_completed = ?", userID, cardID, false).
			Updates(map[string]interface{}{"is_completed": true, "completed_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to update card progress: %w", res.Error)
		}
		flipped := res.RowsAffected

		if flipped == 0 {
			// Either the row does not exist yet, or it is already completed.
			// The conflict clause on the (user_id, card_id) index makes the
			// insert a no-op in the already-completed case, so a concurrent
			// duplicate call can never double-insert.
			pair := models.UserCardProgress{
				ID:          uuid.New().String(),
				UserID:      userID,
				CardID:      cardID,
				IsCompleted: true,
				CompletedAt: &now,
			}
			res = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "card_id"}},
				DoNothing: true,
			}).Create(&pair)
			if res.Error != nil {
				return fmt.Errorf("failed to create card progress: %w", res.Error)
			}
			flipped = res.RowsAffected
		}

		if flipped > 0 {
			err := tx.Model(&models.Progress{}).
				Where("user_id = ?", userID).
				UpdateColumn("completed_cards", gorm.Expr("completed_cards + ?", 1)).Error
			if err != nil {
				return fmt.Errorf("failed to increment completed counter: %w", err)
			}
		}

		return tx.First(&progress, "user_id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// MarkIncomplete resets a learned card back to not started. The decrement is
// floored at zero so a drifted counter can never go negative, and
// total_cards is refreshed like in MarkComplete.
func (r *GORMProgressRepository) MarkIncomplete(userID, cardID string, totalCards int) (*models.Progress, error) {
	var progress models.Progress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureProgressRow(tx, userID, totalCards); err != nil {
			return err
		}

		res := tx.Model(&models.UserCardProgress{}).
			Where("user_id = ? AND card_id = ? AND is_completed = ?", userID, cardID, true).
			Updates(map[string]interface{}{"is_completed": false, "completed_at": nil})
		if res.Error != nil {
			return fmt.Errorf("failed to reset card progress: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("card %s for user %s: %w", cardID, userID, ErrNotCompleted)
		}

		err := tx.Model(&models.Progress{}).
			Where("user_id = ?", userID).
			UpdateColumn("completed_cards",
				gorm.Expr("CASE WHEN completed_cards > 0 THEN completed_cards - 1 ELSE 0 END")).Error
		if err != nil {
			return fmt.Errorf("failed to decrement completed counter: %w", err)
		}

		if err := tx.First(&progress, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("progress for user %s: %w", userID, ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Update persists a direct overwrite of the aggregate row. Validation of the
// new counter values happens in the service layer before this is called.
func (r *GORMProgressRepository) Update(progress *models.Progress) error {
	res := r.db.Save(progress)
	if res.Error != nil {
		return fmt.Errorf("failed to update progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("progress with ID %s not found for update: %w", progress.ID, ErrNotFound)
	}
	return nil
}

// ensureProgressRow upserts the aggregate row inside an open transaction.
// An existing row gets its total_cards refreshed to the current count, so
// cards published after the row was created are always reflected before the
// counters move.
func ensureProgressRow(tx *gorm.DB, userID string, totalCards int) error {
	progress := models.Progress{
		ID:         uuid.New().String(),
		UserID:     userID,
		TotalCards: totalCards,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"total_cards": totalCards}),
	}).Create(&progress).Error
	if err != nil {
		return fmt.Errorf("failed to ensure progress row: %w", err)
	}
	return nil
}
