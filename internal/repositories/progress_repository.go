package repositories

import "flashcards/internal/models"

// ProgressRepository defines the interface for the progress ledger: the
// per-user aggregate plus the per-(user, card) completion rows. The mark
// operations are the only way the two sides are mutated, and every
// implementation must apply both writes atomically.
type ProgressRepository interface {
	GetByUserID(userID string) (*models.Progress, error)
	GetAll() ([]models.Progress, error)
	GetPair(userID, cardID string) (*models.UserCardProgress, error)
	// EnsureForUser lazily creates the aggregate row and refreshes its
	// total_cards to the given count. Safe to call concurrently for the
	// same user; at most one row is ever created.
	EnsureForUser(userID string, totalCards int) (*models.Progress, error)
	// MarkComplete upserts the pair row to completed and increments the
	// aggregate by exactly one, atomically. Calling it again for the same
	// pair is a no-op. total_cards is refreshed in the same transaction so
	// cards published after initialization keep the aggregate in bounds.
	MarkComplete(userID, cardID string, totalCards int) (*models.Progress, error)
	// MarkIncomplete resets the pair row and decrements the aggregate,
	// floored at zero, refreshing total_cards like MarkComplete does.
	// Returns ErrNotCompleted if there is nothing to reset.
	MarkIncomplete(userID, cardID string, totalCards int) (*models.Progress, error)
	Update(progress *models.Progress) error
}
