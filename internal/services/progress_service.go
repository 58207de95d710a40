package services

import (
	"errors"
	"fmt"
	"log"

	"flashcards/internal/models"
	"flashcards/internal/repositories"
	"flashcards/pkg/rabbitmq"
)

// ProgressService is the progress ledger. It keeps the per-user aggregate
// counters in lock-step with the per-(user, card) completion rows; the
// repository guarantees atomicity, this layer enforces eligibility and the
// counter bounds.
type ProgressService struct {
	progressRepo repositories.ProgressRepository
	cardRepo     repositories.CardRepository
	userRepo     repositories.UserRepository
	mqClient     *rabbitmq.Client
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	progressRepo repositories.ProgressRepository,
	cardRepo repositories.CardRepository,
	userRepo repositories.UserRepository,
	mqClient *rabbitmq.Client,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		cardRepo:     cardRepo,
		userRepo:     userRepo,
		mqClient:     mqClient,
	}
}

// EnsureInitialized lazily creates the aggregate row for a user, with
// total_cards set to the current number of public cards. An existing row has
// its total refreshed to that count. Safe to call concurrently; duplicate
// initialization is treated as already satisfied.
func (s *ProgressService) EnsureInitialized(userID string) (*models.Progress, error) {
	total, err := s.cardRepo.CountPublic()
	if err != nil {
		return nil, err
	}
	return s.progressRepo.EnsureForUser(userID, int(total))
}

// GetForUser retrieves a user's aggregate progress.
func (s *ProgressService) GetForUser(userID string) (*models.Progress, error) {
	progress, err := s.progressRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrProgressNotFound, userID)
		}
		return nil, err
	}
	return progress, nil
}

// ListAll retrieves every user's aggregate progress (admin view).
func (s *ProgressService) ListAll() ([]models.Progress, error) {
	return s.progressRepo.GetAll()
}

// MarkComplete records a card as learned for the given user. The card must
// exist and be public, and the caller must not be an admin (admins manage
// cards, they do not study them). Marking an already-learned card again is a
// no-op; the aggregate moves by exactly one per pair, ever.
func (s *ProgressService) MarkComplete(user *models.User, cardID string) (*models.Progress, error) {
	if user.IsAdmin {
		return nil, ErrAdminsDoNotStudy
	}

	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
		}
		return nil, err
	}
	if !card.IsPublic {
		return nil, fmt.Errorf("%w: %s", ErrCardNotEligible, cardID)
	}

	total, err := s.cardRepo.CountPublic()
	if err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.MarkComplete(user.ID, cardID, int(total))
	if err != nil {
		return nil, err
	}

	s.publishEvent("card.learned", map[string]interface{}{
		"userID": user.ID,
		"cardID": cardID,
	})

	return progress, nil
}

// MarkIncomplete resets a learned card back to not started. The caller must
// own the card, or the card must be a public one owned by an admin; admins
// may reset progress on any card. Returns ErrNotYetCompleted when there is
// no completed record to reset.
func (s *ProgressService) MarkIncomplete(user *models.User, cardID string) (*models.Progress, error) {
	card, err := s.cardRepo.GetByID(cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
		}
		return nil, err
	}

	if err := s.checkResetAccess(user, card); err != nil {
		return nil, err
	}

	total, err := s.cardRepo.CountPublic()
	if err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.MarkIncomplete(user.ID, cardID, int(total))
	if err != nil {
		if errors.Is(err, repositories.ErrNotCompleted) {
			return nil, fmt.Errorf("%w: %s", ErrNotYetCompleted, cardID)
		}
		return nil, err
	}

	s.publishEvent("card.reset", map[string]interface{}{
		"userID": user.ID,
		"cardID": cardID,
	})

	return progress, nil
}

// UpdateAggregate is the direct administrative overwrite of the counters.
// It rejects completed_cards outside [0, total_cards] and any negative
// marked_important before anything is committed; nothing here is clamped.
// The row is initialized (and its total refreshed) first, so the bound is
// checked against the current public-card count, not a stale snapshot.
func (s *ProgressService) UpdateAggregate(userID string, completedCards, markedImportant *int) (*models.Progress, error) {
	progress, err := s.EnsureInitialized(userID)
	if err != nil {
		return nil, err
	}

	if completedCards != nil {
		if *completedCards < 0 || *completedCards > progress.TotalCards {
			return nil, fmt.Errorf("%w: completed_cards must be within [0, %d]", ErrInvalidAggregate, progress.TotalCards)
		}
		progress.CompletedCards = *completedCards
	}
	if markedImportant != nil {
		if *markedImportant < 0 {
			return nil, fmt.Errorf("%w: marked_important must not be negative", ErrInvalidAggregate)
		}
		progress.MarkedImportant = *markedImportant
	}

	if err := s.progressRepo.Update(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// checkResetAccess applies the reset permission rule: owner always, admin
// always, anyone for a public card owned by an admin.
func (s *ProgressService) checkResetAccess(user *models.User, card *models.Card) error {
	if user.IsAdmin || card.OwnerID == user.ID {
		return nil
	}
	if !card.IsPublic {
		return fmt.Errorf("%w: card %s", ErrForbidden, card.ID)
	}
	owner, err := s.userRepo.GetByID(card.OwnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: card %s", ErrForbidden, card.ID)
		}
		return err
	}
	if !owner.IsAdmin {
		return fmt.Errorf("%w: card %s", ErrForbidden, card.ID)
	}
	return nil
}

// publishEvent sends a study event if a message broker is configured.
// Publishing is best effort and never fails the calling operation.
func (s *ProgressService) publishEvent(eventType string, data map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishStudyEvent(eventType, data); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}
