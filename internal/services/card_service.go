package services

import (
	"errors"
	"fmt"

	"flashcards/internal/models"
	"flashcards/internal/repositories"
)

// CardService handles business logic related to flashcards. Role checks for
// the admin-only operations live in the middleware guards, not here.
type CardService struct {
	repo repositories.CardRepository
}

// NewCardService creates a new CardService.
func NewCardService(repo repositories.CardRepository) *CardService {
	return &CardService{
		repo: repo,
	}
}

// GetAllCards retrieves all cards, including non-public ones.
func (s *CardService) GetAllCards() ([]models.Card, error) {
	return s.repo.GetAll()
}

// GetPublicCards retrieves the cards eligible for study.
func (s *CardService) GetPublicCards() ([]models.Card, error) {
	return s.repo.GetAllPublic()
}

// GetCardByID retrieves a single card by its ID.
func (s *CardService) GetCardByID(id string) (*models.Card, error) {
	card, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		return nil, err
	}
	return card, nil
}

// CreateCard creates a new card owned by the given user.
func (s *CardService) CreateCard(card *models.Card, ownerID string) error {
	card.OwnerID = ownerID
	return s.repo.Create(card)
}

// UpdateCard updates an existing card.
func (s *CardService) UpdateCard(card *models.Card) error {
	if err := s.repo.Update(card); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrCardNotFound, card.ID)
		}
		return err
	}
	return nil
}

// DeleteCard deletes a card by its ID. The repository cascades the deletion
// to dependent per-pair progress rows and the affected aggregates.
func (s *CardService) DeleteCard(id string) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		return err
	}
	return nil
}
