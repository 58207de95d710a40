package repositories

import (
	"fmt"
	"sync"

	"flashcards/internal/models"

	"github.com/google/uuid"
)

// MockCardRepository is an in-memory implementation of CardRepository.
type MockCardRepository struct {
	cards map[string]models.Card
	mu    sync.RWMutex
}

// NewMockCardRepository creates a new instance of MockCardRepository.
func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{
		cards: make(map[string]models.Card),
	}
}

// GetAll returns all cards.
func (r *MockCardRepository) GetAll() ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cardList := make([]models.Card, 0, len(r.cards))
	for _, c := range r.cards {
		cardList = append(cardList, c)
	}
	return cardList, nil
}

// GetAllPublic returns the cards eligible for study.
func (r *MockCardRepository) GetAllPublic() ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cardList := make([]models.Card, 0, len(r.cards))
	for _, c := range r.cards {
		if c.IsPublic {
			cardList = append(cardList, c)
		}
	}
	return cardList, nil
}

// GetByID returns a card by its ID.
func (r *MockCardRepository) GetByID(id string) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return nil, fmt.Errorf("card with ID %s: %w", id, ErrNotFound)
	}
	return &card, nil
}

// CountPublic returns the number of public cards.
func (r *MockCardRepository) CountPublic() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, c := range r.cards {
		if c.IsPublic {
			count++
		}
	}
	return count, nil
}

// Create adds a new card.
func (r *MockCardRepository) Create(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	r.cards[card.ID] = *card
	return nil
}

// Update modifies an existing card.
func (r *MockCardRepository) Update(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.cards[card.ID]
	if !ok {
		return fmt.Errorf("card with ID %s not found for update: %w", card.ID, ErrNotFound)
	}
	r.cards[card.ID] = *card
	return nil
}

// Delete removes a card by its ID.
func (r *MockCardRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.cards[id]
	if !ok {
		return fmt.Errorf("card with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.cards, id)
	return nil
}
