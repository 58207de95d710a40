package services_test

import (
	"testing"

	"flashcards/internal/models"
	"flashcards/internal/repositories"
	"flashcards/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardService_CRUD(t *testing.T) {
	repo := repositories.NewMockCardRepository()
	cardService := services.NewCardService(repo)

	card := &models.Card{
		ForeignWord:       "hund",
		NativeTranslation: "dog",
		Example:           "Der Hund schläft.",
		IsPublic:          true,
	}
	require.NoError(t, cardService.CreateCard(card, "admin-1"))
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "admin-1", card.OwnerID)

	fetched, err := cardService.GetCardByID(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "hund", fetched.ForeignWord)

	fetched.NativeTranslation = "hound"
	require.NoError(t, cardService.UpdateCard(fetched))

	updated, err := cardService.GetCardByID(card.ID)
	require.NoError(t, err)
	assert.Equal(t, "hound", updated.NativeTranslation)

	require.NoError(t, cardService.DeleteCard(card.ID))
	_, err = cardService.GetCardByID(card.ID)
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}

func TestCardService_PublicFiltering(t *testing.T) {
	repo := repositories.NewMockCardRepository()
	cardService := services.NewCardService(repo)

	public := &models.Card{ForeignWord: "hund", NativeTranslation: "dog", IsPublic: true}
	private := &models.Card{ForeignWord: "geheim", NativeTranslation: "secret", IsPublic: false}
	require.NoError(t, cardService.CreateCard(public, "admin-1"))
	require.NoError(t, cardService.CreateCard(private, "admin-1"))

	visible, err := cardService.GetPublicCards()
	require.NoError(t, err)
	assert.Len(t, visible, 1)
	assert.Equal(t, "hund", visible[0].ForeignWord)

	all, err := cardService.GetAllCards()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCardService_NotFoundMapping(t *testing.T) {
	repo := repositories.NewMockCardRepository()
	cardService := services.NewCardService(repo)

	_, err := cardService.GetCardByID("missing")
	assert.ErrorIs(t, err, services.ErrCardNotFound)

	err = cardService.UpdateCard(&models.Card{ID: "missing", ForeignWord: "x", NativeTranslation: "y"})
	assert.ErrorIs(t, err, services.ErrCardNotFound)

	err = cardService.DeleteCard("missing")
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}
