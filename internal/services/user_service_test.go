package services_test

import (
	"testing"

	"flashcards/internal/models"
	"flashcards/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SelfProtection(t *testing.T) {
	env := setupLedger(t)
	userService := services.NewUserService(env.userRepo)

	admin := env.createUser(t, "root", true)
	other := env.createUser(t, "other", true)

	// An admin cannot delete their own account, however the request is shaped
	err := userService.DeleteUser(admin.ID, admin.ID)
	assert.ErrorIs(t, err, services.ErrSelfAction)

	// An admin cannot demote themselves either
	_, err = userService.SetAdmin(admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, services.ErrSelfAction)

	// Re-granting your own flag is a harmless no-op, not a self-action
	_, err = userService.SetAdmin(admin.ID, admin.ID, true)
	assert.NoError(t, err)

	// Demoting a different admin works
	demoted, err := userService.SetAdmin(admin.ID, other.ID, false)
	assert.NoError(t, err)
	assert.False(t, demoted.IsAdmin)
}

func TestUserService_SetActiveIsIdempotent(t *testing.T) {
	env := setupLedger(t)
	userService := services.NewUserService(env.userRepo)

	alice := env.createUser(t, "alice", false)

	deactivated, err := userService.SetActive(alice.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	// Same state again, no error, no change
	again, err := userService.SetActive(alice.ID, false)
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	_, err = userService.SetActive("no-such-user", true)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestUserService_DeleteCascadesProgress(t *testing.T) {
	env := setupLedger(t)
	userService := services.NewUserService(env.userRepo)

	admin := env.createUser(t, "admin", true)
	card := env.createCard(t, admin, "hund", true)
	alice := env.createUser(t, "alice", false)

	_, err := env.progress.MarkComplete(alice, card.ID)
	require.NoError(t, err)

	require.NoError(t, userService.DeleteUser(admin.ID, alice.ID))

	// The account and all its ledger state are gone
	_, err = userService.GetUserByID(alice.ID)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = env.progress.GetForUser(alice.ID)
	assert.ErrorIs(t, err, services.ErrProgressNotFound)

	assert.EqualValues(t, 0, env.pairCount(t, alice.ID))
}

func TestUserService_DeleteRemovesOwnedCards(t *testing.T) {
	env := setupLedger(t)
	userService := services.NewUserService(env.userRepo)

	root := env.createUser(t, "root", true)
	teacher := env.createUser(t, "teacher", true)
	env.createCard(t, teacher, "hund", true)
	env.createCard(t, teacher, "katze", true)

	require.NoError(t, userService.DeleteUser(root.ID, teacher.ID))

	var remaining int64
	require.NoError(t, env.db.Model(&models.Card{}).Where("owner_id = ?", teacher.ID).Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)
}
