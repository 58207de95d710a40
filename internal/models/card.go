package models

import "gorm.io/gorm"

// Card is a single vocabulary flashcard: a foreign word, its native
// translation and an optional example sentence.
type Card struct {
	ID                string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ForeignWord       string `json:"foreign_word" gorm:"index;type:varchar(255)" validate:"required,min=1,max=255"`
	NativeTranslation string `json:"native_translation" gorm:"type:varchar(255)" validate:"required,min=1,max=255"`
	Example           string `json:"example,omitempty" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	OwnerID           string `json:"owner_id" gorm:"index;type:varchar(36)"`
	IsPublic          bool   `json:"is_public" gorm:"default:true"` // only public cards are eligible for non-owner study
	gorm.Model               // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
