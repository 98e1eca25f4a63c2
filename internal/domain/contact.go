package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// StatusNew is the status every stored submission starts with.
const StatusNew = "new"

// Contact represents a stored contact form submission.
// Records are append-only: nothing in this service updates or deletes them.
type Contact struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Email     string    `gorm:"not null;index" bson:"email" json:"email"`
	Subject   string    `gorm:"not null" bson:"subject" json:"subject"`
	Message   string    `gorm:"type:text;not null" bson:"message" json:"message"`
	CreatedAt time.Time `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
	Status    string    `gorm:"not null;default:'new'" bson:"status" json:"status"`
}

// TableName specifies the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}

// BeforeCreate hook
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
	return nil
}

// Submission is one contact-form payload as sent by a visitor.
type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,contactemail"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Normalize returns a copy with surrounding whitespace removed from the
// free-text fields, so a field of only spaces counts as empty. Email is kept
// as sent and must match the address pattern exactly.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   s.Email,
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}
