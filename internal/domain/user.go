package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an internal account provisioned lazily on first authenticated
// contact. ExternalID is the identity provider's stable subject and is
// unique; it never changes after provisioning.
type User struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ExternalID  string     `db:"external_id" json:"externalId"`
	Name        string     `db:"name" json:"name"`
	Email       string     `db:"email" json:"email"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
}

// UserSummary is the slim projection embedded in task payloads.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Email:      u.Email,
	}
}
