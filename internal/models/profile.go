package models

import "time"

// Profile is the per-user document kept in the document store, keyed by the
// identity provider's uid.
type Profile struct {
	UserID     string    `bson:"_id" json:"uid"`
	Email      string    `bson:"email" json:"email"`
	Conditions []string  `bson:"conditions" json:"conditions"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
