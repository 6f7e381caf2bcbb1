package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Account is an identity provider account as seen by the rest of the app.
type Account struct {
	UID   string
	Email string
}

// LocalAccount is the record kept by the local identity backend.
type LocalAccount struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	UID           string        `bson:"uid"`
	Email         string        `bson:"email"`
	PasswordHash  []byte        `bson:"password_hash"`
	EmailVerified bool          `bson:"email_verified"`
	Disabled      bool          `bson:"disabled"`
	CreatedAt     time.Time     `bson:"created_at"`
}
