package models

import "time"

// User represents an account within the PetBond platform. Every account
// carries exactly one pet profile, captured during the signup wizard.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Pet       PetProfile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetProfile holds the pet details attached to an account. Breed and Color
// apply to dogs and cats; BirdType applies to birds.
type PetProfile struct {
	Name     string
	Type     string
	Breed    string
	Age      string
	Color    string
	BirdType string
	ImageURL string
}

const (
	PetTypeDog  = "dog"
	PetTypeCat  = "cat"
	PetTypeBird = "bird"
)

// ProfileSnapshot is the subset of a user's profile copied onto a friend
// request at creation time. Snapshots are never refreshed from the live
// profile, so accepted requests show whatever the parties looked like when
// the request was sent.
type ProfileSnapshot struct {
	Name     string
	Email    string
	PetImage string
	PetBreed string
	PetAge   string
	PetType  string
}

// FriendRequest represents the connect workflow between two users. An
// accepted request doubles as the friend relationship for both sides.
type FriendRequest struct {
	ID              string
	SenderID        string
	Sender          ProfileSnapshot
	ReceiverID      string
	Receiver        ProfileSnapshot
	Status          string
	MatchPercentage int
	CreatedAt       time.Time
	RespondedAt     *time.Time
}

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// Friend is the other party of an accepted request, materialized from the
// snapshot stored on that request.
type Friend struct {
	UserID   string
	Name     string
	Email    string
	PetImage string
	PetBreed string
	PetAge   string
	PetType  string
}

// Post is an entry in the community feed. Posts are append-only; the like
// and comment counters start at zero.
type Post struct {
	ID        string
	Author    string
	Content   string
	Images    []string
	Likes     int
	Comments  int
	CreatedAt time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
