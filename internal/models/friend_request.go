// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"
)

// FriendRequestStatus represents the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	// FriendRequestStatusPending is the initial state of every request.
	FriendRequestStatusPending FriendRequestStatus = "pending"
	// FriendRequestStatusAccepted is a terminal state.
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	// FriendRequestStatusRejected is a terminal state.
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s FriendRequestStatus) Valid() bool {
	switch s {
	case FriendRequestStatusPending, FriendRequestStatusAccepted, FriendRequestStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to target is a legal
// transition. Only pending->accepted and pending->rejected are allowed;
// accepted and rejected are terminal and not inter-convertible.
func (s FriendRequestStatus) CanTransitionTo(target FriendRequestStatus) bool {
	return s == FriendRequestStatusPending &&
		(target == FriendRequestStatusAccepted || target == FriendRequestStatusRejected)
}

// FriendRequest is a directed relationship record between two users.
// Uniqueness is on the ordered (from_user_id, to_user_id) pair: a counter
// request in the opposite direction is a distinct record.
type FriendRequest struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	FromUserID uint                `gorm:"not null;uniqueIndex:idx_friend_requests_directed" json:"from_user_id"`
	ToUserID   uint                `gorm:"not null;uniqueIndex:idx_friend_requests_directed" json:"to_user_id"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);default:'pending';not null" json:"status"`
	CreatedAt  time.Time           `json:"created_at"`

	FromUser User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// FriendRequestView is the wire representation of a friend request. Both
// endpoints are rendered as an "email, id" composite string.
type FriendRequestView struct {
	ID        uint                `json:"id"`
	FromUser  string              `json:"from_user"`
	ToUser    string              `json:"to_user"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// View converts a loaded FriendRequest (associations preloaded) into its
// wire representation.
func (fr *FriendRequest) View() FriendRequestView {
	return FriendRequestView{
		ID:        fr.ID,
		FromUser:  fmt.Sprintf("%s, %d", fr.FromUser.Email, fr.FromUser.ID),
		ToUser:    fmt.Sprintf("%s, %d", fr.ToUser.Email, fr.ToUser.ID),
		Status:    fr.Status,
		CreatedAt: fr.CreatedAt,
	}
}
