package db

import (
	"time"
)

// Fluency levels for a known language.
const (
	FluencyBeginner     = "beginner"
	FluencyIntermediate = "intermediate"
	FluencyAdvanced     = "advanced"
	FluencyNative       = "native"
)

// Profile roles.
const (
	RoleLearner = "learner"
	RoleTeacher = "teacher"
)

// Match request statuses. A request is created pending and transitions
// exactly once to accepted or rejected; terminal rows are never mutated
// or deleted (kept as an audit record).
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Notification types.
const (
	NotifMatchRequest  = "match_request"
	NotifMatchAccepted = "match_accepted"
	NotifNewMessage    = "new_message"
)

// KnownLanguage is one entry of a user's known-language set.
type KnownLanguage struct {
	Language string `json:"language"`
	Fluency  string `json:"fluency"`
}

// User table. Holds the language-exchange profile alongside account fields.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`

	// Profile
	Role           string          `gorm:"size:16;not null"` // learner | teacher
	Region         string          `gorm:"size:64"`
	LearnPrimary   string          `gorm:"size:64"`
	LearnSecondary string          `gorm:"size:64"`
	KnownLanguages []KnownLanguage `gorm:"serializer:json"`
	Interests      []string        `gorm:"serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// MatchRequest represents a directed proposal from sender to receiver.
//
// Indexes:
//   - idx_request_pair_status(sender_id, receiver_id, status)
//     Optimizes the duplicate-pending check (queried in both directions).
//   - idx_request_receiver_status(receiver_id, status)
//     Optimizes "pending requests addressed to me" (bulk clear).
//
// ChatID is set only by the accept transition, inside the same transaction
// as the status CAS, so a reader never observes accepted without a chat.
type MatchRequest struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID   uint64    `gorm:"not null;index:idx_request_pair_status,priority:1"`
	ReceiverID uint64    `gorm:"not null;index:idx_request_pair_status,priority:2;index:idx_request_receiver_status,priority:1"`
	Status     string    `gorm:"size:16;not null;default:'pending';index:idx_request_pair_status,priority:3;index:idx_request_receiver_status,priority:2"`
	ChatID     *string   `gorm:"size:36"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Terminal reports whether the request has reached a final status.
func (m *MatchRequest) Terminal() bool {
	return m.Status == StatusAccepted || m.Status == StatusRejected
}

// Notification is a user-facing event derived from match-request and chat
// activity. A match_request notification exists only while its underlying
// request is pending; resolution retires it.
type Notification struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	Type           string    `gorm:"size:32;not null;index:idx_notif_recipient_type,priority:2"`
	RecipientID    uint64    `gorm:"not null;index:idx_notif_recipient_type,priority:1"`
	SenderID       uint64    `gorm:"not null"`
	RelatedMatchID *uint64   `gorm:"index"`
	RelatedChatID  *string   `gorm:"size:36"`
	Read           bool      `gorm:"default:false"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// ChatSession is the conversation channel between two users. The pair is
// stored normalized (UserLowID < UserHighID) under a unique index, so at
// most one session can ever exist per pair.
type ChatSession struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserLowID  uint64    `gorm:"not null;uniqueIndex:idx_chat_pair,priority:1"`
	UserHighID uint64    `gorm:"not null;uniqueIndex:idx_chat_pair,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// NormalizePair orders two user ids into the (low, high) form used by the
// chat pair index.
func NormalizePair(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}
