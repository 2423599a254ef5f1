package models

import (
	"time"
)

// Vote is the single ballot of one participant on one poll. IdentityKey is
// the deduplication key (lowercased trimmed email when present, else the
// trimmed display name); the composite unique index is what makes concurrent
// duplicate submissions fail at the storage layer instead of racing the
// application-level check.
type Vote struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PollID           uint            `gorm:"not null;uniqueIndex:idx_votes_poll_identity" json:"poll_id"`
	IdentityKey      string          `gorm:"size:255;not null;uniqueIndex:idx_votes_poll_identity" json:"-"`
	ParticipantEmail string          `gorm:"size:255" json:"participant_email,omitempty"`
	ParticipantName  string          `gorm:"size:80" json:"participant_name,omitempty"`
	Comment          string          `gorm:"size:280" json:"comment,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Selections       []VoteSelection `gorm:"foreignKey:VoteID" json:"selections,omitempty"`
}

// VoteSelection links a vote to one selected slot. Single-response polls get
// exactly one row, multiple-response polls one row per checked slot.
type VoteSelection struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	VoteID uint `gorm:"not null;index" json:"vote_id"`
	SlotID uint `gorm:"not null" json:"slot_id"`
}

// DisplayName is what result views show for this participant.
func (v *Vote) DisplayName() string {
	if v.ParticipantName != "" {
		return v.ParticipantName
	}
	return v.ParticipantEmail
}

// SelectedSlotIDs returns the selected slots as a set for template lookups.
func (v *Vote) SelectedSlotIDs() map[uint]bool {
	selected := make(map[uint]bool, len(v.Selections))
	for _, s := range v.Selections {
		selected[s.SlotID] = true
	}
	return selected
}
