package models

import (
	"time"
)

// Poll types mirror the two flavors of the product: scheduling a meeting
// over time slots, or collecting opinions over free-form choices.
const (
	PollTypeMeeting = "meeting"
	PollTypeOpinion = "opinion"
)

// Response modes control how many slots a single vote may select.
const (
	ResponseModeSingle   = "single"
	ResponseModeMultiple = "multiple"
)

// Creation limits, enforced at the form boundary.
const (
	MaxTitleLen       = 120
	MaxDescriptionLen = 600
	MaxCreatorNameLen = 80
	MaxSlotLabelLen   = 120
	MaxCommentLen     = 280
	MinSlots          = 2
	MaxSlots          = 30
	MinOrganizerCode  = 8
)

type Poll struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Token             string     `gorm:"uniqueIndex;size:16;not null" json:"token"`
	Title             string     `gorm:"size:120;not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	CreatorName       string     `gorm:"size:80" json:"creator_name"`
	PollType          string     `gorm:"size:16;not null;default:meeting" json:"poll_type"`
	ResponseMode      string     `gorm:"size:16;not null;default:single" json:"response_mode"`
	DeadlineAt        *time.Time `json:"deadline_at,omitempty"`
	OrganizerCodeHash string     `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	Slots             []Slot     `gorm:"foreignKey:PollID" json:"slots,omitempty"`
}

// Slot is one votable entry of a poll. Insertion order is preserved via
// Position; duplicate labels are allowed and stay distinct rows.
type Slot struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PollID   uint   `gorm:"not null;index" json:"poll_id"`
	Label    string `gorm:"size:120;not null" json:"label"`
	Position int    `gorm:"not null" json:"position"`
}

// IsClosed reports whether the poll deadline has passed. Polls without a
// deadline never close.
func (p *Poll) IsClosed() bool {
	return p.DeadlineAt != nil && time.Now().After(*p.DeadlineAt)
}

// SingleResponse reports whether a vote must select exactly one slot.
func (p *Poll) SingleResponse() bool {
	return p.ResponseMode != ResponseModeMultiple
}
