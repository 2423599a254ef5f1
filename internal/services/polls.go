package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/adilinfo14/sondage/internal/db"
	"github.com/adilinfo14/sondage/internal/models"
	"github.com/adilinfo14/sondage/internal/utils"

	"gorm.io/gorm"
)

// Deadline inputs come from an <input type="datetime-local"> field.
const deadlineLayout = "2006-01-02T15:04"

type PollService struct{}

func NewPollService() *PollService {
	return &PollService{}
}

// CreatePollInput is the validated form payload. Handlers trim and cap the
// fields before calling Create.
type CreatePollInput struct {
	Title         string
	Description   string
	CreatorName   string
	PollType      string
	ResponseMode  string
	DeadlineAt    *time.Time
	OrganizerCode string
	SlotLabels    []string
}

// Create persists the poll with its ordered slots and returns it with the
// share token set.
func (s *PollService) Create(input CreatePollInput) (*models.Poll, error) {
	hash, err := utils.HashPassword(input.OrganizerCode)
	if err != nil {
		return nil, err
	}

	poll := &models.Poll{
		Token:             GenerateToken(),
		Title:             input.Title,
		Description:       input.Description,
		CreatorName:       input.CreatorName,
		PollType:          input.PollType,
		ResponseMode:      input.ResponseMode,
		DeadlineAt:        input.DeadlineAt,
		OrganizerCodeHash: hash,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(poll).Error; err != nil {
			return err
		}
		slots := make([]models.Slot, len(input.SlotLabels))
		for i, label := range input.SlotLabels {
			slots[i] = models.Slot{PollID: poll.ID, Label: label, Position: i + 1}
		}
		if err := tx.Create(&slots).Error; err != nil {
			return err
		}
		poll.Slots = slots
		return nil
	})
	if err != nil {
		return nil, err
	}
	return poll, nil
}

// GetByToken loads a poll by its share token with slots in display order.
func (s *PollService) GetByToken(token string) (*models.Poll, error) {
	var poll models.Poll
	err := db.DB.Preload("Slots", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC, id ASC")
	}).Where("token = ?", token).First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// SlotResult is the aggregated selection count of one slot.
type SlotResult struct {
	SlotID   uint
	Label    string
	Position int
	Count    int64
}

// Results aggregates selection counts per slot, in display order.
func (s *PollService) Results(pollID uint) ([]SlotResult, error) {
	var results []SlotResult
	err := db.DB.Model(&models.Slot{}).
		Select("slots.id AS slot_id, slots.label, slots.position, COUNT(vote_selections.id) AS count").
		Joins("LEFT JOIN vote_selections ON vote_selections.slot_id = slots.id").
		Where("slots.poll_id = ?", pollID).
		Group("slots.id, slots.label, slots.position").
		Order("slots.position ASC, slots.id ASC").
		Scan(&results).Error
	return results, err
}

// Recommendation picks the best slot: highest count, earliest position on a
// tie. Nil when the poll has no slots.
func (s *PollService) Recommendation(results []SlotResult) *SlotResult {
	var best *SlotResult
	for i := range results {
		r := &results[i]
		if best == nil || r.Count > best.Count {
			best = r
		}
	}
	return best
}

// ParseDeadline parses the datetime-local form value. Empty means no
// deadline; a malformed value is reported so the form can re-render.
func (s *PollService) ParseDeadline(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(deadlineLayout, value, time.Local)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// GenerateToken returns a short URL-safe share token.
func GenerateToken() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
