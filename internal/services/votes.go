package services

import (
	"errors"
	"strings"

	"github.com/adilinfo14/sondage/internal/db"
	"github.com/adilinfo14/sondage/internal/models"

	"gorm.io/gorm"
)

// VoteService coordinates vote submission and duplicate detection. The
// duplicate check is not a separate read-then-write: Submit always attempts
// the insert and lets the (poll_id, identity_key) unique index arbitrate, so
// two concurrent submissions under the same identity can never both land.
type VoteService struct{}

func NewVoteService() *VoteService {
	return &VoteService{}
}

// Submission carries the raw form inputs of one vote.
type Submission struct {
	Email   string
	Name    string
	SlotIDs []uint
	Comment string
	Replace bool
}

// Exists answers whether a vote is already recorded for the given identity
// key on this poll. Pure read, backs both the server-side guard and the
// client-polled status endpoint.
func (s *VoteService) Exists(pollID uint, identityKey string) (bool, error) {
	var count int64
	err := db.DB.Model(&models.Vote{}).
		Where("poll_id = ? AND identity_key = ?", pollID, identityKey).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Submit validates and records a vote. An existing vote under the same
// identity is rejected with ErrDuplicateVote unless sub.Replace is set, in
// which case it is overwritten in place (same row, refreshed timestamp).
func (s *VoteService) Submit(poll *models.Poll, sub Submission) (*models.Vote, error) {
	if poll.IsClosed() {
		return nil, ErrPollClosed
	}

	slotIDs, err := s.validateSelection(poll, sub.SlotIDs)
	if err != nil {
		return nil, err
	}

	identityKey, err := NormalizeIdentity(sub.Email, sub.Name)
	if err != nil {
		return nil, err
	}

	vote := &models.Vote{
		PollID:           poll.ID,
		IdentityKey:      identityKey,
		ParticipantEmail: strings.TrimSpace(sub.Email),
		ParticipantName:  strings.TrimSpace(sub.Name),
		Comment:          strings.TrimSpace(sub.Comment),
	}

	// Two attempts at most: insert, and if the unique index reports a
	// duplicate while replace is requested, overwrite the winner. The
	// second loop round only runs if that row vanished in between.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.insert(vote, slotIDs)
		if err == nil {
			return vote, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if !sub.Replace {
			return nil, ErrDuplicateVote
		}

		updated, uerr := s.overwrite(poll.ID, identityKey, vote, slotIDs)
		if uerr == nil {
			return updated, nil
		}
		if !errors.Is(uerr, gorm.ErrRecordNotFound) {
			return nil, uerr
		}
	}
	return nil, ErrDuplicateVote
}

// validateSelection checks the selected slots against the poll: non-empty,
// exactly one for single-response polls, and every ID must belong to the
// poll. Duplicate selections of the same slot collapse to one.
func (s *VoteService) validateSelection(poll *models.Poll, slotIDs []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(slotIDs))
	unique := make([]uint, 0, len(slotIDs))
	for _, id := range slotIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	if len(unique) == 0 {
		return nil, ErrInvalidSelection
	}
	if poll.SingleResponse() && len(unique) != 1 {
		return nil, ErrInvalidSelection
	}

	var known []uint
	if err := db.DB.Model(&models.Slot{}).Where("poll_id = ?", poll.ID).Pluck("id", &known).Error; err != nil {
		return nil, err
	}
	knownSet := make(map[uint]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}
	for _, id := range unique {
		if !knownSet[id] {
			return nil, ErrInvalidSelection
		}
	}
	return unique, nil
}

func (s *VoteService) insert(vote *models.Vote, slotIDs []uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		selections := selectionsFor(vote.ID, slotIDs)
		if err := tx.Create(&selections).Error; err != nil {
			return err
		}
		vote.Selections = selections
		return nil
	})
}

// overwrite replaces the selections and fields of the existing vote row for
// this identity, keeping its row identity.
func (s *VoteService) overwrite(pollID uint, identityKey string, incoming *models.Vote, slotIDs []uint) (*models.Vote, error) {
	var existing models.Vote
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ? AND identity_key = ?", pollID, identityKey).First(&existing).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"participant_email": incoming.ParticipantEmail,
			"participant_name":  incoming.ParticipantName,
			"comment":           incoming.Comment,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("vote_id = ?", existing.ID).Delete(&models.VoteSelection{}).Error; err != nil {
			return err
		}
		selections := selectionsFor(existing.ID, slotIDs)
		if err := tx.Create(&selections).Error; err != nil {
			return err
		}
		existing.Selections = selections
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func selectionsFor(voteID uint, slotIDs []uint) []models.VoteSelection {
	selections := make([]models.VoteSelection, len(slotIDs))
	for i, id := range slotIDs {
		selections[i] = models.VoteSelection{VoteID: voteID, SlotID: id}
	}
	return selections
}

// VotesForPoll returns every vote of a poll with selections preloaded,
// ordered by participant name for the organizer matrix.
func (s *VoteService) VotesForPoll(pollID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := db.DB.Preload("Selections").
		Where("poll_id = ?", pollID).
		Order("participant_name ASC, id ASC").
		Find(&votes).Error
	return votes, err
}
