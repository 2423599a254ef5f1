package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adilinfo14/sondage/internal/models"
	"github.com/adilinfo14/sondage/internal/services"
	"github.com/adilinfo14/sondage/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	polls *services.PollService
	votes *services.VoteService
}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{
		polls: services.NewPollService(),
		votes: services.NewVoteService(),
	}
}

// Status is the vote-status oracle endpoint polled by the browser before
// submission. It only ever reads; the authoritative duplicate decision is
// re-made in Submit.
func (h *VoteHandler) Status(c *gin.Context) {
	poll, err := h.polls.GetByToken(c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	// Email wins when both parameters are supplied.
	identityKey, err := services.NormalizeIdentity(c.Query("email"), c.Query("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing identity"})
		return
	}

	exists, err := h.votes.Exists(poll.ID, identityKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// Submit records a vote from the poll page form. Validation failures
// re-render the poll page with an inline error and the form values echoed
// back; success flashes and redirects.
func (h *VoteHandler) Submit(c *gin.Context) {
	poll, err := h.polls.GetByToken(c.Param("token"))
	if err != nil {
		Flash(c, "error", "Sondage introuvable.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	sub := services.Submission{
		Email:   truncate(c.PostForm("participant_email"), 255),
		Name:    truncate(c.PostForm("participant_name"), models.MaxCreatorNameLen),
		Comment: truncate(c.PostForm("comment"), models.MaxCommentLen),
		Replace: isChecked(c.PostForm("replace_existing_vote")),
	}

	badSelection := false
	for _, raw := range c.PostFormArray("selected_options") {
		id, ok := utils.StringToUint(strings.TrimSpace(raw))
		if !ok {
			badSelection = true
			break
		}
		sub.SlotIDs = append(sub.SlotIDs, id)
	}

	if badSelection {
		h.renderSubmitError(c, poll, sub, "Sélection invalide.")
		return
	}

	_, err = h.votes.Submit(poll, sub)
	if err == nil {
		Flash(c, "success", "Ton vote a été enregistré ✅")
		c.Redirect(http.StatusFound, "/poll/"+poll.Token)
		return
	}

	switch {
	case errors.Is(err, services.ErrPollClosed):
		h.renderSubmitError(c, poll, sub, "Le sondage est clôturé (date limite dépassée).")
	case errors.Is(err, services.ErrInvalidSelection):
		if poll.SingleResponse() {
			h.renderSubmitError(c, poll, sub, "Choisis exactement un créneau.")
		} else {
			h.renderSubmitError(c, poll, sub, "Choisis au moins un créneau.")
		}
	case errors.Is(err, services.ErrMissingIdentity):
		h.renderSubmitError(c, poll, sub, "Ton email ou ton nom est obligatoire pour voter.")
	case errors.Is(err, services.ErrDuplicateVote):
		h.renderSubmitError(c, poll, sub,
			"Un vote existe déjà sous cette identité. Coche « remplacer mon vote » pour le modifier.")
	default:
		RenderError(c, http.StatusInternalServerError, "Impossible d'enregistrer le vote.")
	}
}

func (h *VoteHandler) renderSubmitError(c *gin.Context, poll *models.Poll, sub services.Submission, message string) {
	pollHandler := &PollHandler{polls: h.polls, votes: h.votes}
	data, err := pollHandler.pollPageData(c, poll)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Impossible de charger le sondage.")
		return
	}

	selected := make(map[uint]bool, len(sub.SlotIDs))
	for _, id := range sub.SlotIDs {
		selected[id] = true
	}

	data["Error"] = message
	data["FormEmail"] = strings.TrimSpace(sub.Email)
	data["FormName"] = strings.TrimSpace(sub.Name)
	data["FormComment"] = strings.TrimSpace(sub.Comment)
	data["FormReplace"] = sub.Replace
	data["FormSelected"] = selected

	Render(c, http.StatusOK, "poll.html", data)
}

func isChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
