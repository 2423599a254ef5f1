package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/adilinfo14/sondage/internal/models"
	"github.com/adilinfo14/sondage/internal/services"
	"github.com/adilinfo14/sondage/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	polls *services.PollService
	votes *services.VoteService
}

func NewPollHandler() *PollHandler {
	return &PollHandler{
		polls: services.NewPollService(),
		votes: services.NewVoteService(),
	}
}

// Home shows the landing page with the poll creation form.
func (h *PollHandler) Home(c *gin.Context) {
	Render(c, http.StatusOK, "home.html", nil)
}

// Create handles the poll creation form. Validation failures flash an error
// and bounce back to the form, like every other mutating page.
func (h *PollHandler) Create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	creatorName := strings.TrimSpace(c.PostForm("creator_name"))
	pollType := strings.ToLower(strings.TrimSpace(c.PostForm("poll_type")))
	responseMode := strings.ToLower(strings.TrimSpace(c.PostForm("response_mode")))
	deadlineInput := strings.TrimSpace(c.PostForm("deadline_at"))
	organizerCode := strings.TrimSpace(c.PostForm("organizer_code"))
	rawSlots := c.PostForm("slots")

	var slotLabels []string
	for _, line := range strings.Split(rawSlots, "\n") {
		if label := strings.TrimSpace(line); label != "" {
			slotLabels = append(slotLabels, truncate(label, models.MaxSlotLabelLen))
		}
	}

	if pollType != models.PollTypeMeeting && pollType != models.PollTypeOpinion {
		pollType = models.PollTypeMeeting
	}
	if responseMode != models.ResponseModeSingle && responseMode != models.ResponseModeMultiple {
		responseMode = models.ResponseModeSingle
	}

	deadlineAt, err := h.polls.ParseDeadline(deadlineInput)
	if deadlineInput != "" && err != nil {
		Flash(c, "error", "Date limite invalide.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if title == "" {
		Flash(c, "error", "Le titre du sondage est obligatoire.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if len(slotLabels) < models.MinSlots {
		Flash(c, "error", "Ajoute au moins 2 créneaux pour créer le sondage.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if len(slotLabels) > models.MaxSlots {
		Flash(c, "error", "Maximum 30 créneaux/choix par sondage.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	if len(organizerCode) < models.MinOrganizerCode {
		Flash(c, "error", "Le code organisateur doit contenir au moins 8 caractères.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	poll, err := h.polls.Create(services.CreatePollInput{
		Title:         truncate(title, models.MaxTitleLen),
		Description:   truncate(description, models.MaxDescriptionLen),
		CreatorName:   truncate(creatorName, models.MaxCreatorNameLen),
		PollType:      pollType,
		ResponseMode:  responseMode,
		DeadlineAt:    deadlineAt,
		OrganizerCode: organizerCode,
		SlotLabels:    slotLabels,
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Impossible de créer le sondage.")
		return
	}

	session := sessions.Default(c)
	session.Set(adminSessionKey(poll.ID), true)
	session.Save()

	Flash(c, "success", "Sondage créé avec succès. Partage le lien !")
	c.Redirect(http.StatusFound, "/poll/"+poll.Token)
}

// View renders the poll page: vote form, aggregated results and, in
// organizer mode, the participant matrix.
func (h *PollHandler) View(c *gin.Context) {
	poll, err := h.polls.GetByToken(c.Param("token"))
	if err != nil {
		Flash(c, "error", "Sondage introuvable.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	data, err := h.pollPageData(c, poll)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Impossible de charger le sondage.")
		return
	}
	Render(c, http.StatusOK, "poll.html", data)
}

// AdminLogin unlocks organizer mode when the submitted code matches.
func (h *PollHandler) AdminLogin(c *gin.Context) {
	poll, err := h.polls.GetByToken(c.Param("token"))
	if err != nil {
		Flash(c, "error", "Sondage introuvable.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	code := strings.TrimSpace(c.PostForm("organizer_code"))
	if code == "" || poll.OrganizerCodeHash == "" || !utils.CheckPassword(poll.OrganizerCodeHash, code) {
		Flash(c, "error", "Code organisateur incorrect.")
		c.Redirect(http.StatusFound, "/poll/"+poll.Token)
		return
	}

	session := sessions.Default(c)
	session.Set(adminSessionKey(poll.ID), true)
	session.Save()

	Flash(c, "success", "Mode organisateur activé.")
	c.Redirect(http.StatusFound, "/poll/"+poll.Token)
}

// AdminLogout drops organizer mode for this poll.
func (h *PollHandler) AdminLogout(c *gin.Context) {
	poll, err := h.polls.GetByToken(c.Param("token"))
	if err != nil {
		Flash(c, "error", "Sondage introuvable.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	session := sessions.Default(c)
	session.Delete(adminSessionKey(poll.ID))
	session.Save()

	Flash(c, "success", "Mode organisateur désactivé.")
	c.Redirect(http.StatusFound, "/poll/"+poll.Token)
}

// pollPageData assembles everything poll.html needs. Shared with the vote
// handler so failed submissions re-render the same page with an inline
// error.
func (h *PollHandler) pollPageData(c *gin.Context, poll *models.Poll) (gin.H, error) {
	results, err := h.polls.Results(poll.ID)
	if err != nil {
		return nil, err
	}

	adminMode := isAdmin(c, poll.ID)

	var votes []models.Vote
	if adminMode {
		votes, err = h.votes.VotesForPoll(poll.ID)
		if err != nil {
			return nil, err
		}
	}

	return gin.H{
		"Poll":           poll,
		"Results":        results,
		"Recommendation": h.polls.Recommendation(results),
		"Votes":          votes,
		"AdminMode":      adminMode,
		"Closed":         poll.IsClosed(),
	}, nil
}

func adminSessionKey(pollID uint) string {
	return fmt.Sprintf("admin_poll_%d", pollID)
}

func isAdmin(c *gin.Context, pollID uint) bool {
	session := sessions.Default(c)
	admin, _ := session.Get(adminSessionKey(pollID)).(bool)
	return admin
}

// truncate caps a string at max runes, like the form fields' maxlength.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
