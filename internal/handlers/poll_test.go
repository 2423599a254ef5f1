package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/adilinfo14/sondage/internal/db"
	"github.com/adilinfo14/sondage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePollFlow(t *testing.T) {
	r := SetupTestEnvironment(t)

	w := postForm(r, "/create", url.Values{
		"title":          {"Réunion de rentrée"},
		"creator_name":   {"Alice"},
		"poll_type":      {"meeting"},
		"response_mode":  {"single"},
		"slots":          {"Lundi 9h\nMardi 14h\n\nJeudi 10h"},
		"organizer_code": {"code-secret-123"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/poll/"), "unexpected redirect: %s", location)

	var poll models.Poll
	require.NoError(t, db.DB.Preload("Slots").First(&poll).Error)
	assert.Equal(t, "Réunion de rentrée", poll.Title)
	assert.Len(t, poll.Slots, 3) // blank lines are skipped
	assert.Equal(t, "/poll/"+poll.Token, location)
}

func TestCreatePollValidation(t *testing.T) {
	r := SetupTestEnvironment(t)

	cases := []struct {
		name string
		form url.Values
	}{
		{
			name: "missing title",
			form: url.Values{
				"slots":          {"A\nB"},
				"organizer_code": {"code-secret-123"},
			},
		},
		{
			name: "not enough slots",
			form: url.Values{
				"title":          {"Un sondage"},
				"slots":          {"Seul créneau"},
				"organizer_code": {"code-secret-123"},
			},
		},
		{
			name: "too many slots",
			form: url.Values{
				"title":          {"Un sondage"},
				"slots":          {strings.Repeat("créneau\n", models.MaxSlots+1)},
				"organizer_code": {"code-secret-123"},
			},
		},
		{
			name: "organizer code too short",
			form: url.Values{
				"title":          {"Un sondage"},
				"slots":          {"A\nB"},
				"organizer_code": {"court"},
			},
		},
		{
			name: "invalid deadline",
			form: url.Values{
				"title":          {"Un sondage"},
				"slots":          {"A\nB"},
				"organizer_code": {"code-secret-123"},
				"deadline_at":    {"demain soir"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postForm(r, "/create", tc.form)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
		})
	}

	// None of the rejected forms created anything.
	var count int64
	require.NoError(t, db.DB.Model(&models.Poll{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestViewPoll(t *testing.T) {
	r := SetupTestEnvironment(t)
	poll := createTestPoll(t, models.ResponseModeSingle)

	w := get(r, "/poll/"+poll.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "poll:Réunion de projet")
	assert.Contains(t, w.Body.String(), "admin:false")

	// Unknown token bounces home with a flash.
	w = get(r, "/poll/inconnu")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAdminLoginFlow(t *testing.T) {
	r := SetupTestEnvironment(t)
	poll := createTestPoll(t, models.ResponseModeSingle)
	loginPath := fmt.Sprintf("/poll/%s/admin-login", poll.Token)

	// Wrong code: back to the poll page, still locked.
	w := postForm(r, loginPath, url.Values{"organizer_code": {"mauvais-code"}})
	assert.Equal(t, http.StatusFound, w.Code)

	// Right code: session cookie now carries organizer mode.
	w = postForm(r, loginPath, url.Values{"organizer_code": {"code-secret-123"}})
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = get(r, "/poll/"+poll.Token, cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin:true")
}

func TestSuggestShortQuery(t *testing.T) {
	r := SetupTestEnvironment(t)

	w := get(r, "/api/suggest?q=a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestWeatherMissingParams(t *testing.T) {
	r := SetupTestEnvironment(t)

	w := get(r, "/api/weather")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
