package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/adilinfo14/sondage/internal/db"
	"github.com/adilinfo14/sondage/internal/models"
	"github.com/adilinfo14/sondage/internal/services"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestEnvironment wires the handlers against an in-memory SQLite
// database, with stub templates so assertions can target the injected
// values. CSRF protection is applied in main, not here; it has its own
// tests in the middleware package.
func SetupTestEnvironment(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db.DB = conn
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("sondage_session", store))
	r.HTMLRender = testTemplates()

	pollHandler := NewPollHandler()
	voteHandler := NewVoteHandler()
	weatherHandler := NewWeatherHandler()

	r.GET("/", pollHandler.Home)
	r.POST("/create", pollHandler.Create)
	r.GET("/poll/:token", pollHandler.View)
	r.POST("/poll/:token/vote", voteHandler.Submit)
	r.GET("/poll/:token/vote-status", voteHandler.Status)
	r.POST("/poll/:token/admin-login", pollHandler.AdminLogin)
	r.POST("/poll/:token/admin-logout", pollHandler.AdminLogout)
	r.GET("/weather", weatherHandler.Index)
	r.GET("/api/suggest", weatherHandler.Suggest)
	r.GET("/api/weather", weatherHandler.Weather)

	return r
}

func testTemplates() multitemplate.Render {
	r := multitemplate.New()
	r.AddFromString("home.html", `home`)
	r.AddFromString("poll.html", `poll:{{.Poll.Title}}|error:{{.Error}}|admin:{{.AdminMode}}|votes:{{len .Votes}}`)
	r.AddFromString("weather.html", `weather`)
	r.AddFromString("error.html", `error:{{.Error}}`)
	return r
}

// createTestPoll persists a poll directly through the service layer.
func createTestPoll(t *testing.T, responseMode string) *models.Poll {
	t.Helper()
	poll, err := services.NewPollService().Create(services.CreatePollInput{
		Title:         "Réunion de projet",
		PollType:      models.PollTypeMeeting,
		ResponseMode:  responseMode,
		OrganizerCode: "code-secret-123",
		SlotLabels:    []string{"Lundi 9h", "Mardi 14h"},
	})
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}
