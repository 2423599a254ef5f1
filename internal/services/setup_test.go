package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/adilinfo14/sondage/internal/db"
	"github.com/adilinfo14/sondage/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global db handle at a fresh in-memory SQLite
// database. TranslateError matches production so duplicate-key detection
// behaves the same way.
func setupTestDB(t *testing.T) {
	t.Helper()
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
	// A single connection keeps the shared-cache database alive and
	// serializes writers, so concurrent tests hit the unique index rather
	// than SQLite lock errors.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db.DB = conn
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
}

// createTestPoll persists a poll through the real service.
func createTestPoll(t *testing.T, responseMode string, deadline *time.Time, labels ...string) *models.Poll {
	t.Helper()
	if len(labels) == 0 {
		labels = []string{"Lundi 9h", "Mardi 14h"}
	}

	poll, err := NewPollService().Create(CreatePollInput{
		Title:         "Réunion d'équipe",
		CreatorName:   "Alice",
		PollType:      models.PollTypeMeeting,
		ResponseMode:  responseMode,
		DeadlineAt:    deadline,
		OrganizerCode: "code-secret-123",
		SlotLabels:    labels,
	})
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}
