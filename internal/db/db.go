package db

import (
	"log"
	"os"

	"github.com/adilinfo14/sondage/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=sondage port=5432 sslmode=disable TimeZone=Europe/Paris"
	}

	var err error
	// TranslateError maps driver unique-constraint failures to
	// gorm.ErrDuplicatedKey, which the vote coordinator relies on.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
}

// Migrate applies the schema. Split out of Init so tests can run it against
// an in-memory database.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Poll{},
		&models.Slot{},
		&models.Vote{},
		&models.VoteSelection{},
	)
}
