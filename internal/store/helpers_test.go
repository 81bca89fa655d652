package store

import (
	"os"
	"testing"

	"github.com/beacon-dev/beacon/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tester struct {
	db         *gorm.DB
	dbFileName string
	incidents  *IncidentStore
	bindings   *BindingRegistry
}

func setupTestEnv(tester *tester, t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(tester.dbFileName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("%v\n", err)
	}

	err = db.AutoMigrate(
		&models.StatusPage{},
		&models.ComponentBinding{},
		&models.Incident{},
		&models.IncidentUpdate{},
	)

	if err != nil {
		t.Fatalf("%v\n", err)
	}

	tester.db = db
	tester.incidents = NewIncidentStore(db)
	tester.bindings = NewBindingRegistry(db)
}

func cleanup(tester *tester, t *testing.T) {
	t.Helper()

	os.Remove(tester.dbFileName)
}

func createTestPage(tester *tester, t *testing.T, slug string) *models.StatusPage {
	t.Helper()

	page := &models.StatusPage{
		OwnerID:   1,
		Name:      "Test Page",
		Slug:      slug,
		Published: true,
	}

	if err := tester.db.Create(page).Error; err != nil {
		t.Fatalf("Expected no error creating page, got %v", err)
	}

	return page
}
