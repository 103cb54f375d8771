package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
	inmemdb "github.com/trezcool/coachreports/storage/database/inmem"
)

// SchoolFixtures is a small school: two classes, five learners and two lessons.
//
//	lesson "fractions" (class-a): resources "fractions-video", "fractions-quiz"
//	lesson "geometry" (everyone, inactive): resources "shapes-video"
//	lesson "draft" (nobody)
const SchoolFixtures = `
groups:
  - {id: class-a, name: Class A}
  - {id: class-b, name: Class B}
recipients:
  - {id: amani, name: Amani, groups: [class-a]}
  - {id: baraka, name: Baraka, groups: [class-a]}
  - {id: chausiku, name: Chausiku, groups: [class-a, class-b]}
  - {id: dalila, name: Dalila, groups: [class-b]}
  - {id: eshe, name: Eshe}
items:
  - {id: fractions, title: Fractions, kind: lesson, active: true, groups: [class-a], children: [fractions-video, fractions-quiz]}
  - {id: geometry, title: Geometry, kind: lesson, active: false, everyone: true, children: [shapes-video]}
  - {id: draft, title: Draft, kind: lesson, active: true}
  - {id: fractions-video, title: Fractions video, kind: resource, active: true}
  - {id: fractions-quiz, title: Fractions quiz, kind: exercise, active: true}
  - {id: shapes-video, title: Shapes video, kind: resource, active: false}
records:
  - {recipient: amani, item: fractions-video, status: completed, time_spent: 10m, updated_at: 2021-01-10T10:00:00Z}
  - {recipient: amani, item: fractions-quiz, status: completed, time_spent: 20m, updated_at: 2021-01-10T11:00:00Z}
  - {recipient: baraka, item: fractions-video, status: in_progress, time_spent: 4m, updated_at: 2021-01-10T10:00:00Z}
  - {recipient: baraka, item: fractions-quiz, status: in_progress, updated_at: 2021-01-10T10:00:00Z}
  - {recipient: baraka, item: fractions-quiz, status: needs_help, time_spent: 6m, updated_at: 2021-01-11T10:00:00Z}
  - {recipient: dalila, item: shapes-video, status: completed, time_spent: 8m, updated_at: 2021-01-12T10:00:00Z}
  - {recipient: ghost, item: fractions-video, status: completed, time_spent: 1h, updated_at: 2021-01-12T10:00:00Z}
`

// NewMemoryRepositories returns fresh in-memory repositories.
func NewMemoryRepositories(t *testing.T) database.Repositories {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return inmemdb.NewRepositories(db)
}

// LoadFixtures loads YAML fixtures (eg. SchoolFixtures) into `repos`.
func LoadFixtures(t *testing.T, repos database.Repositories, fixtures string) database.Fixtures {
	fx, err := repos.LoadFixtures(context.Background(), strings.NewReader(fixtures))
	if err != nil {
		t.Fatalf("LoadFixtures() failed: %v", err)
	}
	return fx
}

func CreateRecord(
	t *testing.T,
	repo database.RecordRepository,
	recipientID, itemID string,
	status progress.Status,
	timeSpent time.Duration,
	updatedAt ...time.Time,
) progress.CompletionRecord {
	rec := progress.CompletionRecord{
		RecipientID: recipientID,
		ItemID:      itemID,
		Status:      status,
	}
	if timeSpent > 0 {
		rec.TimeSpent = &timeSpent
	}
	if len(updatedAt) > 0 {
		rec.UpdatedAt = updatedAt[0]
	}
	rec, err := repo.SaveRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}
