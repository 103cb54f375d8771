package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
)

func NewRepositories(db *sqlx.DB) database.Repositories {
	return database.Repositories{
		Groups:     NewGroupRepository(db),
		Recipients: NewRecipientRepository(db),
		Items:      NewItemRepository(db),
		Records:    NewRecordRepository(db),
	}
}

// rows

type (
	groupRow struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}

	recipientRow struct {
		ID     string         `db:"id"`
		Name   string         `db:"name"`
		Groups pq.StringArray `db:"groups"`
	}

	itemRow struct {
		ID       string         `db:"id"`
		Title    string         `db:"title"`
		Kind     string         `db:"kind"`
		Active   bool           `db:"active"`
		Everyone bool           `db:"everyone"`
		Groups   pq.StringArray `db:"groups"`
		Children pq.StringArray `db:"children"`
	}

	recordRow struct {
		RecipientID string     `db:"recipient_id"`
		ItemID      string     `db:"item_id"`
		Status      string     `db:"status"`
		TimeSpent   null.Int64 `db:"time_spent"` // nanoseconds
		UpdatedAt   time.Time  `db:"updated_at"`
	}
)

func nonNil(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return s
}

func (row recipientRow) toRecipient() progress.Recipient {
	return progress.Recipient{ID: row.ID, Name: row.Name, Groups: row.Groups}
}

func newItemRow(it progress.Item) itemRow {
	return itemRow{
		ID:       it.ID,
		Title:    it.Title,
		Kind:     string(it.Kind),
		Active:   it.Active,
		Everyone: it.Everyone,
		Groups:   nonNil(it.Groups),
		Children: nonNil(it.Children),
	}
}

func (row itemRow) toItem() progress.Item {
	return progress.Item{
		ID:       row.ID,
		Title:    row.Title,
		Kind:     progress.Kind(row.Kind),
		Active:   row.Active,
		Everyone: row.Everyone,
		Groups:   row.Groups,
		Children: row.Children,
	}
}

func newRecordRow(rec progress.CompletionRecord) recordRow {
	row := recordRow{
		RecipientID: rec.RecipientID,
		ItemID:      rec.ItemID,
		Status:      string(rec.Status),
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.TimeSpent != nil {
		row.TimeSpent = null.Int64From(int64(*rec.TimeSpent))
	}
	return row
}

func (row recordRow) toRecord() progress.CompletionRecord {
	rec := progress.CompletionRecord{
		RecipientID: row.RecipientID,
		ItemID:      row.ItemID,
		Status:      progress.Status(row.Status),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.TimeSpent.Valid {
		spent := time.Duration(row.TimeSpent.Int64)
		rec.TimeSpent = &spent
	}
	return rec
}
