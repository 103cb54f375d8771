package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
)

// Groups

type groupRepository struct {
	db *sqlx.DB
}

var _ database.GroupRepository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) SaveGroup(ctx context.Context, grp progress.Group) (progress.Group, error) {
	if grp.ID == "" {
		grp.ID = database.NewID()
	}
	const q = `
	INSERT INTO learner_group (id, name) VALUES (:id, :name)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	if _, err := repo.db.NamedExecContext(ctx, q, groupRow{ID: grp.ID, Name: grp.Name}); err != nil {
		return progress.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo *groupRepository) GroupNames(ctx context.Context, ids ...string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, name FROM learner_group WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying group names")
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// Recipients

type recipientRepository struct {
	db *sqlx.DB
}

var _ database.RecipientRepository = (*recipientRepository)(nil)

func NewRecipientRepository(db *sqlx.DB) *recipientRepository {
	return &recipientRepository{db: db}
}

func (repo *recipientRepository) SaveRecipient(ctx context.Context, rcp progress.Recipient) (progress.Recipient, error) {
	if rcp.ID == "" {
		rcp.ID = database.NewID()
	}
	const q = `
	INSERT INTO recipient (id, name, groups) VALUES (:id, :name, :groups)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, groups = EXCLUDED.groups`

	row := recipientRow{ID: rcp.ID, Name: rcp.Name, Groups: nonNil(rcp.Groups)}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return progress.Recipient{}, errors.Wrap(err, "inserting recipient")
	}
	return rcp, nil
}

func (repo *recipientRepository) Recipients(ctx context.Context) ([]progress.Recipient, error) {
	var rows []recipientRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, name, groups FROM recipient ORDER BY position`); err != nil {
		return nil, errors.Wrap(err, "querying recipients")
	}
	recipients := make([]progress.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, row.toRecipient())
	}
	return recipients, nil
}

// Items

const itemColumns = `id, title, kind, active, everyone, groups, children`

type itemRepository struct {
	db *sqlx.DB
}

var _ database.ItemRepository = (*itemRepository)(nil)

func NewItemRepository(db *sqlx.DB) *itemRepository {
	return &itemRepository{db: db}
}

func (repo *itemRepository) SaveItem(ctx context.Context, it progress.Item) (progress.Item, error) {
	if it.ID == "" {
		it.ID = database.NewID()
	}
	const q = `
	INSERT INTO item (id, title, kind, active, everyone, groups, children)
	VALUES (:id, :title, :kind, :active, :everyone, :groups, :children)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title, kind = EXCLUDED.kind, active = EXCLUDED.active,
		everyone = EXCLUDED.everyone, groups = EXCLUDED.groups, children = EXCLUDED.children`

	if _, err := repo.db.NamedExecContext(ctx, q, newItemRow(it)); err != nil {
		return progress.Item{}, errors.Wrap(err, "inserting item")
	}
	return it, nil
}

func (repo *itemRepository) Items(ctx context.Context) ([]progress.Item, error) {
	var rows []itemRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM item ORDER BY position`); err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	items := make([]progress.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

func (repo *itemRepository) ItemsByID(ctx context.Context, ids ...string) ([]progress.Item, error) {
	items := make([]progress.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	var rows []itemRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM item WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying items")
	}

	byID := make(map[string]itemRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			items = append(items, row.toItem())
		}
	}
	return items, nil
}

func (repo *itemRepository) Item(ctx context.Context, id string) (progress.Item, error) {
	var row itemRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+itemColumns+` FROM item WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return progress.Item{}, progress.ErrItemNotFound
		}
		return progress.Item{}, errors.Wrap(err, "querying item")
	}
	return row.toItem(), nil
}

// Records

const recordColumns = `recipient_id, item_id, status, time_spent, updated_at`

type recordRepository struct {
	db *sqlx.DB
}

var _ database.RecordRepository = (*recordRepository)(nil)

func NewRecordRepository(db *sqlx.DB) *recordRepository {
	return &recordRepository{db: db}
}

// SaveRecord appends the record; lookups resolve to the most recent one per (recipient, item).
func (repo *recordRepository) SaveRecord(ctx context.Context, rec progress.CompletionRecord) (progress.CompletionRecord, error) {
	rec = database.PrepareRecord(rec)
	const q = `
	INSERT INTO completion_record (recipient_id, item_id, status, time_spent, updated_at)
	VALUES (:recipient_id, :item_id, :status, :time_spent, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, newRecordRow(rec)); err != nil {
		return progress.CompletionRecord{}, errors.Wrap(err, "inserting record")
	}
	return rec, nil
}

func (repo *recordRepository) Record(ctx context.Context, recipientID, itemID string) (progress.CompletionRecord, error) {
	const q = `
	SELECT ` + recordColumns + ` FROM completion_record
	WHERE recipient_id = $1 AND item_id = $2
	ORDER BY updated_at DESC, id DESC
	LIMIT 1`

	var row recordRow
	if err := repo.db.GetContext(ctx, &row, q, recipientID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return progress.CompletionRecord{}, progress.ErrRecordNotFound
		}
		return progress.CompletionRecord{}, errors.Wrap(err, "querying record")
	}
	return row.toRecord(), nil
}

func (repo *recordRepository) RecordsForItems(ctx context.Context, itemIDs ...string) ([]progress.CompletionRecord, error) {
	records := make([]progress.CompletionRecord, 0)
	if len(itemIDs) == 0 {
		return records, nil
	}
	var rows []recordRow
	q := `SELECT ` + recordColumns + ` FROM completion_record WHERE item_id = ANY($1) ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(itemIDs)); err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}
