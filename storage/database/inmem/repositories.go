package inmemdb

import (
	"context"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
)

// Groups

type groupRepository struct {
	db *groupTable
}

var _ database.GroupRepository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db.group}
}

func (repo *groupRepository) SaveGroup(_ context.Context, grp progress.Group) (progress.Group, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if grp.ID == "" {
		grp.ID = database.NewID()
	}
	repo.db.table[grp.ID] = grp
	return grp, nil
}

func (repo *groupRepository) GroupNames(_ context.Context, ids ...string) (map[string]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if grp, ok := repo.db.table[id]; ok {
			names[id] = grp.Name
		}
	}
	return names, nil
}

// Recipients

type recipientRepository struct {
	db *recipientTable
}

var _ database.RecipientRepository = (*recipientRepository)(nil)

func NewRecipientRepository(db *DB) *recipientRepository {
	return &recipientRepository{db: db.recipient}
}

func (repo *recipientRepository) SaveRecipient(_ context.Context, rcp progress.Recipient) (progress.Recipient, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if rcp.ID == "" {
		rcp.ID = database.NewID()
	}
	if _, ok := repo.db.table[rcp.ID]; !ok {
		repo.db.order = append(repo.db.order, rcp.ID)
	}
	rcp.Groups = cloneStrings(rcp.Groups)
	repo.db.table[rcp.ID] = rcp
	return rcp, nil
}

func (repo *recipientRepository) Recipients(_ context.Context) ([]progress.Recipient, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recipients := make([]progress.Recipient, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		rcp := repo.db.table[id]
		rcp.Groups = cloneStrings(rcp.Groups)
		recipients = append(recipients, rcp)
	}
	return recipients, nil
}

// Items

type itemRepository struct {
	db *itemTable
}

var _ database.ItemRepository = (*itemRepository)(nil)

func NewItemRepository(db *DB) *itemRepository {
	return &itemRepository{db: db.item}
}

func (repo *itemRepository) clone(it progress.Item) progress.Item {
	it.Groups = cloneStrings(it.Groups)
	it.Children = cloneStrings(it.Children)
	return it
}

func (repo *itemRepository) SaveItem(_ context.Context, it progress.Item) (progress.Item, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if it.ID == "" {
		it.ID = database.NewID()
	}
	if _, ok := repo.db.table[it.ID]; !ok {
		repo.db.order = append(repo.db.order, it.ID)
	}
	it = repo.clone(it)
	repo.db.table[it.ID] = it
	return repo.clone(it), nil
}

func (repo *itemRepository) Items(_ context.Context) ([]progress.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]progress.Item, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		items = append(items, repo.clone(repo.db.table[id]))
	}
	return items, nil
}

func (repo *itemRepository) ItemsByID(_ context.Context, ids ...string) ([]progress.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]progress.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := repo.db.table[id]; ok {
			items = append(items, repo.clone(it))
		}
	}
	return items, nil
}

func (repo *itemRepository) Item(_ context.Context, id string) (progress.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if it, ok := repo.db.table[id]; ok {
		return repo.clone(it), nil
	}
	return progress.Item{}, progress.ErrItemNotFound
}

// Records

type recordRepository struct {
	db *recordTable
}

var _ database.RecordRepository = (*recordRepository)(nil)

func NewRecordRepository(db *DB) *recordRepository {
	return &recordRepository{db: db.record}
}

// SaveRecord appends the record; lookups resolve to the most recent one per (recipient, item).
func (repo *recordRepository) SaveRecord(_ context.Context, rec progress.CompletionRecord) (progress.CompletionRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec = database.PrepareRecord(rec)
	repo.db.rows = append(repo.db.rows, rec)
	return rec, nil
}

func (repo *recordRepository) Record(_ context.Context, recipientID, itemID string) (progress.CompletionRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var matches []progress.CompletionRecord
	for _, rec := range repo.db.rows {
		if rec.RecipientID == recipientID && rec.ItemID == itemID {
			matches = append(matches, rec)
		}
	}
	if rec, ok := progress.NewRecordIndex(matches).Lookup(recipientID, itemID); ok {
		return rec, nil
	}
	return progress.CompletionRecord{}, progress.ErrRecordNotFound
}

func (repo *recordRepository) RecordsForItems(_ context.Context, itemIDs ...string) ([]progress.CompletionRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	records := make([]progress.CompletionRecord, 0)
	for _, rec := range repo.db.rows {
		if _, ok := wanted[rec.ItemID]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}
