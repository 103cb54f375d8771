package boltdb

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
)

// Groups

type groupRepository struct {
	db *DB
}

var _ database.GroupRepository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) SaveGroup(_ context.Context, grp progress.Group) (progress.Group, error) {
	if grp.ID == "" {
		grp.ID = database.NewID()
	}
	err := repo.db.update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket(groupsBucket), grp.ID, grp)
	})
	if err != nil {
		return progress.Group{}, errors.Wrap(err, "saving group")
	}
	return grp, nil
}

func (repo *groupRepository) GroupNames(_ context.Context, ids ...string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	err := repo.db.view(func(tx *bbolt.Tx) error {
		b := tx.Bucket(groupsBucket)
		for _, id := range ids {
			grp, ok, err := get[progress.Group](b, id)
			if err != nil {
				return err
			}
			if ok {
				names[id] = grp.Name
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying group names")
	}
	return names, nil
}

// Recipients

type recipientRepository struct {
	db *DB
}

var _ database.RecipientRepository = (*recipientRepository)(nil)

func NewRecipientRepository(db *DB) *recipientRepository {
	return &recipientRepository{db: db}
}

func (repo *recipientRepository) SaveRecipient(_ context.Context, rcp progress.Recipient) (progress.Recipient, error) {
	if rcp.ID == "" {
		rcp.ID = database.NewID()
	}
	err := repo.db.update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket(recipientsBucket), rcp.ID, rcp)
	})
	if err != nil {
		return progress.Recipient{}, errors.Wrap(err, "saving recipient")
	}
	return rcp, nil
}

func (repo *recipientRepository) Recipients(_ context.Context) (recipients []progress.Recipient, err error) {
	err = repo.db.view(func(tx *bbolt.Tx) error {
		recipients, err = list[progress.Recipient](tx.Bucket(recipientsBucket))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying recipients")
	}
	return recipients, nil
}

// Items

type itemRepository struct {
	db *DB
}

var _ database.ItemRepository = (*itemRepository)(nil)

func NewItemRepository(db *DB) *itemRepository {
	return &itemRepository{db: db}
}

func (repo *itemRepository) SaveItem(_ context.Context, it progress.Item) (progress.Item, error) {
	if it.ID == "" {
		it.ID = database.NewID()
	}
	err := repo.db.update(func(tx *bbolt.Tx) error {
		return put(tx.Bucket(itemsBucket), it.ID, it)
	})
	if err != nil {
		return progress.Item{}, errors.Wrap(err, "saving item")
	}
	return it, nil
}

func (repo *itemRepository) Items(_ context.Context) (items []progress.Item, err error) {
	err = repo.db.view(func(tx *bbolt.Tx) error {
		items, err = list[progress.Item](tx.Bucket(itemsBucket))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	return items, nil
}

func (repo *itemRepository) ItemsByID(_ context.Context, ids ...string) ([]progress.Item, error) {
	items := make([]progress.Item, 0, len(ids))
	err := repo.db.view(func(tx *bbolt.Tx) error {
		b := tx.Bucket(itemsBucket)
		for _, id := range ids {
			it, ok, err := get[progress.Item](b, id)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, it)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	return items, nil
}

func (repo *itemRepository) Item(_ context.Context, id string) (it progress.Item, err error) {
	var found bool
	err = repo.db.view(func(tx *bbolt.Tx) error {
		it, found, err = get[progress.Item](tx.Bucket(itemsBucket), id)
		return err
	})
	if err != nil {
		return progress.Item{}, errors.Wrap(err, "querying item")
	}
	if !found {
		return progress.Item{}, progress.ErrItemNotFound
	}
	return it, nil
}

// Records

type recordRepository struct {
	db *DB
}

var _ database.RecordRepository = (*recordRepository)(nil)

func NewRecordRepository(db *DB) *recordRepository {
	return &recordRepository{db: db}
}

// SaveRecord appends the record; lookups resolve to the most recent one per (recipient, item).
func (repo *recordRepository) SaveRecord(_ context.Context, rec progress.CompletionRecord) (progress.CompletionRecord, error) {
	rec = database.PrepareRecord(rec)
	err := repo.db.update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(recordKey(rec.ItemID, rec.RecipientID, seq), data)
	})
	if err != nil {
		return progress.CompletionRecord{}, errors.Wrap(err, "saving record")
	}
	return rec, nil
}

// scan returns the records whose key starts with `prefix`, in insertion order.
func (repo *recordRepository) scan(tx *bbolt.Tx, prefix []byte, out []progress.CompletionRecord) ([]progress.CompletionRecord, error) {
	c := tx.Bucket(recordsBucket).Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		var rec progress.CompletionRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil, errors.Wrapf(err, "decoding record %q", k)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (repo *recordRepository) Record(_ context.Context, recipientID, itemID string) (progress.CompletionRecord, error) {
	var matches []progress.CompletionRecord
	err := repo.db.view(func(tx *bbolt.Tx) (err error) {
		matches, err = repo.scan(tx, recordPrefix(itemID, recipientID), nil)
		return err
	})
	if err != nil {
		return progress.CompletionRecord{}, errors.Wrap(err, "querying record")
	}
	if rec, ok := progress.NewRecordIndex(matches).Lookup(recipientID, itemID); ok {
		return rec, nil
	}
	return progress.CompletionRecord{}, progress.ErrRecordNotFound
}

func (repo *recordRepository) RecordsForItems(_ context.Context, itemIDs ...string) ([]progress.CompletionRecord, error) {
	records := make([]progress.CompletionRecord, 0)
	err := repo.db.view(func(tx *bbolt.Tx) (err error) {
		seen := make(map[string]struct{}, len(itemIDs))
		for _, id := range itemIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if records, err = repo.scan(tx, recordPrefix(id), records); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	return records, nil
}
