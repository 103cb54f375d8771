package boltdb

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/storage/database"
)

var (
	groupsBucket     = []byte("Groups")
	recipientsBucket = []byte("Recipients")
	itemsBucket      = []byte("Items")
	recordsBucket    = []byte("Records")

	buckets = [][]byte{groupsBucket, recipientsBucket, itemsBucket, recordsBucket}
)

// DB is a single-file bbolt store. Values are JSON encoded.
type DB struct {
	bolt *bbolt.DB
}

// Open opens (or creates) the database file at `path` and its buckets.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	bdb, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt database")
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "creating bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &DB{bolt: bdb}, nil
}

func (db *DB) Close() error {
	return db.bolt.Close()
}

func (db *DB) view(fn func(tx *bbolt.Tx) error) error {
	return checkOpen(db.bolt.View(fn))
}

func (db *DB) update(fn func(tx *bbolt.Tx) error) error {
	return checkOpen(db.bolt.Update(fn))
}

// checkOpen turns the use of a closed database into a core.shutdown error: nothing can be served anymore.
func checkOpen(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return core.NewShutdownError("bolt database closed")
	}
	return err
}

func NewRepositories(db *DB) database.Repositories {
	return database.Repositories{
		Groups:     NewGroupRepository(db),
		Recipients: NewRecipientRepository(db),
		Items:      NewItemRepository(db),
		Records:    NewRecordRepository(db),
	}
}

// entry wraps stored values with their insertion position.
type entry[T any] struct {
	Position uint64 `json:"position"`
	Value    T      `json:"value"`
}

// put saves `value` under `key`, keeping the position of an existing entry.
func put[T any](b *bbolt.Bucket, key string, value T) error {
	e := entry[T]{Value: value}
	if raw := b.Get([]byte(key)); raw != nil {
		var old entry[T]
		if err := json.Unmarshal(raw, &old); err != nil {
			return errors.Wrapf(err, "decoding %q", key)
		}
		e.Position = old.Position
	} else {
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.Position = seq
	}

	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return b.Put([]byte(key), data)
}

func get[T any](b *bbolt.Bucket, key string) (T, bool, error) {
	var e entry[T]
	raw := b.Get([]byte(key))
	if raw == nil {
		return e.Value, false, nil
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e.Value, false, errors.Wrapf(err, "decoding %q", key)
	}
	return e.Value, true, nil
}

// list returns every value of the bucket in insertion order.
func list[T any](b *bbolt.Bucket) ([]T, error) {
	var entries []entry[T]
	err := b.ForEach(func(k, v []byte) error {
		var e entry[T]
		if err := json.Unmarshal(v, &e); err != nil {
			return errors.Wrapf(err, "decoding %q", k)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })

	values := make([]T, 0, len(entries))
	for _, e := range entries {
		values = append(values, e.Value)
	}
	return values, nil
}

// recordKey is "<item>\x00<recipient>\x00<seq>" so records of an item (or of a recipient on an item)
// share a prefix.
func recordKey(itemID, recipientID string, seq uint64) []byte {
	key := recordPrefix(itemID, recipientID)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return append(key, buf[:]...)
}

func recordPrefix(itemID string, recipientID ...string) []byte {
	key := append([]byte(itemID), 0)
	if len(recipientID) > 0 {
		key = append(key, recipientID[0]...)
		key = append(key, 0)
	}
	return key
}
