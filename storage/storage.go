// Package storage opens the repositories of the configured storage driver.
package storage

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/storage/database"
	"github.com/trezcool/coachreports/storage/database/boltdb"
	inmemdb "github.com/trezcool/coachreports/storage/database/inmem"
	sqlxrepos "github.com/trezcool/coachreports/storage/database/sqlx"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the repositories of `conf.Storage.Driver` and a Closer releasing them.
// When `conf.Storage.Fixtures` is set, the fixtures file is loaded into the repositories.
func Open(ctx context.Context, conf *core.Config) (database.Repositories, io.Closer, error) {
	var (
		repos  database.Repositories
		closer io.Closer = nopCloser{}
	)

	switch conf.Storage.Driver {
	case core.StorageMemory, "":
		db, err := inmemdb.Open()
		if err != nil {
			return repos, nil, err
		}
		repos = inmemdb.NewRepositories(db)

	case core.StorageBolt:
		db, err := boltdb.Open(conf.Storage.BoltPath)
		if err != nil {
			return repos, nil, err
		}
		repos, closer = boltdb.NewRepositories(db), db

	case core.StoragePostgres:
		db, err := database.Open(ctx, database.DSN(conf))
		if err != nil {
			return repos, nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return repos, nil, err
		}
		repos, closer = sqlxrepos.NewRepositories(db), db

	default:
		return repos, nil, core.NewConfigError("storage driver", conf.Storage.Driver, "unknown driver")
	}

	if conf.Storage.Fixtures != "" {
		if err := loadFixtures(ctx, repos, conf.Storage.Fixtures); err != nil {
			_ = closer.Close()
			return database.Repositories{}, nil, err
		}
	}
	return repos, closer, nil
}

func loadFixtures(ctx context.Context, repos database.Repositories, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening fixtures")
	}
	defer f.Close()

	_, err = repos.LoadFixtures(ctx, f)
	return errors.Wrapf(err, "loading fixtures %s", path)
}
