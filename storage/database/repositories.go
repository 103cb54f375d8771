package database

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
)

type (
	GroupRepository interface {
		progress.GroupNameResolver
		SaveGroup(ctx context.Context, grp progress.Group) (progress.Group, error)
	}

	RecipientRepository interface {
		progress.RecipientProvider
		SaveRecipient(ctx context.Context, rcp progress.Recipient) (progress.Recipient, error)
	}

	ItemRepository interface {
		progress.ItemProvider
		SaveItem(ctx context.Context, it progress.Item) (progress.Item, error)
	}

	RecordRepository interface {
		progress.RecordProvider
		SaveRecord(ctx context.Context, rec progress.CompletionRecord) (progress.CompletionRecord, error)
	}

	// Repositories bundles the repositories of one storage driver.
	Repositories struct {
		Groups     GroupRepository
		Recipients RecipientRepository
		Items      ItemRepository
		Records    RecordRepository
	}
)

// ReportService returns a progress.Service reading from the repositories.
func (repos Repositories) ReportService(defaults progress.ReportQuery, logger core.Logger) (*progress.Service, error) {
	return progress.NewService(repos.Items, repos.Recipients, repos.Records, repos.Groups, defaults, logger)
}

// NewID returns a new random identifier.
func NewID() string { return uuid.New().String() }

// PrepareRecord fills in the defaults of a record about to be saved.
func PrepareRecord(rec progress.CompletionRecord) progress.CompletionRecord {
	if rec.Status == "" {
		rec.Status = progress.StatusNotStarted
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if rec.TimeSpent != nil {
		spent := *rec.TimeSpent
		rec.TimeSpent = &spent
	}
	return rec
}

// Fixtures is the YAML document accepted by LoadFixtures.
type Fixtures struct {
	Groups     []progress.Group            `yaml:"groups"`
	Recipients []progress.Recipient        `yaml:"recipients"`
	Items      []progress.Item             `yaml:"items"`
	Records    []progress.CompletionRecord `yaml:"records"`
}

// LoadFixtures decodes YAML fixtures from `r` and saves them in order: groups, recipients, items then records.
func (repos Repositories) LoadFixtures(ctx context.Context, r io.Reader) (Fixtures, error) {
	var fx Fixtures
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && err != io.EOF {
		return Fixtures{}, errors.Wrap(err, "decoding fixtures")
	}
	for i, grp := range fx.Groups {
		saved, err := repos.Groups.SaveGroup(ctx, grp)
		if err != nil {
			return Fixtures{}, errors.Wrapf(err, "saving group %q", grp.ID)
		}
		fx.Groups[i] = saved
	}
	for i, rcp := range fx.Recipients {
		saved, err := repos.Recipients.SaveRecipient(ctx, rcp)
		if err != nil {
			return Fixtures{}, errors.Wrapf(err, "saving recipient %q", rcp.ID)
		}
		fx.Recipients[i] = saved
	}
	for i, it := range fx.Items {
		saved, err := repos.Items.SaveItem(ctx, it)
		if err != nil {
			return Fixtures{}, errors.Wrapf(err, "saving item %q", it.ID)
		}
		fx.Items[i] = saved
	}
	for i, rec := range fx.Records {
		if rec.Status != "" && !rec.Status.IsValid() {
			return Fixtures{}, core.NewValidationError(errors.Errorf("record %d: invalid status %q", i, rec.Status))
		}
		saved, err := repos.Records.SaveRecord(ctx, rec)
		if err != nil {
			return Fixtures{}, errors.Wrapf(err, "saving record %d", i)
		}
		fx.Records[i] = saved
	}
	return fx, nil
}
