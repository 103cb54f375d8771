package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/storage/database"
)

// RunRepositoryTests checks the behaviour every storage driver must share.
// `open` must return empty repositories.
func RunRepositoryTests(t *testing.T, open func(t *testing.T) database.Repositories) {
	ctx := context.Background()

	t.Run("items keep insertion order", func(t *testing.T) {
		repos := open(t)
		LoadFixtures(t, repos, SchoolFixtures)

		items, err := repos.Items.Items(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		assert.Equal(t, []string{"fractions", "geometry", "draft", "fractions-video", "fractions-quiz", "shapes-video"}, ids)
		assert.Equal(t, []string{"fractions-video", "fractions-quiz"}, items[0].Children)
		assert.True(t, items[1].Everyone)
		assert.False(t, items[1].Active)
	})

	t.Run("updating an item keeps its position", func(t *testing.T) {
		repos := open(t)
		LoadFixtures(t, repos, SchoolFixtures)

		_, err := repos.Items.SaveItem(ctx, progress.Item{ID: "fractions", Title: "Fractions II", Kind: progress.KindLesson})
		require.NoError(t, err)
		items, err := repos.Items.Items(ctx)
		require.NoError(t, err)
		require.Len(t, items, 6)
		assert.Equal(t, "Fractions II", items[0].Title)
	})

	t.Run("items by id", func(t *testing.T) {
		repos := open(t)
		LoadFixtures(t, repos, SchoolFixtures)

		items, err := repos.Items.ItemsByID(ctx, "fractions-quiz", "nope", "fractions")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "fractions-quiz", items[0].ID)
		assert.Equal(t, "fractions", items[1].ID)

		_, err = repos.Items.Item(ctx, "nope")
		assert.Equal(t, progress.ErrItemNotFound, err)
	})

	t.Run("recipients", func(t *testing.T) {
		repos := open(t)
		LoadFixtures(t, repos, SchoolFixtures)

		recipients, err := repos.Recipients.Recipients(ctx)
		require.NoError(t, err)
		require.Len(t, recipients, 5)
		assert.Equal(t, "amani", recipients[0].ID)
		assert.Equal(t, []string{"class-a", "class-b"}, recipients[2].Groups)
		assert.Empty(t, recipients[4].Groups)
	})

	t.Run("generated ids", func(t *testing.T) {
		repos := open(t)
		rcp, err := repos.Recipients.SaveRecipient(ctx, progress.Recipient{Name: "Nuru"})
		require.NoError(t, err)
		assert.NotEmpty(t, rcp.ID)
	})

	t.Run("group names", func(t *testing.T) {
		repos := open(t)
		LoadFixtures(t, repos, SchoolFixtures)

		names, err := repos.Groups.GroupNames(ctx, "class-a", "class-z")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"class-a": "Class A"}, names)
	})

	t.Run("most recent record wins", func(t *testing.T) {
		repos := open(t)
		day := time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC)

		CreateRecord(t, repos.Records, "amani", "quiz", progress.StatusNeedsHelp, time.Minute, day.Add(time.Hour))
		CreateRecord(t, repos.Records, "amani", "quiz", progress.StatusInProgress, 0, day)
		CreateRecord(t, repos.Records, "baraka", "quiz", progress.StatusCompleted, 0, day)

		rec, err := repos.Records.Record(ctx, "amani", "quiz")
		require.NoError(t, err)
		assert.Equal(t, progress.StatusNeedsHelp, rec.Status)
		require.NotNil(t, rec.TimeSpent)
		assert.Equal(t, time.Minute, *rec.TimeSpent)
		assert.True(t, rec.UpdatedAt.Equal(day.Add(time.Hour)))

		_, err = repos.Records.Record(ctx, "amani", "video")
		assert.Equal(t, progress.ErrRecordNotFound, err)
	})

	t.Run("records for items", func(t *testing.T) {
		repos := open(t)
		LoadFixtures(t, repos, SchoolFixtures)

		records, err := repos.Records.RecordsForItems(ctx, "fractions-quiz", "shapes-video")
		require.NoError(t, err)
		assert.Len(t, records, 4)
		for _, rec := range records {
			assert.Contains(t, []string{"fractions-quiz", "shapes-video"}, rec.ItemID)
		}

		records, err = repos.Records.RecordsForItems(ctx)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("saved record defaults", func(t *testing.T) {
		repos := open(t)
		rec := CreateRecord(t, repos.Records, "amani", "quiz", "", 0)
		assert.Equal(t, progress.StatusNotStarted, rec.Status)
		assert.False(t, rec.UpdatedAt.IsZero())
		assert.Nil(t, rec.TimeSpent)
	})
}
