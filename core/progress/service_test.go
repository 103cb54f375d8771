package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachreports/core"
	"github.com/trezcool/coachreports/core/progress"
	"github.com/trezcool/coachreports/tests"
)

func setup(t *testing.T) *progress.Service {
	repos := testutil.NewMemoryRepositories(t)
	testutil.LoadFixtures(t, repos, testutil.SchoolFixtures)
	svc, err := repos.ReportService(progress.ReportQuery{Filter: "all", Ordering: "title"}, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService_invalidDefaultOrdering(t *testing.T) {
	repos := testutil.NewMemoryRepositories(t)
	_, err := repos.ReportService(progress.ReportQuery{Ordering: "grade"}, nil)
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestService_LessonReport(t *testing.T) {
	svc := setup(t)

	rows, err := svc.LessonReport(context.Background(), progress.ReportQuery{})
	require.NoError(t, err)

	want := []progress.TableRow{
		{
			ID: "draft", Title: "Draft", Kind: progress.KindLesson, Active: true,
			Groups: []string{},
		},
		{
			ID: "fractions", Title: "Fractions", Kind: progress.KindLesson, Active: true,
			Groups:         []string{"Class A"},
			Tally:          progress.Tally{Completed: 1, NeedsHelp: 1, NotStarted: 1},
			AvgTimeSpent:   20 * time.Minute,
			Recipients:     3,
			HasAssignments: true,
		},
		{
			ID: "geometry", Title: "Geometry", Kind: progress.KindLesson, Active: false,
			Groups:         []string{},
			Tally:          progress.Tally{Completed: 1, NotStarted: 4},
			AvgTimeSpent:   8 * time.Minute,
			Recipients:     5,
			HasAssignments: true,
		},
	}
	assert.Equal(t, want, rows)

	again, err := svc.LessonReport(context.Background(), progress.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestService_LessonReport_query(t *testing.T) {
	svc := setup(t)

	ids := func(rows []progress.TableRow) []string {
		res := make([]string, 0, len(rows))
		for _, r := range rows {
			res = append(res, r.ID)
		}
		return res
	}

	tests := []struct {
		name    string
		query   progress.ReportQuery
		want    []string
		wantErr bool
	}{
		{name: "defaults", query: progress.ReportQuery{}, want: []string{"draft", "fractions", "geometry"}},
		{name: "active only", query: progress.ReportQuery{Filter: "active-only"}, want: []string{"draft", "fractions"}},
		{name: "inactive only", query: progress.ReportQuery{Filter: "inactive-only"}, want: []string{"geometry"}},
		{name: "unknown filter", query: progress.ReportQuery{Filter: "archived"}, want: []string{"draft", "fractions", "geometry"}},
		{name: "descending title", query: progress.ReportQuery{Ordering: "-title"}, want: []string{"geometry", "fractions", "draft"}},
		{name: "active then title", query: progress.ReportQuery{Ordering: "active,title"}, want: []string{"geometry", "draft", "fractions"}},
		{name: "unknown sort key", query: progress.ReportQuery{Ordering: "score"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.LessonReport(context.Background(), tt.query)
			if tt.wantErr {
				assert.True(t, core.IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestService_LessonReport_assignedByActivity(t *testing.T) {
	svc := setup(t)

	rows, err := svc.LessonReport(context.Background(), progress.ReportQuery{AssignedBy: "activity"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.False(t, rows[0].HasAssignments) // draft
	assert.True(t, rows[1].HasAssignments)  // fractions
	assert.True(t, rows[2].HasAssignments)  // geometry
}

func TestService_ResourceReport(t *testing.T) {
	svc := setup(t)

	rows, err := svc.ResourceReport(context.Background(), "fractions", progress.ReportQuery{})
	require.NoError(t, err)

	want := []progress.TableRow{
		{
			ID: "fractions-quiz", Title: "Fractions quiz", Kind: progress.KindExercise, Active: true,
			Groups:         []string{"Class A"},
			Tally:          progress.Tally{Completed: 1, NeedsHelp: 1, NotStarted: 1},
			AvgTimeSpent:   13 * time.Minute,
			Recipients:     3,
			HasAssignments: true,
		},
		{
			ID: "fractions-video", Title: "Fractions video", Kind: progress.KindResource, Active: true,
			Groups:         []string{"Class A"},
			Tally:          progress.Tally{Completed: 1, InProgress: 1, NotStarted: 1},
			AvgTimeSpent:   7 * time.Minute,
			Recipients:     3,
			HasAssignments: true,
		},
	}
	assert.Equal(t, want, rows)
}

func TestService_ResourceReport_errors(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := svc.ResourceReport(ctx, "calculus", progress.ReportQuery{})
		assert.Equal(t, progress.ErrItemNotFound, errors.Cause(err))
	})

	t.Run("not a lesson", func(t *testing.T) {
		_, err := svc.ResourceReport(ctx, "fractions-video", progress.ReportQuery{})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, progress.ErrNotALesson, vErr.Err)
	})

	t.Run("lesson without resources", func(t *testing.T) {
		rows, err := svc.ResourceReport(ctx, "draft", progress.ReportQuery{})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("inactive resources filtered out", func(t *testing.T) {
		rows, err := svc.ResourceReport(ctx, "geometry", progress.ReportQuery{Filter: "active-only"})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestService_seesNewRecords(t *testing.T) {
	repos := testutil.NewMemoryRepositories(t)
	testutil.LoadFixtures(t, repos, testutil.SchoolFixtures)
	svc, err := repos.ReportService(progress.ReportQuery{Ordering: "title"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	before, err := svc.ResourceReport(ctx, "geometry", progress.ReportQuery{})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, 1, before[0].Tally.Completed)

	testutil.CreateRecord(t, repos.Records, "eshe", "shapes-video", progress.StatusCompleted, 2*time.Minute)

	after, err := svc.ResourceReport(ctx, "geometry", progress.ReportQuery{})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 2, after[0].Tally.Completed)
	assert.Equal(t, 5*time.Minute, after[0].AvgTimeSpent)
}

func TestService_LessonReport_unknownResources(t *testing.T) {
	const fixtures = `
recipients:
  - {id: amani, name: Amani}
  - {id: baraka, name: Baraka}
items:
  - {id: tides, title: Tides, kind: lesson, active: true, everyone: true, children: [tides-video, removed-video]}
  - {id: tides-video, title: Tides video, kind: resource, active: true}
records:
  - {recipient: amani, item: tides-video, status: completed, time_spent: 5m, updated_at: 2021-01-10T10:00:00Z}
`
	repos := testutil.NewMemoryRepositories(t)
	testutil.LoadFixtures(t, repos, fixtures)
	svc, err := repos.ReportService(progress.ReportQuery{Ordering: "title"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	lessons, err := svc.LessonReport(ctx, progress.ReportQuery{})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, progress.Tally{Completed: 1, NotStarted: 1}, lessons[0].Tally)
	assert.Equal(t, 5*time.Minute, lessons[0].AvgTimeSpent)

	resources, err := svc.ResourceReport(ctx, "tides", progress.ReportQuery{})
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "tides-video", resources[0].ID)
	assert.Equal(t, lessons[0].Tally, resources[0].Tally)
}
