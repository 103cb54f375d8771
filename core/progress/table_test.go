package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachreports/core"
)

func itemIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func rowIDs(rows []TableRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		token string
		want  Filter
	}{
		{token: "all", want: FilterAll},
		{token: "active-only", want: FilterActiveOnly},
		{token: " Inactive-Only ", want: FilterInactiveOnly},
		{token: "", want: FilterAll},
		{token: "archived", want: FilterAll},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFilter(tt.token))
		})
	}
}

func TestParseSortKeys(t *testing.T) {
	tests := []struct {
		ordering string
		want     []core.Ordering
		wantErr  bool
	}{
		{ordering: "", want: nil},
		{ordering: "title", want: []core.Ordering{{Field: "title", Ascending: true}}},
		{ordering: "title, -active", want: []core.Ordering{{Field: "title", Ascending: true}, {Field: "active", Ascending: false}}},
		{ordering: "title,popularity", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ordering, func(t *testing.T) {
			got, err := ParseSortKeys(tt.ordering)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, core.IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortItems(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "Fractions", Active: true},
		{ID: "2", Title: "algebra", Active: false},
		{ID: "3", Title: "Fractions", Active: false},
		{ID: "4", Title: "Algebra", Active: true},
		{ID: "5", Title: "Fractions", Active: true},
	}

	tests := []struct {
		name     string
		ordering string
		want     []string
	}{
		{name: "no keys keeps order", ordering: "", want: []string{"1", "2", "3", "4", "5"}},
		{name: "title is stable and case insensitive", ordering: "title", want: []string{"2", "4", "1", "3", "5"}},
		{name: "title then active", ordering: "title,active", want: []string{"2", "4", "3", "1", "5"}},
		{name: "descending title then active", ordering: "-title,-active", want: []string{"1", "5", "3", "4", "2"}},
		{name: "active only", ordering: "active", want: []string{"2", "3", "1", "4", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := ParseSortKeys(tt.ordering)
			require.NoError(t, err)
			got, err := SortItems(items, keys)
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemIDs(got))
		})
	}

	t.Run("input untouched", func(t *testing.T) {
		_, err := SortItems(items, []core.Ordering{{Field: "title", Ascending: false}})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, itemIDs(items))
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := SortItems(items, []core.Ordering{{Field: "nope", Ascending: true}})
		assert.True(t, core.IsConfigError(err))
	})
}

func TestProjectTable_filter(t *testing.T) {
	items := []Item{
		{ID: "a", Title: "Zeta", Active: true, Everyone: true},
		{ID: "b", Title: "Beta", Active: false, Everyone: true},
		{ID: "c", Title: "Alpha", Active: true, Everyone: true},
	}
	tests := []struct {
		filter Filter
		want   []string
	}{
		{filter: FilterAll, want: []string{"a", "b", "c"}},
		{filter: FilterActiveOnly, want: []string{"a", "c"}},
		{filter: FilterInactiveOnly, want: []string{"b"}},
		{filter: ParseFilter("whatever"), want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter.String(), func(t *testing.T) {
			rows, err := ProjectTable(items, recipients(2), NewRecordIndex(nil), ProjectOptions{Filter: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rowIDs(rows))
		})
	}
}

func TestProjectTable_rows(t *testing.T) {
	learners := []Recipient{
		{ID: "r1", Groups: []string{"g1"}},
		{ID: "r2", Groups: []string{"g1"}},
		{ID: "r3", Groups: []string{"g2"}},
	}
	items := []Item{
		{ID: "ex", Title: "Exercise", Kind: KindExercise, Active: true, Groups: []string{"g1", "g9"}},
		{ID: "res", Title: "Video", Kind: KindResource, Active: true, Groups: []string{"g2"}},
		{ID: "none", Title: "Unassigned", Kind: KindResource, Active: true},
		{ID: "lesson", Title: "Lesson", Kind: KindLesson, Active: true, Everyone: true, Children: []string{"ex", "res"}},
	}
	idx := NewRecordIndex([]CompletionRecord{
		record("r1", "ex", StatusCompleted, dur(4*time.Minute)),
		record("r2", "ex", StatusNeedsHelp, dur(2*time.Minute)),
		record("r1", "res", StatusCompleted, dur(time.Minute)),
	})
	opts := ProjectOptions{
		SortKeys:   []core.Ordering{{Field: "id", Ascending: true}},
		GroupNames: map[string]string{"g1": "Class A", "g2": "Class B"},
	}

	rows, err := ProjectTable(items, learners, idx, opts)
	require.NoError(t, err)
	require.Equal(t, []string{"ex", "lesson", "none", "res"}, rowIDs(rows))

	assert.Equal(t, TableRow{
		ID: "ex", Title: "Exercise", Kind: KindExercise, Active: true,
		Groups:         []string{"Class A"},
		Tally:          Tally{Completed: 1, NeedsHelp: 1},
		AvgTimeSpent:   3 * time.Minute,
		Recipients:     2,
		HasAssignments: true,
	}, rows[0])

	// r1: completed both, r2: needs help on ex, r3: no data
	assert.Equal(t, TableRow{
		ID: "lesson", Title: "Lesson", Kind: KindLesson, Active: true,
		Groups:         []string{},
		Tally:          Tally{Completed: 1, NeedsHelp: 1, NotStarted: 1},
		AvgTimeSpent:   3*time.Minute + 30*time.Second,
		Recipients:     3,
		HasAssignments: true,
	}, rows[1])

	assert.Equal(t, 0, rows[2].Recipients)
	assert.Equal(t, Tally{}, rows[2].Tally)
	assert.False(t, rows[2].HasAssignments)

	// res targets r3 only, who has no record
	assert.Equal(t, Tally{NotStarted: 1}, rows[3].Tally)
	assert.True(t, rows[3].HasAssignments)
}

func TestProjectTable_assignedBy(t *testing.T) {
	items := []Item{{ID: "i1", Everyone: true}}

	tests := []struct {
		name       string
		assignedBy AssignedBy
		records    []CompletionRecord
		want       bool
	}{
		{name: "recipients without data", assignedBy: AssignedByRecipients, want: true},
		{name: "activity without data", assignedBy: AssignedByActivity, want: false},
		{
			name:       "activity with explicit not started",
			assignedBy: AssignedByActivity,
			records:    []CompletionRecord{record("r1", "i1", StatusNotStarted, nil)},
			want:       false,
		},
		{
			name:       "activity with data",
			assignedBy: AssignedByActivity,
			records:    []CompletionRecord{record("r2", "i1", StatusInProgress, nil)},
			want:       true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ProjectTable(items, recipients(2), NewRecordIndex(tt.records), ProjectOptions{AssignedBy: tt.assignedBy})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0].HasAssignments)
		})
	}
}

func TestProjectTable_empty(t *testing.T) {
	rows, err := ProjectTable(nil, recipients(3), NewRecordIndex(nil), ProjectOptions{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows, err = ProjectTable([]Item{{ID: "i1", Everyone: true}}, nil, NewRecordIndex(nil), ProjectOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Tally{}, rows[0].Tally)
	assert.Equal(t, time.Duration(0), rows[0].AvgTimeSpent)
	assert.False(t, rows[0].HasAssignments)
}

func TestProjectTable_idempotent(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "B", Active: true, Groups: []string{"g1"}},
		{ID: "2", Title: "A", Active: false, Everyone: true},
		{ID: "3", Title: "B", Active: true, Everyone: true},
	}
	learners := recipients(3, "g1")
	idx := NewRecordIndex([]CompletionRecord{record("r1", "1", StatusCompleted, dur(time.Minute))})
	opts := ProjectOptions{
		SortKeys:   []core.Ordering{{Field: "title", Ascending: true}},
		GroupNames: map[string]string{"g1": "Group 1"},
	}

	first, err := ProjectTable(items, learners, idx, opts)
	require.NoError(t, err)
	second, err := ProjectTable(items, learners, idx, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	first[0].Groups = append(first[0].Groups, "mutated")
	assert.NotEqual(t, first[0].Groups, second[0].Groups)
}

func TestProjectTable_unknownSortKey(t *testing.T) {
	_, err := ProjectTable(nil, nil, NewRecordIndex(nil), ProjectOptions{SortKeys: []core.Ordering{{Field: "score"}}})
	assert.True(t, core.IsConfigError(err))
}

func TestInheritScope(t *testing.T) {
	lesson := Item{ID: "l", Kind: KindLesson, Groups: []string{"g1"}}
	children := []Item{{ID: "a", Everyone: true}, {ID: "b", Groups: []string{"g2"}}}

	got := InheritScope(lesson, children)
	for _, child := range got {
		assert.False(t, child.Everyone)
		assert.Equal(t, []string{"g1"}, child.Groups)
	}
	assert.True(t, children[0].Everyone)
	assert.Equal(t, []string{"g2"}, children[1].Groups)
}
