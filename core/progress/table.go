package progress

import (
	"sort"
	"strings"

	"github.com/trezcool/coachreports/core"
)

// Filter selects the items of a report by their active flag.
type Filter int

const (
	// FilterAll keeps every item. It is also what any unknown filter token parses to.
	FilterAll Filter = iota
	FilterActiveOnly
	FilterInactiveOnly
)

var filterTokens = map[string]Filter{
	"all":           FilterAll,
	"active-only":   FilterActiveOnly,
	"inactive-only": FilterInactiveOnly,
}

// ParseFilter maps a filter token to a Filter; unknown tokens yield FilterAll.
func ParseFilter(token string) Filter {
	if f, ok := filterTokens[core.CleanString(token, true /* lower */)]; ok {
		return f
	}
	return FilterAll
}

func (f Filter) String() string {
	switch f {
	case FilterActiveOnly:
		return "active-only"
	case FilterInactiveOnly:
		return "inactive-only"
	default:
		return "all"
	}
}

func (f Filter) Match(it Item) bool {
	switch f {
	case FilterActiveOnly:
		return it.Active
	case FilterInactiveOnly:
		return !it.Active
	default:
		return true
	}
}

// Sort fields
const (
	SortByID     = "id"
	SortByTitle  = "title"
	SortByKind   = "kind"
	SortByActive = "active"
)

// compare funcs return <0, 0 or >0
var sortFields = map[string]func(a, b Item) int{
	SortByID:    func(a, b Item) int { return strings.Compare(a.ID, b.ID) },
	SortByTitle: func(a, b Item) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) },
	SortByKind:  func(a, b Item) int { return strings.Compare(string(a.Kind), string(b.Kind)) },
	SortByActive: func(a, b Item) int {
		switch {
		case a.Active == b.Active:
			return 0
		case !a.Active:
			return -1
		default:
			return 1
		}
	},
}

func IsSortField(field string) bool {
	_, ok := sortFields[field]
	return ok
}

// ParseSortKeys parses an ordering such as "title,-active"; an unknown field is a core.ConfigError.
func ParseSortKeys(ordering string) ([]core.Ordering, error) {
	keys := core.ParseOrdering(ordering)
	if err := checkSortKeys(keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func checkSortKeys(keys []core.Ordering) error {
	for _, key := range keys {
		if !IsSortField(key.Field) {
			return core.NewConfigError("sort key", key.Field, "unknown field")
		}
	}
	return nil
}

// SortItems returns a stably sorted copy of `items`: equal items keep their relative order.
func SortItems(items []Item, keys []core.Ordering) ([]Item, error) {
	if err := checkSortKeys(keys); err != nil {
		return nil, err
	}
	sorted := make([]Item, len(items))
	copy(sorted, items)
	if len(keys) == 0 {
		return sorted, nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, key := range keys {
			c := sortFields[key.Field](sorted[i], sorted[j])
			if c == 0 {
				continue
			}
			if key.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return sorted, nil
}

// AssignedBy selects how TableRow.HasAssignments is derived.
type AssignedBy int

const (
	// AssignedByRecipients: at least one recipient is targeted (lesson list).
	AssignedByRecipients AssignedBy = iota
	// AssignedByActivity: at least one targeted recipient has progress data (per-lesson resource list).
	AssignedByActivity
)

var assignedByTokens = map[string]AssignedBy{
	"recipients": AssignedByRecipients,
	"activity":   AssignedByActivity,
}

func ParseAssignedBy(token string) (AssignedBy, bool) {
	ab, ok := assignedByTokens[core.CleanString(token, true /* lower */)]
	return ab, ok
}

func (ab AssignedBy) String() string {
	if ab == AssignedByActivity {
		return "activity"
	}
	return "recipients"
}

func (ab AssignedBy) hasAssignments(recipients int, tally Tally) bool {
	if ab == AssignedByActivity {
		return tally.Started() > 0
	}
	return recipients > 0
}

type ProjectOptions struct {
	Filter     Filter
	SortKeys   []core.Ordering
	AssignedBy AssignedBy
	GroupNames map[string]string // group ID -> display name
}

// ProjectTable filters, stably sorts and aggregates `items` into report rows.
// Lessons are aggregated over their resources; any other item over its own records.
// Only an unknown sort key fails the projection.
func ProjectTable(items []Item, recipients []Recipient, records RecordIndex, opts ProjectOptions) ([]TableRow, error) {
	filtered := make([]Item, 0, len(items))
	for _, it := range items {
		if opts.Filter.Match(it) {
			filtered = append(filtered, it)
		}
	}

	sorted, err := SortItems(filtered, opts.SortKeys)
	if err != nil {
		return nil, err
	}

	rows := make([]TableRow, 0, len(sorted))
	for _, it := range sorted {
		rows = append(rows, projectRow(it, recipients, records, opts))
	}
	return rows, nil
}

func projectRow(it Item, all []Recipient, records RecordIndex, opts ProjectOptions) TableRow {
	resolved := ResolveRecipients(it, all)

	row := TableRow{
		ID:         it.ID,
		Title:      it.Title,
		Kind:       it.Kind,
		Active:     it.Active,
		Groups:     groupNames(it, opts.GroupNames),
		Recipients: len(resolved),
	}
	if it.IsLesson() {
		row.Tally = ComputeLessonTally(it, resolved, records)
		row.AvgTimeSpent = ComputeLessonAverageTime(it, resolved, records)
	} else {
		row.Tally = ComputeTally(it.ID, resolved, records)
		row.AvgTimeSpent = ComputeAverageTime(it.ID, resolved, records)
	}
	row.HasAssignments = opts.AssignedBy.hasAssignments(row.Recipients, row.Tally)
	return row
}

// groupNames annotates the row with the display names of the item's groups; unknown groups are skipped.
func groupNames(it Item, names map[string]string) []string {
	res := make([]string, 0, len(it.Groups))
	if it.Everyone {
		return res
	}
	for _, g := range it.Groups {
		if name, ok := names[g]; ok {
			res = append(res, name)
		}
	}
	return res
}

// InheritScope returns copies of `children` assigned like `lesson`.
func InheritScope(lesson Item, children []Item) []Item {
	res := make([]Item, 0, len(children))
	for _, child := range children {
		child.Everyone = lesson.Everyone
		child.Groups = append([]string(nil), lesson.Groups...)
		res = append(res, child)
	}
	return res
}
