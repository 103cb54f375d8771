// Package progress aggregates learner completion records into coach report rows.
//
// Every computation here is a pure function of the snapshot it is handed: nothing is cached between calls
// and the given items, recipients and records are never mutated.
package progress

import (
	"time"
)

// Statuses
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusNeedsHelp  Status = "needs_help"
)

var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusNeedsHelp}

func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusNeedsHelp:
		return true
	}
	return false
}

// Kinds
type Kind string

const (
	KindLesson   Kind = "lesson"
	KindExercise Kind = "exercise"
	KindResource Kind = "resource"
)

// Item is an assignable unit: a lesson or one of its resources.
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Active   bool     `json:"active" yaml:"active"`
	Everyone bool     `json:"everyone" yaml:"everyone"` // assigned to every recipient; Groups is ignored
	Groups   []string `json:"groups" yaml:"groups"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"` // lessons only: resource item IDs
}

func (it Item) IsLesson() bool { return it.Kind == KindLesson }

// Group is a class or learner group items are assigned to.
type Group struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Recipient is a learner eligible to receive an assignment.
type Recipient struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Groups []string `json:"groups" yaml:"groups"`
}

func (r Recipient) InAnyGroup(groups map[string]struct{}) bool {
	for _, g := range r.Groups {
		if _, ok := groups[g]; ok {
			return true
		}
	}
	return false
}

// CompletionRecord is one learner's progress on one item.
type CompletionRecord struct {
	RecipientID string         `json:"recipient_id" yaml:"recipient"`
	ItemID      string         `json:"item_id" yaml:"item"`
	Status      Status         `json:"status" yaml:"status"`
	TimeSpent   *time.Duration `json:"time_spent,omitempty" yaml:"time_spent,omitempty"` // nil when unknown
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`                     // UTC
}

// Tally counts recipients per status. All four buckets are always present.
type Tally struct {
	NotStarted int `json:"not_started" yaml:"not_started"`
	InProgress int `json:"in_progress" yaml:"in_progress"`
	Completed  int `json:"completed" yaml:"completed"`
	NeedsHelp  int `json:"needs_help" yaml:"needs_help"`
}

// add increments the bucket of `s`; unknown statuses count as not started.
func (t *Tally) add(s Status) {
	switch s {
	case StatusInProgress:
		t.InProgress++
	case StatusCompleted:
		t.Completed++
	case StatusNeedsHelp:
		t.NeedsHelp++
	default:
		t.NotStarted++
	}
}

func (t Tally) Count(s Status) int {
	switch s {
	case StatusNotStarted:
		return t.NotStarted
	case StatusInProgress:
		return t.InProgress
	case StatusCompleted:
		return t.Completed
	case StatusNeedsHelp:
		return t.NeedsHelp
	}
	return 0
}

func (t Tally) Total() int { return t.NotStarted + t.InProgress + t.Completed + t.NeedsHelp }

// Started counts the recipients with any progress data beyond "not started".
func (t Tally) Started() int { return t.InProgress + t.Completed + t.NeedsHelp }

func (t Tally) Map() map[Status]int {
	m := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		m[s] = t.Count(s)
	}
	return m
}

// TableRow is the view-model of one report line.
type TableRow struct {
	ID             string        `json:"id" yaml:"id"`
	Title          string        `json:"title" yaml:"title"`
	Kind           Kind          `json:"kind" yaml:"kind"`
	Active         bool          `json:"active" yaml:"active"`
	Groups         []string      `json:"groups" yaml:"groups"` // display names
	Tally          Tally         `json:"tally" yaml:"tally"`
	AvgTimeSpent   time.Duration `json:"avg_time_spent" yaml:"avg_time_spent"`
	Recipients     int           `json:"recipients" yaml:"recipients"`
	HasAssignments bool          `json:"has_assignments" yaml:"has_assignments"`
}
