package progress

import "time"

type recordKey struct {
	recipientID string
	itemID      string
}

// RecordIndex gives the most recent CompletionRecord per (recipient, item).
type RecordIndex struct {
	records map[recordKey]CompletionRecord
}

// NewRecordIndex indexes `records`; on equal UpdatedAt the record listed last wins.
func NewRecordIndex(records []CompletionRecord) RecordIndex {
	idx := RecordIndex{records: make(map[recordKey]CompletionRecord, len(records))}
	for _, rec := range records {
		key := recordKey{recipientID: rec.RecipientID, itemID: rec.ItemID}
		if prev, ok := idx.records[key]; ok && rec.UpdatedAt.Before(prev.UpdatedAt) {
			continue
		}
		idx.records[key] = rec
	}
	return idx
}

func (idx RecordIndex) Lookup(recipientID, itemID string) (CompletionRecord, bool) {
	rec, ok := idx.records[recordKey{recipientID: recipientID, itemID: itemID}]
	return rec, ok
}

func (idx RecordIndex) Len() int { return len(idx.records) }

// status returns the recipient's status on the item; no record means not started.
func (idx RecordIndex) status(recipientID, itemID string) Status {
	if rec, ok := idx.Lookup(recipientID, itemID); ok && rec.Status.IsValid() {
		return rec.Status
	}
	return StatusNotStarted
}

// timeSpent returns the recipient's defined time spent on the item.
func (idx RecordIndex) timeSpent(recipientID, itemID string) (time.Duration, bool) {
	rec, ok := idx.Lookup(recipientID, itemID)
	if !ok || rec.TimeSpent == nil {
		return 0, false
	}
	return *rec.TimeSpent, true
}

// ComputeTally counts `recipients` per status on `itemID`.
// The counts always sum up to len(recipients).
func ComputeTally(itemID string, recipients []Recipient, records RecordIndex) Tally {
	var tally Tally
	for _, r := range recipients {
		tally.add(records.status(r.ID, itemID))
	}
	return tally
}

// ComputeAverageTime is the mean time spent on `itemID` among the recipients with a defined value.
// Recipients without a record or without time spent are left out; zero when nobody qualifies.
func ComputeAverageTime(itemID string, recipients []Recipient, records RecordIndex) time.Duration {
	var total time.Duration
	var n int64
	for _, r := range recipients {
		if spent, ok := records.timeSpent(r.ID, itemID); ok {
			total += spent
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// LessonStatus derives a recipient's status on a lesson from their statuses on its resources:
//   - needs help if any resource needs help
//   - completed if the lesson has resources and all of them are completed
//   - in progress if any resource is in progress or completed
//   - not started otherwise
func LessonStatus(lesson Item, recipientID string, records RecordIndex) Status {
	if len(lesson.Children) == 0 {
		return StatusNotStarted
	}
	var completed int
	var started bool
	for _, childID := range lesson.Children {
		switch records.status(recipientID, childID) {
		case StatusNeedsHelp:
			return StatusNeedsHelp
		case StatusCompleted:
			completed++
			started = true
		case StatusInProgress:
			started = true
		}
	}
	switch {
	case completed == len(lesson.Children):
		return StatusCompleted
	case started:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

func ComputeLessonTally(lesson Item, recipients []Recipient, records RecordIndex) Tally {
	var tally Tally
	for _, r := range recipients {
		tally.add(LessonStatus(lesson, r.ID, records))
	}
	return tally
}

// ComputeLessonAverageTime averages, over the recipients with at least one defined value,
// the sum of their time spent on the lesson's resources.
func ComputeLessonAverageTime(lesson Item, recipients []Recipient, records RecordIndex) time.Duration {
	var total time.Duration
	var n int64
	for _, r := range recipients {
		var spent time.Duration
		var defined bool
		for _, childID := range lesson.Children {
			if d, ok := records.timeSpent(r.ID, childID); ok {
				spent += d
				defined = true
			}
		}
		if defined {
			total += spent
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// ResolveRecipients returns, in their original order, the recipients targeted by the item:
// everybody for "everyone" items, else the members of any of its groups.
func ResolveRecipients(item Item, all []Recipient) []Recipient {
	if item.Everyone {
		resolved := make([]Recipient, len(all))
		copy(resolved, all)
		return resolved
	}

	resolved := make([]Recipient, 0)
	if len(item.Groups) == 0 {
		return resolved
	}
	groups := make(map[string]struct{}, len(item.Groups))
	for _, g := range item.Groups {
		groups[g] = struct{}{}
	}
	for _, r := range all {
		if r.InAnyGroup(groups) {
			resolved = append(resolved, r)
		}
	}
	return resolved
}
