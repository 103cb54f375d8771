package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/coachreports/core"
)

var (
	// errors
	ErrItemNotFound   = errors.New("item not found")
	ErrRecordNotFound = errors.New("completion record not found")
	ErrNotALesson     = errors.New("item is not a lesson")
)

type (
	ItemProvider interface {
		Items(ctx context.Context) ([]Item, error)
		// ItemsByID returns the items in the order of `ids`; unknown IDs are skipped.
		ItemsByID(ctx context.Context, ids ...string) ([]Item, error)
		Item(ctx context.Context, id string) (Item, error)
	}

	RecipientProvider interface {
		Recipients(ctx context.Context) ([]Recipient, error)
	}

	RecordProvider interface {
		Record(ctx context.Context, recipientID, itemID string) (CompletionRecord, error)
		RecordsForItems(ctx context.Context, itemIDs ...string) ([]CompletionRecord, error)
	}

	GroupNameResolver interface {
		GroupNames(ctx context.Context, ids ...string) (map[string]string, error)
	}

	ServiceInterface interface {
		LessonReport(ctx context.Context, q ReportQuery) ([]TableRow, error)
		ResourceReport(ctx context.Context, lessonID string, q ReportQuery) ([]TableRow, error)
	}

	Service struct {
		items      ItemProvider
		recipients RecipientProvider
		records    RecordProvider
		groups     GroupNameResolver
		defaults   ReportQuery
		logger     core.Logger
	}

	// snapshot is the data a single report is computed from.
	snapshot struct {
		items      []Item
		recipients []Recipient
		records    RecordIndex
		groupNames map[string]string
	}
)

var _ ServiceInterface = (*Service)(nil)

// NewService returns a report Service. `defaults` fills in the blank fields of every ReportQuery;
// its ordering is checked upfront.
func NewService(
	items ItemProvider,
	recipients RecipientProvider,
	records RecordProvider,
	groups GroupNameResolver,
	defaults ReportQuery,
	logger core.Logger,
) (*Service, error) {
	if _, err := ParseSortKeys(defaults.Ordering); err != nil {
		return nil, pkgerrors.Wrap(err, "default report ordering")
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Service{
		items:      items,
		recipients: recipients,
		records:    records,
		groups:     groups,
		defaults:   defaults,
		logger:     logger,
	}, nil
}

func (svc *Service) LessonReport(ctx context.Context, q ReportQuery) ([]TableRow, error) {
	start := time.Now()
	opts, err := q.withDefaults(svc.defaults).options(AssignedByRecipients)
	if err != nil {
		return nil, err
	}

	var items []Item
	var recipients []Recipient
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = svc.items.Items(gctx)
		return pkgerrors.Wrap(err, "loading items")
	})
	g.Go(func() (err error) {
		recipients, err = svc.recipients.Recipients(gctx)
		return pkgerrors.Wrap(err, "loading recipients")
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}

	lessons := make([]Item, 0, len(items))
	var itemIDs []string
	for _, it := range items {
		if !it.IsLesson() {
			continue
		}
		// a lesson is tallied over the resources that still exist, as in its resource report
		children := make([]string, 0, len(it.Children))
		for _, id := range it.Children {
			if _, ok := known[id]; ok {
				children = append(children, id)
			}
		}
		if missing := len(it.Children) - len(children); missing > 0 {
			svc.logger.Debug(fmt.Sprintf("lesson %s: %d unknown resources skipped", it.ID, missing))
		}
		it.Children = children
		lessons = append(lessons, it)
		itemIDs = append(itemIDs, children...)
	}

	snap, err := svc.load(ctx, lessons, recipients, itemIDs)
	if err != nil {
		return nil, err
	}
	opts.GroupNames = snap.groupNames

	rows, err := ProjectTable(snap.items, snap.recipients, snap.records, opts)
	if err != nil {
		return nil, err
	}
	observeReport(levelLessons, len(rows), start)
	return rows, nil
}

func (svc *Service) ResourceReport(ctx context.Context, lessonID string, q ReportQuery) ([]TableRow, error) {
	start := time.Now()
	opts, err := q.withDefaults(svc.defaults).options(AssignedByActivity)
	if err != nil {
		return nil, err
	}

	lesson, err := svc.items.Item(ctx, lessonID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading lesson")
	}
	if !lesson.IsLesson() {
		return nil, core.NewValidationError(ErrNotALesson)
	}

	var children []Item
	var recipients []Recipient
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		children, err = svc.items.ItemsByID(gctx, lesson.Children...)
		return pkgerrors.Wrap(err, "loading lesson resources")
	})
	g.Go(func() (err error) {
		recipients, err = svc.recipients.Recipients(gctx)
		return pkgerrors.Wrap(err, "loading recipients")
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}
	if missing := len(lesson.Children) - len(children); missing > 0 {
		svc.logger.Debug(fmt.Sprintf("lesson %s: %d unknown resources skipped", lesson.ID, missing))
	}

	// resources are assigned through their lesson
	children = InheritScope(lesson, children)
	itemIDs := make([]string, 0, len(children))
	for _, child := range children {
		itemIDs = append(itemIDs, child.ID)
	}

	snap, err := svc.load(ctx, children, recipients, itemIDs)
	if err != nil {
		return nil, err
	}
	opts.GroupNames = snap.groupNames

	rows, err := ProjectTable(snap.items, snap.recipients, snap.records, opts)
	if err != nil {
		return nil, err
	}
	observeReport(levelResources, len(rows), start)
	return rows, nil
}

// load fetches the records of `recordItemIDs` and the names of the groups of `items`.
func (svc *Service) load(ctx context.Context, items []Item, recipients []Recipient, recordItemIDs []string) (snapshot, error) {
	snap := snapshot{items: items, recipients: recipients}

	var groupIDs []string
	seen := make(map[string]struct{})
	for _, it := range items {
		for _, gid := range it.Groups {
			if _, ok := seen[gid]; !ok {
				seen[gid] = struct{}{}
				groupIDs = append(groupIDs, gid)
			}
		}
	}

	var records []CompletionRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if len(recordItemIDs) == 0 {
			return nil
		}
		records, err = svc.records.RecordsForItems(gctx, recordItemIDs...)
		return pkgerrors.Wrap(err, "loading completion records")
	})
	g.Go(func() (err error) {
		if len(groupIDs) == 0 {
			return nil
		}
		snap.groupNames, err = svc.groups.GroupNames(gctx, groupIDs...)
		return pkgerrors.Wrap(err, "resolving group names")
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	snap.records = NewRecordIndex(records)
	if dangling := countDangling(records, recipients); dangling > 0 {
		svc.logger.Debug(fmt.Sprintf("%d completion records reference unknown recipients", dangling))
	}
	return snap, nil
}

func countDangling(records []CompletionRecord, recipients []Recipient) int {
	known := make(map[string]struct{}, len(recipients))
	for _, r := range recipients {
		known[r.ID] = struct{}{}
	}
	var n int
	for _, rec := range records {
		if _, ok := known[rec.RecipientID]; !ok {
			n++
		}
	}
	return n
}

// ReportQuery holds the presentation choices of a report.
type ReportQuery struct {
	Filter     string `json:"filter" query:"filter"`
	Ordering   string `json:"ordering" query:"ordering" validate:"omitempty,ordering"`
	AssignedBy string `json:"assigned_by" query:"assigned_by" validate:"omitempty,oneof=recipients activity"`
}

func (q *ReportQuery) Clean() {
	q.Filter = core.CleanString(q.Filter, true /* lower */)
	q.Ordering = core.CleanString(q.Ordering, true /* lower */)
	q.AssignedBy = core.CleanString(q.AssignedBy, true /* lower */)
}

func (q *ReportQuery) Validate(validate *validator.Validate) error {
	q.Clean()
	return validate.Struct(q)
}

func (q ReportQuery) withDefaults(defaults ReportQuery) ReportQuery {
	if q.Filter == "" {
		q.Filter = defaults.Filter
	}
	if q.Ordering == "" {
		q.Ordering = defaults.Ordering
	}
	if q.AssignedBy == "" {
		q.AssignedBy = defaults.AssignedBy
	}
	return q
}

func (q ReportQuery) options(assignedBy AssignedBy) (ProjectOptions, error) {
	keys, err := ParseSortKeys(q.Ordering)
	if err != nil {
		return ProjectOptions{}, err
	}
	if ab, ok := ParseAssignedBy(q.AssignedBy); ok {
		assignedBy = ab
	}
	return ProjectOptions{
		Filter:     ParseFilter(q.Filter),
		SortKeys:   keys,
		AssignedBy: assignedBy,
	}, nil
}

// InitValidators registers the report validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(orderingTag, orderingValidation)
	core.RegisterCustomTranslation(validate, translator, orderingTag, orderingText)
}

var (
	orderingTag  = "ordering"
	orderingText = "unknown sort field"
)

func orderingValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := ParseSortKeys(s)
		return err == nil
	}
	return false
}
