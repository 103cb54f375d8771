package transfer

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var admissionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coachreports",
	Name:      "admission_checks_total",
	Help:      "Number of transfer admission checks, by decision",
}, []string{"admitted"})

// AdmissionRequest describes a candidate transfer.
// When Nodes is set, the candidate size and selection count are measured from it;
// when AvailableSpace is nil, the free space of the content directory is used.
type AdmissionRequest struct {
	CandidateSize  int64         `json:"candidate_size" validate:"min=0"`
	SelectionCount int           `json:"selection_count" validate:"min=0"`
	AvailableSpace *int64        `json:"available_space" validate:"omitempty,min=0"`
	Nodes          []ContentNode `json:"nodes" validate:"omitempty,dive"`
}

func (req AdmissionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(req)
}

type (
	ServiceInterface interface {
		Check(ctx context.Context, req AdmissionRequest) (AdmissionState, error)
	}

	// SpaceFunc reports the free bytes of a directory, minus the reserved bytes.
	SpaceFunc func(dir string, reserved int64) (int64, error)

	Service struct {
		contentDir string
		reserved   int64
		space      SpaceFunc
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(contentDir string, reserved int64) *Service {
	return &Service{
		contentDir: contentDir,
		reserved:   reserved,
		space:      FreeSpace,
	}
}

// WithSpaceFunc replaces the free space probe (eg. in tests).
func (svc *Service) WithSpaceFunc(fn SpaceFunc) *Service {
	svc.space = fn
	return svc
}

func (svc *Service) Check(ctx context.Context, req AdmissionRequest) (AdmissionState, error) {
	if err := ctx.Err(); err != nil {
		return AdmissionState{}, err
	}

	size, count := req.CandidateSize, req.SelectionCount
	if len(req.Nodes) > 0 {
		sel := Measure(req.Nodes)
		size, count = sel.Size, sel.ResourceCount
	}

	var available int64
	if req.AvailableSpace != nil {
		available = *req.AvailableSpace
	} else {
		var err error
		if available, err = svc.space(svc.contentDir, svc.reserved); err != nil {
			return AdmissionState{}, errors.Wrap(err, "probing available space")
		}
	}

	state := CheckAdmission(size, available, count)
	admissionChecks.WithLabelValues(strconv.FormatBool(state.Admitted)).Inc()
	return state, nil
}
