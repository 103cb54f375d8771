// Package transfer decides whether a content import/export fits on the destination volume.
package transfer

// Denial reasons
const (
	ReasonNothingSelected = "nothing_selected"
	ReasonNotEnoughSpace  = "not_enough_space"
	ReasonInvalidSize     = "invalid_size"
)

// AdmissionState is the outcome of CheckAdmission.
type AdmissionState struct {
	CandidateSize          int64  `json:"candidate_size" yaml:"candidate_size"`
	AvailableSpace         int64  `json:"available_space" yaml:"available_space"`
	RemainingAfterTransfer int64  `json:"remaining_after_transfer" yaml:"remaining_after_transfer"` // never negative
	SelectionCount         int    `json:"selection_count" yaml:"selection_count"`
	Admitted               bool   `json:"admitted" yaml:"admitted"`
	Reason                 string `json:"reason,omitempty" yaml:"reason,omitempty"` // set when denied
}

// CheckAdmission admits a transfer of `candidateSize` bytes made of `selectionCount` items
// only if something is selected and space is left once it is done.
// Using up all of the available space is a denial, so is a negative candidate size.
// A negative available space counts as none.
func CheckAdmission(candidateSize, availableSpace int64, selectionCount int) AdmissionState {
	if availableSpace < 0 {
		availableSpace = 0
	}
	state := AdmissionState{
		CandidateSize:  candidateSize,
		AvailableSpace: availableSpace,
		SelectionCount: selectionCount,
	}
	// both operands are non-negative here: no overflow
	if candidateSize >= 0 && availableSpace > candidateSize {
		state.RemainingAfterTransfer = availableSpace - candidateSize
	}

	switch {
	case selectionCount <= 0:
		state.Reason = ReasonNothingSelected
	case candidateSize < 0:
		state.Reason = ReasonInvalidSize
	case state.RemainingAfterTransfer <= 0:
		state.Reason = ReasonNotEnoughSpace
	default:
		state.Admitted = true
	}
	return state
}
