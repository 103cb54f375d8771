package tests

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachreports/core/transfer"
)

func Test_transferApi_admission(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name string
		body string
		want transfer.AdmissionState
	}{
		{
			name: "admitted",
			body: `{"candidate_size": 400, "selection_count": 2}`,
			want: transfer.AdmissionState{CandidateSize: 400, AvailableSpace: 1000, RemainingAfterTransfer: 600, SelectionCount: 2, Admitted: true},
		},
		{
			name: "exactly fills the volume",
			body: `{"candidate_size": 1000, "selection_count": 1}`,
			want: transfer.AdmissionState{CandidateSize: 1000, AvailableSpace: 1000, SelectionCount: 1, Reason: transfer.ReasonNotEnoughSpace},
		},
		{
			name: "too big",
			body: `{"candidate_size": 1200, "selection_count": 1}`,
			want: transfer.AdmissionState{CandidateSize: 1200, AvailableSpace: 1000, SelectionCount: 1, Reason: transfer.ReasonNotEnoughSpace},
		},
		{
			name: "nothing selected",
			body: `{"candidate_size": 0, "selection_count": 0}`,
			want: transfer.AdmissionState{AvailableSpace: 1000, RemainingAfterTransfer: 1000, Reason: transfer.ReasonNothingSelected},
		},
		{
			name: "explicit available space",
			body: `{"candidate_size": 400, "selection_count": 1, "available_space": 300}`,
			want: transfer.AdmissionState{CandidateSize: 400, AvailableSpace: 300, SelectionCount: 1, Reason: transfer.ReasonNotEnoughSpace},
		},
		{
			name: "measured nodes",
			body: `{"nodes": [
				{"id": "t", "kind": "topic", "available": true},
				{"id": "a", "content_id": "c1", "kind": "video", "available": true, "files": [{"checksum": "x", "size": 300, "available": true}]},
				{"id": "b", "content_id": "c1", "kind": "video", "available": true, "files": [{"checksum": "x", "size": 300, "available": true}]}
			]}`,
			want: transfer.AdmissionState{CandidateSize: 300, AvailableSpace: 1000, RemainingAfterTransfer: 700, SelectionCount: 1, Admitted: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, http.MethodPost, "/v1/transfers/admission", []byte(tt.body))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got transfer.AdmissionState
			decode(t, rec, &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_transferApi_admission_invalid(t *testing.T) {
	app := newApp(t)

	rec := serve(app, http.MethodPost, "/v1/transfers/admission", []byte(`{"candidate_size": -1, "selection_count": 1}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fldErrs map[string]string
	decode(t, rec, &fldErrs)
	assert.Contains(t, fldErrs, "candidate_size")

	rec = serve(app, http.MethodPost, "/v1/transfers/admission", []byte(`{"candidate_size": "big"`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_transferApi_admission_spaceUnavailable(t *testing.T) {
	app := newApp(t, func(string, int64) (int64, error) { return 0, transfer.ErrSpaceUnavailable })

	rec := serve(app, http.MethodPost, "/v1/transfers/admission", []byte(`{"candidate_size": 1, "selection_count": 1}`))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var herr httpErr
	decode(t, rec, &herr)
	assert.Equal(t, "free space unavailable", herr.Error)
}

func Test_transferApi_admission_blankNodeID(t *testing.T) {
	app := newApp(t)

	body := `{"nodes": [{"id": "  ", "content_id": "c1", "kind": "video", "available": true, "files": [{"checksum": "x", "size": 300, "available": true}]}]}`
	rec := serve(app, http.MethodPost, "/v1/transfers/admission", []byte(body))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var fldErrs map[string]string
	decode(t, rec, &fldErrs)
	assert.Equal(t, "this field cannot be blank", fldErrs["id"])
}

func Test_transferApi_admission_hugeSelection(t *testing.T) {
	app := newApp(t)

	body := `{"nodes": [
		{"id": "a", "content_id": "c1", "kind": "video", "available": true, "files": [{"checksum": "x", "size": 4611686018427387904, "available": true}]},
		{"id": "b", "content_id": "c2", "kind": "video", "available": true, "files": [{"checksum": "y", "size": 4611686018427387904, "available": true}]},
		{"id": "c", "content_id": "c3", "kind": "video", "available": true, "files": [{"checksum": "z", "size": 4611686018427387904, "available": true}]}
	]}`
	rec := serve(app, http.MethodPost, "/v1/transfers/admission", []byte(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got transfer.AdmissionState
	decode(t, rec, &got)
	assert.False(t, got.Admitted)
	assert.Equal(t, transfer.ReasonNotEnoughSpace, got.Reason)
	assert.Equal(t, int64(math.MaxInt64), got.CandidateSize)
}
