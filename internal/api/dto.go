package api

import (
	"gotrial/domain/design"

	"github.com/go-playground/validator/v10"
)

// requestValidate checks request envelopes. Domain rules (ratios, effect
// sizes, dropout) stay with the domain so their errors keep their codes.
var requestValidate = validator.New()

// SequenceRequest asks the engine for a bare sequence
type SequenceRequest struct {
	Config           design.RandomizationConfig `json:"config"`
	ParticipantCount int                        `json:"participant_count" validate:"gte=0,lte=100000"`
}

// SequenceResponse is a generated sequence with its balance report
type SequenceResponse struct {
	Assignments []design.Assignment  `json:"assignments"`
	Resolution  design.Resolution    `json:"resolution"`
	Seed        int64                `json:"seed"`
	Notice      string               `json:"notice,omitempty"`
	Balance     design.BalanceReport `json:"balance"`
}

// SampleSizeResponse carries the calculator result and the normal-theory reference
type SampleSizeResponse struct {
	SampleSize int                         `json:"sample_size"`
	Request    design.SampleSizeRequest    `json:"request"`
	Reference  *design.NormalApproximation `json:"reference,omitempty"`
}

// AllocateRequest asks for a stored allocation table for one design
type AllocateRequest struct {
	Design           design.StudyDesign `json:"design"`
	ParticipantCount int                `json:"participant_count" validate:"gte=0,lte=100000"`
}

// BatchAllocateRequest runs several allocations at once
type BatchAllocateRequest struct {
	Requests []AllocateRequest `json:"requests" validate:"required,min=1,max=50,dive"`
}

// PowerRequest sizes a design
type PowerRequest struct {
	Design  design.StudyDesign       `json:"design"`
	Request design.SampleSizeRequest `json:"request"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}
