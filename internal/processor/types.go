package processor

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resizer/internal/codec"
	"resizer/internal/errs"
)

// SourceImage is one raw input. The pipeline only reads it.
type SourceImage struct {
	ID           string
	Bytes        []byte
	OriginalName string
}

// NewSourceImage wraps data under a fresh random ID.
func NewSourceImage(name string, data []byte) SourceImage {
	return SourceImage{ID: uuid.NewString(), Bytes: data, OriginalName: name}
}

// ResizeOptions is the uniform transform applied to every item of a batch.
type ResizeOptions struct {
	Width               int          `mapstructure:"width" json:"width" default:"800" validate:"min=1,max=16384"`
	Height              int          `mapstructure:"height" json:"height" default:"600" validate:"min=1,max=16384"`
	Format              codec.Format `mapstructure:"format" json:"format" default:"jpeg" validate:"oneof=jpeg png webp"`
	Quality             int          `mapstructure:"quality" json:"quality" default:"85"`
	MaintainAspectRatio bool         `mapstructure:"keep-aspect" json:"maintainAspectRatio" default:"true"`
}

type FailurePolicy int

const (
	// PolicyIsolate records a failed item and keeps going.
	PolicyIsolate FailurePolicy = iota
	// PolicyFailFast stops dispatching new items after the first failure.
	PolicyFailFast
)

func (p FailurePolicy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail-fast"
	default:
		return "isolate"
	}
}

// Options configures a Run.
type Options struct {
	Resize ResizeOptions
	// Workers bounds concurrency. Zero or less means one per CPU.
	Workers  int
	Policy   FailurePolicy
	Logger   *zap.Logger
	Observer Observer
}

// ProcessedImage is the encoded output for one SourceImage.
type ProcessedImage struct {
	Name     string
	Bytes    []byte
	ByteSize int
	SourceID string
	Width    int
	Height   int
	Format   codec.Format
}

// Release drops the encoded buffer. ByteSize and the other fields stay.
func (p *ProcessedImage) Release() {
	p.Bytes = nil
}

// Released reports whether Release was called.
func (p *ProcessedImage) Released() bool {
	return p.Bytes == nil
}

// ProcessingFailure records why one SourceImage produced no output.
type ProcessingFailure struct {
	SourceID     string
	OriginalName string
	Reason       errs.Kind
	Detail       string
}

// BatchResult partitions a batch into successes and failures, each in
// input order.
type BatchResult struct {
	Successes []ProcessedImage
	Failures  []ProcessingFailure
}

// Total is the number of items accounted for.
func (r BatchResult) Total() int {
	return len(r.Successes) + len(r.Failures)
}

// Release releases every success.
func (r *BatchResult) Release() {
	for i := range r.Successes {
		r.Successes[i].Release()
	}
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// ItemEvent is delivered to an Observer once an item has finished.
type ItemEvent struct {
	Index    int
	SourceID string
	Name     string
	Outcome  Outcome
	ByteSize int
	Err      error
}

// Observer is called serially, at most once per item.
type Observer func(ItemEvent)
