package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrAborted indicates the run stopped before every recipient was
	// attempted, after a channel-fatal error or cancellation.
	ErrAborted = errors.New("paperco: run aborted")

	// ErrAlreadyRun indicates Run was called twice on the same campaign.
	ErrAlreadyRun = errors.New("paperco: campaign already run")

	// ErrInvalidCampaign indicates the campaign is missing its source or channel.
	ErrInvalidCampaign = errors.New("paperco: invalid campaign")

	// ErrPanic indicates processing of one recipient panicked.
	ErrPanic = errors.New("paperco: recipient processing panicked")

	// ErrInvalidConfig indicates the command-line configuration is unusable.
	ErrInvalidConfig = errors.New("paperco: invalid configuration")
)

// Stage names the step of per-recipient processing that failed.
type Stage string

const (
	StageRender Stage = "render"
	StageSend   Stage = "send"
)

// Failure is a recipient-scoped error. It is recorded, never retried.
type Failure struct {
	Err     error
	Address string
	Stage   Stage
	Index   int // position of the record in the source
}

func (f *Failure) Error() string {
	return fmt.Sprintf("paperco: %s failed for %s: %v", f.Stage, f.Address, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
