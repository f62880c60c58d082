package publish

import (
	"context"
	"path/filepath"

	"github.com/gantryci/gantry/pkg/dist"
	"github.com/gantryci/gantry/pkg/errors"
)

// Builder is the subset of the distribution builder used by the publisher.
type Builder interface {
	Build(ctx context.Context) (*dist.Pair, error)
}

// Verifier is the subset of the distribution verifier used by the publisher.
type Verifier interface {
	VerifyPair(ctx context.Context, meta *dist.Metadata, pair *dist.Pair) error
}

// Event is a progress notification emitted as the publish run advances.
type Event struct {
	Phase string // building|verifying|uploading|done|error
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Publisher runs the release pipeline: build the artifact pair, verify it,
// then upload both halves. The run is strictly ordered and halts on the
// first failure, so an upload can never start unless the build and
// verification completed. There is no partial-publish recovery: a failure
// mid-upload surfaces as an error and the run is over.
type Publisher struct {
	Builder  Builder
	Verifier Verifier
	Uploader Uploader
	Metadata *dist.Metadata
	Hooks    Hooks
}

// Run executes the pipeline and returns the built pair on success.
func (p *Publisher) Run(ctx context.Context) (*dist.Pair, error) {
	if p.Builder == nil {
		return nil, errors.Wrap(errors.ErrBuildFailed, "builder is not configured")
	}
	if p.Uploader == nil {
		return nil, errors.Wrap(errors.ErrUploadFailed, "uploader is not configured")
	}

	emit(p.Hooks, Event{Phase: "building", Msg: p.Metadata.Name + " " + p.Metadata.Version})
	pair, err := p.Builder.Build(ctx)
	if err != nil {
		emit(p.Hooks, Event{Phase: "error", Msg: err.Error()})
		return nil, err
	}

	if p.Verifier != nil {
		emit(p.Hooks, Event{Phase: "verifying"})
		if err := p.Verifier.VerifyPair(ctx, p.Metadata, pair); err != nil {
			emit(p.Hooks, Event{Phase: "error", Msg: err.Error()})
			return nil, err
		}
	}

	for _, artifact := range pair.Artifacts() {
		emit(p.Hooks, Event{Phase: "uploading", Msg: filepath.Base(artifact.Path)})
		if err := p.Uploader.Upload(ctx, artifact); err != nil {
			emit(p.Hooks, Event{Phase: "error", Msg: err.Error()})
			return nil, err
		}
	}

	emit(p.Hooks, Event{Phase: "done"})
	return pair, nil
}
