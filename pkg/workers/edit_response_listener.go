package workers

import (
	"context"
	"log/slog"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

type EditApplier interface {
	Apply(ctx context.Context, response *domain.EditResponse)
}

// editResponseListener is the control loop for edit results: it receives
// each worker response and applies it to the repositories. The edit worker
// itself never touches that state.
type editResponseListener struct {
	applier    EditApplier
	responseCh <-chan domain.EditResponse
}

func NewEditResponseListener(applier EditApplier, responseCh <-chan domain.EditResponse) (*editResponseListener, error) {
	return &editResponseListener{
		applier:    applier,
		responseCh: responseCh,
	}, nil
}

func (e *editResponseListener) Name() string { return "edit_response_listener" }

func (e *editResponseListener) Run(ctx context.Context) error {
	slog.Info("Starting worker", "name", e.Name())
	defer slog.Info("Worker stopped", "name", e.Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case response := <-e.responseCh:
			e.applier.Apply(ctx, &response)
		}
	}
}
