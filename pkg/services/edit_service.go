package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kennyanoano/GeminiReImage/pkg/domain"
	"github.com/kennyanoano/GeminiReImage/pkg/logger"
)

type ImageEditor interface {
	EditImage(ctx context.Context, image []byte, instruction string) (*domain.EditResult, error)
}

type ThreadRepository interface {
	CurrentID() string
	SetCurrent(threadID string) bool
	AddMessage(role domain.Role, content, imagePath string) (int, bool)
	MessageCount() int
}

type HistoryRecorder interface {
	AddEntry(prompt, inputImage, outputImage string) string
}

type ImageStore interface {
	ImageSavePath(threadID string, editNumber int) string
	SaveImage(path string, data []byte) bool
}

// editService coordinates the single outstanding edit request:
// Idle -> Dispatched -> {Completed, Failed} -> Idle. The worker goroutine
// performs exactly one remote call and reports over responseCh; repository
// state is only touched from the control loop via Apply.
type editService struct {
	editor     ImageEditor
	threads    ThreadRepository
	history    HistoryRecorder
	store      ImageStore
	responseCh chan<- domain.EditResponse

	inFlight   atomic.Bool
	requestSeq atomic.Int64

	mu        sync.Mutex
	lastError string
}

func NewEditService(
	editor ImageEditor,
	threads ThreadRepository,
	history HistoryRecorder,
	store ImageStore,
	responseCh chan<- domain.EditResponse,
) *editService {
	return &editService{
		editor:     editor,
		threads:    threads,
		history:    history,
		store:      store,
		responseCh: responseCh,
	}
}

// Submit appends the user turn and dispatches one edit request off the
// control thread. The in-flight slot is reserved before any state changes,
// so a second submission while one is outstanding is rejected with
// ErrEditInFlight and leaves the thread untouched, never queued.
// Cancellation mid-flight is not supported; the request runs to completion
// or failure.
func (s *editService) Submit(instruction, userImagePath, inputImagePath string, image []byte) (int64, error) {
	if len(image) == 0 {
		return 0, domain.ErrNoImage
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, domain.ErrEditInFlight
	}

	if _, ok := s.threads.AddMessage(domain.RoleUser, instruction, userImagePath); !ok {
		s.inFlight.Store(false)
		return 0, domain.ErrNoCurrentThread
	}
	threadID := s.threads.CurrentID()

	requestID := s.requestSeq.Add(1)
	ctx := logger.ContextWithRequestID(context.Background(), requestID)

	slog.InfoContext(ctx, "Dispatching edit request", "threadID", threadID, "instruction", instruction)

	go func() {
		result, err := s.editor.EditImage(ctx, image, instruction)

		response := domain.EditResponse{
			RequestID:   requestID,
			ThreadID:    threadID,
			Instruction: instruction,
			InputImage:  inputImagePath,
			Err:         err,
		}
		if result != nil {
			response.Text = result.Text
			response.Image = result.Image
		}

		// responseCh holds one slot and the in-flight guard admits one
		// request at a time, so this send never blocks even after the
		// listener has shut down.
		s.responseCh <- response
	}()

	return requestID, nil
}

// InFlight reports whether a dispatched request has not yet been applied.
func (s *editService) InFlight() bool {
	return s.inFlight.Load()
}

// LastError returns the error message of the most recent failed request, or
// empty after a successful one.
func (s *editService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Apply consumes one worker response on the control loop and returns the
// lifecycle to Idle. Called exactly once per dispatched request.
func (s *editService) Apply(ctx context.Context, response *domain.EditResponse) {
	defer s.inFlight.Store(false)

	ctx = logger.ContextWithRequestID(ctx, response.RequestID)

	if response.Err != nil {
		// Failed: the conversation stays exactly as it was before dispatch.
		slog.ErrorContext(ctx, "Edit request failed", "threadID", response.ThreadID, logger.Err(response.Err))
		s.setLastError(response.Err.Error())
		return
	}

	if s.threads.CurrentID() != response.ThreadID {
		if !s.threads.SetCurrent(response.ThreadID) {
			slog.WarnContext(ctx, "Thread for completed edit no longer known, dropping result", "threadID", response.ThreadID)
			return
		}
	}

	if len(response.Image) == 0 {
		// Soft failure: text-only round-trip, no image state changes.
		slog.WarnContext(ctx, "Edit completed without image data", "threadID", response.ThreadID)
		s.threads.AddMessage(domain.RoleAssistant, domain.FailurePrefix+response.Text, "")
		s.setLastError("")
		return
	}

	editNumber := s.threads.MessageCount() + 1
	versionedPath := s.store.ImageSavePath(response.ThreadID, editNumber)
	latestPath := s.store.ImageSavePath(response.ThreadID, 0)

	s.store.SaveImage(versionedPath, response.Image)
	s.store.SaveImage(latestPath, response.Image)

	s.threads.AddMessage(domain.RoleAssistant, response.Text, versionedPath)
	s.history.AddEntry(response.Instruction, response.InputImage, versionedPath)
	s.setLastError("")

	slog.InfoContext(ctx, "Edit applied", "threadID", response.ThreadID, "editNumber", editNumber, "imagePath", versionedPath)
}

func (s *editService) setLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}
