package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/kennyanoano/GeminiReImage/pkg/api/response"
	"github.com/kennyanoano/GeminiReImage/pkg/domain"
)

type EditDispatcher interface {
	Submit(instruction, userImagePath, inputImagePath string, image []byte) (int64, error)
	InFlight() bool
	LastError() string
}

type EditThreads interface {
	LatestImagePath() string
}

type edits struct {
	dispatcher EditDispatcher
	threads    EditThreads
	writer     response.JSONResponseWriter
}

func NewEdits(dispatcher EditDispatcher, threads EditThreads) *edits {
	return &edits{
		dispatcher: dispatcher,
		threads:    threads,
		writer:     response.JSONResponseWriter{},
	}
}

// Submit dispatches one edit request against the current thread. The image
// comes from image_path when supplied, otherwise from the thread's latest
// image. The dispatcher appends the user's turn only once the request is
// accepted, so a rejected submission leaves the thread untouched.
func (e *edits) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
		ImagePath   string `json:"image_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Instruction == "" {
		e.writer.WriteErrorResponse(w, http.StatusBadRequest, "instruction is missing or empty.")
		return
	}

	imagePath := req.ImagePath
	if imagePath == "" {
		imagePath = e.threads.LatestImagePath()
	}
	if imagePath == "" {
		e.writer.WriteErrorResponse(w, http.StatusBadRequest, domain.ErrNoImage.Error())
		return
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		e.writer.WriteErrorResponse(w, http.StatusNotFound, "Image file not found: "+imagePath)
		return
	}

	requestID, err := e.dispatcher.Submit(req.Instruction, req.ImagePath, imagePath, image)
	if err != nil {
		if errors.Is(err, domain.ErrEditInFlight) || errors.Is(err, domain.ErrNoCurrentThread) {
			e.writer.WriteErrorResponse(w, http.StatusConflict, err.Error())
			return
		}
		e.writer.WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	e.writer.WriteResponse(w, http.StatusAccepted, map[string]interface{}{
		"request_id": requestID,
		"state":      "dispatched",
	})
}

// Status reports the lifecycle state and the last failure, if any.
func (e *edits) Status(w http.ResponseWriter, r *http.Request) {
	state := "idle"
	if e.dispatcher.InFlight() {
		state = "dispatched"
	}
	e.writer.WriteSuccessResponse(w, map[string]string{
		"state":      state,
		"last_error": e.dispatcher.LastError(),
	})
}
