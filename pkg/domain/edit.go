package domain

// EditResult is what the remote edit call returns: the model's text and,
// when the round-trip produced one, the edited image bytes.
type EditResult struct {
	Text  string
	Image []byte
}

// EditResponse travels from the edit worker back to the control loop.
// Exactly one is sent per dispatched request.
type EditResponse struct {
	RequestID   int64
	ThreadID    string
	Instruction string
	InputImage  string
	Text        string
	Image       []byte
	Err         error
}
