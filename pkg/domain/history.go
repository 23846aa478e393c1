package domain

// HistoryTimestampFormat is the wire format for history entry timestamps.
const HistoryTimestampFormat = "2006-01-02 15:04:05"

// HistoryEntry records one prompt/input-image/output-image generation.
// Paths are absolute and the entry is immutable after creation.
type HistoryEntry struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Prompt      string `json:"prompt"`
	InputImage  string `json:"input_image"`
	OutputImage string `json:"output_image"`
}
