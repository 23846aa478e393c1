package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn in a thread. Messages are immutable once appended;
// only the owning thread's aggregate fields change alongside an append.
type Message struct {
	MessageID int    `json:"message_id"`
	Timestamp string `json:"timestamp"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
}
