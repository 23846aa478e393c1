package domain

import "testing"

func TestThreadValidate(t *testing.T) {
	tests := []struct {
		name    string
		thread  Thread
		wantErr bool
	}{
		{
			name:   "empty thread is valid",
			thread: Thread{ThreadID: "thread_ab12cd34"},
		},
		{
			name: "sequential messages are valid",
			thread: Thread{
				ThreadID: "thread_ab12cd34",
				Conversations: []Message{
					{MessageID: 1, Role: RoleUser, Content: "make it blue"},
					{MessageID: 2, Role: RoleAssistant, Content: "done"},
				},
			},
		},
		{
			name:    "missing thread id",
			thread:  Thread{},
			wantErr: true,
		},
		{
			name: "non-sequential message ids",
			thread: Thread{
				ThreadID: "thread_ab12cd34",
				Conversations: []Message{
					{MessageID: 2, Role: RoleUser},
				},
			},
			wantErr: true,
		},
		{
			name: "unknown role",
			thread: Thread{
				ThreadID: "thread_ab12cd34",
				Conversations: []Message{
					{MessageID: 1, Role: "system"},
				},
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.thread.Validate()
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("expected user and assistant roles to be valid")
	}
	if Role("system").Valid() {
		t.Error("expected system role to be invalid")
	}
}
