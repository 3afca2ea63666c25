package notify

import (
	"context"

	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/uuid"
)

type Action string

const (
	AlertRaised         Action = "alert-raised"
	NotificationCreated Action = "notification-created"
)

var Actions = []Action{AlertRaised, NotificationCreated}

// SendMsg is the pub/sub payload. Empty Recipients reaches every role.
type SendMsg struct {
	Channel    Action        `json:"action"`
	Recipients []common.Role `json:"recipients,omitempty"`
	ChemicalID *int64        `json:"chemical_id,omitempty"`
	UserID     string        `json:"user_id,omitempty"`
	Data       any           `json:"data"`
	UUID       uuid.UUID     `json:"uuid"`
	Timestamp  int64         `json:"timestamp"`
}

// Reaches reports whether a session of role should receive the message.
func (m *SendMsg) Reaches(role common.Role) bool {
	if len(m.Recipients) == 0 || role == common.Admin {
		return true
	}
	for _, r := range m.Recipients {
		if r == role {
			return true
		}
	}
	return false
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}
