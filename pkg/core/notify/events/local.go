package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
)

// Local delivers messages inside this process only; used without redis.
type Local struct {
	mu       sync.RWMutex
	handlers map[notify.Action]notify.HandleFunc
}

func NewLocal() *Local {
	return &Local{handlers: make(map[notify.Action]notify.HandleFunc)}
}

func (l *Local) Registry(_ context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.handlers[msgName]; ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}
	l.handlers[msgName] = handleFunc
	return nil
}

func (l *Local) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	stamp(msg)
	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	l.mu.RLock()
	h, ok := l.handlers[msg.Channel]
	l.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := h(ctx, string(data)); err != nil {
		logger.Errorf(ctx, "local handle msg fail name: %s, err: %+v", msg.Channel, err)
	}
	return nil
}

func (l *Local) Close(_ context.Context) error {
	return nil
}
