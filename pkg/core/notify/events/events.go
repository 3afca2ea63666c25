package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/common/uuid"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/middleware/redis"
	"github.com/scienceol/chemtrack/pkg/utils"
)

// Events fans messages out to every api instance through redis pub/sub.
type Events struct {
	actions sync.Map
	subs    sync.Map
	client  *r.Client
	wait    sync.WaitGroup
}

var (
	once   sync.Once
	center *Events
)

func NewEvents() notify.MsgCenter {
	once.Do(func() {
		center = &Events{client: redis.GetClient()}
	})
	return center
}

func (e *Events) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, ok := e.actions.LoadOrStore(msgName, handleFunc); ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}

	sub := e.client.Subscribe(ctx, string(msgName))
	e.subs.Store(msgName, sub)

	e.wait.Add(1)
	utils.SafelyGo(func() {
		defer e.wait.Done()
		defer e.actions.Delete(msgName)

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					logger.Infof(ctx, "redis channel closed name: %s", msgName)
					return
				}
				if msg == nil {
					continue
				}
				if err := handleFunc(ctx, msg.Payload); err != nil {
					logger.Errorf(ctx, "handle redis msg fail name: %s, err: %+v", msgName, err)
				}
			case <-ctx.Done():
				logger.Infof(ctx, "exit redis channel name: %s", msgName)
				if err := sub.Unsubscribe(context.Background(), string(msgName)); err != nil {
					logger.Errorf(ctx, "unsubscribe fail msg name: %s, err: %+v", msgName, err)
				}
				_ = sub.Close()
				return
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "Registry handle msg err: %+v", err)
	})
	return nil
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	stamp(msg)
	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	if err := e.client.Publish(ctx, string(msg.Channel), data).Err(); err != nil {
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, err)
		return code.NotifySendMsgErr.WithErr(err)
	}
	return nil
}

func (e *Events) Close(_ context.Context) error {
	e.subs.Range(func(_, v any) bool {
		_ = v.(*r.PubSub).Close()
		return true
	})
	e.wait.Wait()
	return nil
}

func stamp(msg *notify.SendMsg) {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}
}
