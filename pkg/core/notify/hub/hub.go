// Package hub keeps the websocket sessions of this instance and pushes
// pub/sub messages to the ones whose role may see them.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/panjf2000/ants/v2"
	"github.com/scienceol/chemtrack/pkg/common"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/common/uuid"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
)

const (
	poolSize       = 200
	maxMessageSize = 4 << 10
	keySession     = "session_id"
	keyRole        = "role"
	keyUID         = "uid"
)

type Hub struct {
	ws       *melody.Melody                       // websocket connections
	sessions *haxmap.Map[string, *melody.Session] // session_id -> session
	pool     *ants.Pool                           // push workers
	center   notify.MsgCenter
}

func New(ctx context.Context, center notify.MsgCenter) (*Hub, error) {
	ws := melody.New()
	ws.Config.MaxMessageSize = maxMessageSize
	ws.Config.PingPeriod = 10 * time.Second

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	h := &Hub{
		ws:       ws,
		sessions: haxmap.New[string, *melody.Session](),
		pool:     pool,
		center:   center,
	}
	h.initWebSocket(ctx)
	for _, action := range notify.Actions {
		if err := center.Registry(ctx, action, h.push); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Connect upgrades the request; it runs behind auth so the user is known.
func (h *Hub) Connect(ctx *gin.Context) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		common.ReplyErr(ctx, code.UnLogin)
		return
	}
	if err := h.ws.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		keySession: uuid.NewV4().String(),
		keyRole:    user.Role,
		keyUID:     user.UID,
	}); err != nil {
		logger.Errorf(ctx, "notify hub HandleRequestWithKeys fail err: %+v", err)
	}
}

func (h *Hub) initWebSocket(ctx context.Context) {
	h.ws.HandleConnect(func(s *melody.Session) {
		h.sessions.Set(s.MustGet(keySession).(string), s)
	})

	h.ws.HandleDisconnect(func(s *melody.Session) {
		h.sessions.Del(s.MustGet(keySession).(string))
	})

	h.ws.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseGoingAway {
			return
		}
		logger.Infof(ctx, "notify hub websocket err uid: %v, err: %+v", s.MustGet(keyUID), err)
	})

	// clients only listen; inbound frames are ignored
	h.ws.HandleMessage(func(*melody.Session, []byte) {})
}

func (h *Hub) push(ctx context.Context, payload string) error {
	msg := &notify.SendMsg{}
	if err := json.Unmarshal([]byte(payload), msg); err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	data := []byte(payload)
	h.sessions.ForEach(func(_ string, s *melody.Session) bool {
		role, _ := s.MustGet(keyRole).(common.Role)
		if !msg.Reaches(role) {
			return true
		}
		if err := h.pool.Submit(func() {
			if err := s.Write(data); err != nil && !errors.Is(err, melody.ErrSessionClosed) {
				logger.Warnf(ctx, "notify hub write fail uid: %v, err: %+v", s.MustGet(keyUID), err)
			}
		}); err != nil {
			logger.Errorf(ctx, "notify hub submit push err: %+v", err)
		}
		return true
	})
	return nil
}

func (h *Hub) Len() int {
	return int(h.sessions.Len())
}

func (h *Hub) Close(ctx context.Context) {
	if err := h.ws.Close(); err != nil {
		logger.Warnf(ctx, "notify hub close websocket err: %+v", err)
	}
	h.pool.Release()
}
