package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"codelens/internal/logger"
	"codelens/internal/store"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type watchWSInbound struct {
	Type string `json:"type"`
}

type watchWSOutbound struct {
	Type        string     `json:"type"`
	Revision    string     `json:"revision,omitempty"`
	ProjectName string     `json:"projectName,omitempty"`
	ReplacedAt  *time.Time `json:"replacedAt,omitempty"`
	Message     string     `json:"message,omitempty"`
}

func replacedEvent(snap store.Snapshot) watchWSOutbound {
	info := infoOf(snap)
	return watchWSOutbound{
		Type:        "report_replaced",
		Revision:    info.Revision,
		ProjectName: info.ProjectName,
		ReplacedAt:  &info.ReplacedAt,
	}
}

type WatchHandler struct {
	store *store.Store
}

func NewWatchHandler(st *store.Store) *WatchHandler {
	return &WatchHandler{store: st}
}

// HandleWatch streams a report_replaced event for the current report and
// for every later replacement. Clients may send {"type":"ping"} or
// {"type":"current"}.
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := logger.FromContext(ctx)

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		log.Warnw("watch ws set read deadline failed", logger.FieldError, err.Error())
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	writeCh := make(chan watchWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(watchWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	subCh, unsubscribe := h.store.Subscribe()
	defer unsubscribe()

	pushWatchWS(writeCh, watchWSOutbound{Type: "subscribed"})
	if snap, ok := h.store.Current(); ok {
		pushWatchWS(writeCh, replacedEvent(snap))
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-subCh:
				if !ok {
					return
				}
				pushWatchWS(writeCh, replacedEvent(snap))
			}
		}
	}()

	for {
		var in watchWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushWatchWS(writeCh, watchWSOutbound{Type: "pong"})
		case "current":
			if snap, ok := h.store.Current(); ok {
				pushWatchWS(writeCh, replacedEvent(snap))
			} else {
				pushWatchWS(writeCh, watchWSOutbound{Type: "empty"})
			}
		default:
			pushWatchWS(writeCh, watchWSOutbound{Type: "error", Message: "unknown message type"})
		}
	}
}

// pushWatchWS never blocks; when the buffer is full the oldest event is dropped.
func pushWatchWS(writeCh chan watchWSOutbound, out watchWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
