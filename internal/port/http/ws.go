package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type streamHandler struct {
	feed          *service.FeedService
	notifications *service.NotificationService
	sessions      *identity.SessionBroadcaster
	log           logger.Logger
}

// feedStream upgrades to a websocket and pushes a fresh feed snapshot
// on every relevant change. Filter parameters come from the query
// string and are fixed for the connection's lifetime.
func (h *streamHandler) feedStream(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	filter := filterFromQuery(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub, err := h.feed.Subscribe(r.Context(), userID, filter)
	if err != nil {
		h.log.Errorf("feed subscribe failed for user %s: %v", userID, err)
		return
	}
	defer sub.Cancel()

	h.pump(conn, userID, func() (interface{}, bool) {
		snapshot, ok := <-sub.Updates()
		return snapshot, ok
	})
}

// inboxStream pushes inbox snapshots the same way.
func (h *streamHandler) inboxStream(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub, err := h.notifications.Subscribe(r.Context(), userID)
	if err != nil {
		h.log.Errorf("inbox subscribe failed for user %s: %v", userID, err)
		return
	}
	defer sub.Cancel()

	h.pump(conn, userID, func() (interface{}, bool) {
		snapshot, ok := <-sub.Updates()
		return snapshot, ok
	})
}

// pump writes successive snapshots to the socket until the
// subscription ends, the peer goes away, or the user signs out.
func (h *streamHandler) pump(conn *websocket.Conn, userID string, next func() (interface{}, bool)) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Reader goroutine: we never expect client messages, but reading is
	// how we notice the peer closing.
	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pumpDone := make(chan struct{})
	defer close(pumpDone)

	snapshots := make(chan interface{})
	go func() {
		defer close(snapshots)
		for {
			snapshot, ok := next()
			if !ok {
				return
			}
			select {
			case snapshots <- snapshot:
			case <-pumpDone:
				return
			}
		}
	}()

	sessionEvents, cancelSession := h.sessions.Subscribe()
	defer cancelSession()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case event := <-sessionEvents:
			if event.UserID == userID && event.State == identity.SignedOut {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "signed out"))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-peerGone:
			return
		}
	}
}

// filterFromQuery builds a FilterSpec from query parameters. Multi-value
// fields are comma separated.
func filterFromQuery(r *http.Request) entity.FilterSpec {
	q := r.URL.Query()

	var maxPrice int64
	if raw := q.Get("max_price_minor"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			maxPrice = parsed
		}
	}

	return entity.FilterSpec{
		Query:         q.Get("query"),
		Types:         splitCSV(q.Get("types")),
		Conditions:    splitCSV(q.Get("conditions")),
		Colors:        splitCSV(q.Get("colors")),
		MaxPriceMinor: maxPrice,
		Size: entity.SizeSelector{
			Gender: q.Get("size_gender"),
			Type:   q.Get("size_type"),
			Size:   q.Get("size_value"),
		},
		SortKey:       entity.SortKey(q.Get("sort_key")),
		SortDir:       entity.SortDirection(q.Get("sort_dir")),
		FollowingOnly: q.Get("following_only") == "true",
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
