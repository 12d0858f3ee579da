package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/middleware"
	"github.com/nbwschool/admission-backend/internal/response"
	ws "github.com/nbwschool/admission-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// Subscriber opens Redis pub/sub subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// LiveFeedHandler pushes registration events to connected admins.
type LiveFeedHandler struct {
	rdb      Subscriber
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewLiveFeedHandler creates a new LiveFeedHandler.
func NewLiveFeedHandler(rdb Subscriber, log zerolog.Logger, allowedOrigins []string) *LiveFeedHandler {
	return &LiveFeedHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "live_feed_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// RegistrationStream godoc
// WS /ws/v1/admin/registrations/stream?token=
// Forwards every registration event published on Redis until the admin
// disconnects.
func (h *LiveFeedHandler) RegistrationStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("admin_id", claims.UserID).Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	channel := config.CacheKey.RegistrationEventsChannel()
	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("subscribe failed")
		ws.WriteError(conn, "live feed unavailable")
		return
	}

	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, Feed: channel}); err != nil {
		return
	}
	wsLog.Info().Msg("Admin connected to live feed")

	// The read loop only handles control frames and pings; all writes stay on
	// this goroutine.
	actions := make(chan ws.Action, 4)
	go func() {
		defer cancel()
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
		})
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case actions <- msg.Action:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Live feed closed")
			return

		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}

		case action := <-actions:
			switch action {
			case ws.ActionPing:
				if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
					return
				}
			default:
				ws.WriteError(conn, "unknown action: "+string(action))
			}

		case msg, ok := <-messages:
			if !ok {
				return
			}
			if !json.Valid([]byte(msg.Payload)) {
				wsLog.Warn().Msg("dropping malformed registration event")
				continue
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}
