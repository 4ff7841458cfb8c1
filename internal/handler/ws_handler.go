package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/middleware"
	"github.com/stemsi/wma-backend/internal/response"
	"github.com/stemsi/wma-backend/internal/service"
	ws "github.com/stemsi/wma-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowedOrigins, r.Header.Get("Origin"))
		},
	}
}

func originAllowed(allowedOrigins []string, origin string) bool {
	if len(allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// WSHandler streams live GPA updates to students.
type WSHandler struct {
	rdb            *redis.Client
	gradingService *service.GradingService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, gradingService *service.GradingService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		gradingService: gradingService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// GPAStream godoc
// WS /ws/v1/student/gpa/stream?token=
// Sends the current standing on connect, then a gpa_updated event every time
// the recalc worker publishes a new aggregate for the student. Clients may
// send {"action":"ping"} or {"action":"refresh"}.
func (h *WSHandler) GPAStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	studentID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("student_id", studentID).Logger()
	wsLog.Info().Msg("Student connected to GPA stream")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before the snapshot so no update falls between the two.
	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.StudentGPAChannel(studentID))
	defer pubsub.Close()
	updates := pubsub.Channel()

	if err := h.sendSnapshot(ctx, conn, studentID); err != nil {
		wsLog.Debug().Err(err).Msg("Snapshot write failed")
		return
	}

	// gorilla allows one concurrent reader and one concurrent writer: the
	// reader goroutine only forwards actions, all writes happen below.
	actions := make(chan ws.Action)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
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

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-updates:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				return
			}

		case action := <-actions:
			var err error
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				err = h.sendSnapshot(ctx, conn, studentID)
			default:
				wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) sendSnapshot(ctx context.Context, conn *websocket.Conn, studentID int) error {
	standing, err := h.gradingService.Standing(ctx, studentID, 0)
	if err != nil {
		h.log.Error().Err(err).Int("student_id", studentID).Msg("Failed to load standing")
		return ws.WriteError(conn, "failed to load standing")
	}

	return ws.WriteTyped(conn, ws.StandingEvent{
		Event:        ws.EventSnapshot,
		StudentID:    studentID,
		Status:       standing.Status,
		Record:       standing.Record,
		CalculatedAt: time.Now().UTC(),
	})
}
