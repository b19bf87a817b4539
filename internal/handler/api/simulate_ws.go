package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"PriceSim/internal/domain/models"
	"PriceSim/internal/service/metrics"
	"PriceSim/internal/service/ratelimit"
	"PriceSim/internal/usecase"
	xhttp "PriceSim/pkg/http"
	xlogger "PriceSim/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait       = 10 * time.Second
	wsPongWait        = 60 * time.Second
	wsPingInterval    = (wsPongWait * 9) / 10
	wsMaxMessageBytes = 64 << 10
)

// wsMessage is every frame the live simulation endpoint sends.
type wsMessage struct {
	Type   string             `json:"type"`
	Data   *models.Simulation `json:"data,omitempty"`
	Errors interface{}        `json:"errors,omitempty"`
}

// SimulateWSHandler reruns the preview simulation for every parameter change
// a client sends over a websocket. Nothing is stored.
type SimulateWSHandler struct {
	logger   *xlogger.Logger
	sim      *usecase.Simulator
	limiter  *ratelimit.Limiter
	upgrader websocket.Upgrader
}

func NewSimulateWSHandler(logger *xlogger.Logger, sim *usecase.Simulator, limiter *ratelimit.Limiter) *SimulateWSHandler {
	metrics.Register()
	return &SimulateWSHandler{
		logger:  logger,
		sim:     sim,
		limiter: limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *SimulateWSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/simulate/ws", h.Serve)
}

func (h *SimulateWSHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	connID := uuid.NewString()
	log := h.logger.With(xlogger.String("conn_id", connID))

	metrics.LiveConnections.Inc()
	defer metrics.LiveConnections.Dec()
	defer h.limiter.Forget(connID)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan wsMessage, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, out)
		cancel()
		_ = conn.Close()
	}()

	conn.SetReadLimit(wsMaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	log.Debug("live simulation connected")
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("live simulation read", xlogger.Error(err))
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		msg := h.handle(ctx, connID, b)
		select {
		case out <- msg:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	cancel()
	<-writerDone
	log.Debug("live simulation closed")
	return nil
}

// writeLoop owns every write on conn.
func (h *SimulateWSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan wsMessage) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("live simulation write", xlogger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *SimulateWSHandler) handle(ctx context.Context, connID string, b []byte) wsMessage {
	if !h.limiter.Allow(connID) {
		metrics.LiveMessages.WithLabelValues("throttled").Inc()
		return wsMessage{Type: "error", Errors: []*xhttp.AppError{xhttp.TooManyRequestsError("too many simulation requests")}}
	}

	req := &models.SimulateRequest{}
	if err := json.Unmarshal(b, req); err != nil {
		metrics.LiveMessages.WithLabelValues("invalid").Inc()
		return wsMessage{Type: "error", Errors: []*xhttp.AppError{xhttp.BadRequestError("message is not valid JSON")}}
	}
	if verr := xhttp.ValidateStruct(ctx, req); verr != nil {
		metrics.LiveMessages.WithLabelValues("invalid").Inc()
		return wsMessage{Type: "error", Errors: verr}
	}

	res, err := h.sim.Preview(*req.CurrentPrice, req.Signals.Model(), req.Template.Model())
	if err != nil {
		metrics.LiveMessages.WithLabelValues("rejected").Inc()
		return wsMessage{Type: "error", Errors: []*xhttp.AppError{toAppError(err)}}
	}
	metrics.LiveMessages.WithLabelValues("ok").Inc()
	return wsMessage{Type: "simulation", Data: res}
}
