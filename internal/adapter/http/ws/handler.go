package wshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Temutjin2k/kekelink/internal/adapter/http/ws/dto"
	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/Temutjin2k/kekelink/internal/domain/types"
	"github.com/Temutjin2k/kekelink/internal/service/hub"
	"github.com/Temutjin2k/kekelink/pkg/logger"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
	"github.com/Temutjin2k/kekelink/pkg/metrics"
	"github.com/Temutjin2k/kekelink/pkg/validator"
	ws "github.com/Temutjin2k/kekelink/pkg/wsHub"
	"github.com/gorilla/websocket"
)

// Inbound message outcomes used as the metrics "result" label.
const (
	resultOK          = "ok"
	resultIgnored     = "ignored"
	resultInvalid     = "invalid"
	resultMalformed   = "malformed"
	resultUnknown     = "unknown"
	resultRejected    = "rejected"
	resultServerError = "error"
)

// Hub is the realtime core the handler drives.
type Hub interface {
	Connect(ctx context.Context, c hub.Conn) error
	Register(ctx context.Context, c hub.Conn, userID int64, role types.UserRole) error
	Unregister(ctx context.Context, c hub.Conn)
	UpdateLocation(ctx context.Context, c hub.Conn, upd models.LocationUpdate) (bool, error)
	RouteSOS(ctx context.Context, sender hub.Conn, req models.SOSRequest) (int, error)
	ReportAnomaly(ctx context.Context, sender hub.Conn, reason string, risk types.RiskLevel) (int, error)
}

type Handler struct {
	hub      Hub
	upgrader websocket.Upgrader
	opts     ws.Options
	log      logger.Logger
}

func NewHandler(h Hub, opts ws.Options, allowedOrigins []string, log logger.Logger) *Handler {
	return &Handler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		opts: opts,
		log:  log,
	}
}

// ServeWS godoc
// @Summary      Realtime channel
// @Description  Upgrades to a WebSocket carrying auth, location_update, sos and anomaly_alert messages
// @Tags         realtime
// @Success      101
// @Router       /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionWSConnect)

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn(ctx, "websocket upgrade failed", "error", err)
		return
	}

	conn := ws.NewConn(sock, h.opts)
	ctx = wrap.WithConnID(ctx, conn.ID())

	if err := h.hub.Connect(ctx, conn); err != nil {
		h.log.Error(ctx, "register connection", err)
		_ = conn.Close()
		return
	}

	go func() {
		if err := conn.WritePump(ctx); err != nil && !errors.Is(err, context.Canceled) {
			h.log.Debug(ctx, "write pump stopped", "error", err)
		}
	}()

	if err := conn.Listen(func(data []byte) { h.dispatch(ctx, conn, data) }); err != nil {
		h.log.Debug(ctx, "read loop stopped", "error", err)
	}

	h.hub.Unregister(wrap.WithAction(ctx, types.ActionWSDisconnect), conn)
	_ = conn.Close()
}

func (h *Handler) dispatch(ctx context.Context, conn *ws.Conn, data []byte) {
	msgType, msg, err := dto.Decode(data)
	if err != nil {
		result := resultMalformed
		if errors.Is(err, types.ErrUnknownMsgType) {
			result = resultUnknown
		}
		metrics.RecordInbound(inboundLabel(msgType), result)
		h.log.Debug(ctx, "bad inbound message", "error", err)
		h.errorResponse(ctx, conn, err.Error(), nil)
		return
	}

	v := validator.New()
	msg.Validate(v)
	if !v.Valid() {
		metrics.RecordInbound(string(msgType), resultInvalid)
		h.failedValidationResponse(ctx, conn, v.Errors)
		return
	}

	var result string
	switch m := msg.(type) {
	case *dto.AuthMessage:
		result = h.handleAuth(ctx, conn, m)
	case *dto.LocationUpdateMessage:
		result = h.handleLocation(ctx, conn, m)
	case *dto.SOSMessage:
		result = h.handleSOS(ctx, conn, m)
	case *dto.AnomalyMessage:
		result = h.handleAnomaly(ctx, conn, m)
	}
	metrics.RecordInbound(string(msgType), result)
}

func (h *Handler) handleAuth(ctx context.Context, conn *ws.Conn, m *dto.AuthMessage) string {
	ctx = wrap.WithAction(ctx, types.ActionWSAuth)
	if err := h.hub.Register(ctx, conn, int64(m.UserID), m.Role); err != nil {
		h.log.Warn(ctx, "auth rejected", "error", err)
		h.errorResponse(ctx, conn, err.Error(), nil)
		return resultRejected
	}
	return resultOK
}

func (h *Handler) handleLocation(ctx context.Context, conn *ws.Conn, m *dto.LocationUpdateMessage) string {
	ctx = wrap.WithAction(ctx, types.ActionWSLocationUpdate)

	stored, err := h.hub.UpdateLocation(ctx, conn, m.ToModel())
	switch {
	case errors.Is(err, types.ErrUnauthenticated):
		h.log.Debug(ctx, "location update before auth ignored")
		return resultIgnored
	case errors.Is(err, types.ErrInvalidCoordinates):
		h.errorResponse(ctx, conn, err.Error(), nil)
		return resultInvalid
	case err != nil:
		h.log.Error(ctx, "update location", err)
		return resultServerError
	case !stored:
		h.log.Debug(ctx, "location update from role without a location table ignored")
		return resultIgnored
	}
	return resultOK
}

func (h *Handler) handleSOS(ctx context.Context, conn *ws.Conn, m *dto.SOSMessage) string {
	ctx = wrap.WithAction(ctx, types.ActionWSSOS)

	if m.HasAnyCoordinate() && !m.HasUsableOrigin() {
		h.log.Warn(ctx, "sos coordinates unusable, routing without proximity filter", "lat", m.Lat, "lng", m.Lng)
	}

	if _, err := h.hub.RouteSOS(ctx, conn, m.ToModel()); err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			h.log.Warn(ctx, "sos from unauthenticated connection rejected")
			h.errorResponse(ctx, conn, "authenticate before sending sos", nil)
			return resultRejected
		}
		h.log.Error(ctx, "route sos", err)
		return resultServerError
	}
	return resultOK
}

func (h *Handler) handleAnomaly(ctx context.Context, conn *ws.Conn, m *dto.AnomalyMessage) string {
	risk := m.RiskLevel
	if risk == "" {
		risk = types.RiskMedium
	}

	if _, err := h.hub.ReportAnomaly(ctx, conn, m.Reason, risk); err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			h.errorResponse(ctx, conn, "authenticate before reporting anomalies", nil)
			return resultRejected
		}
		h.log.Error(ctx, "report anomaly", err)
		return resultServerError
	}
	return resultOK
}

// inboundLabel keeps metric cardinality bounded when clients send junk types.
func inboundLabel(t types.MessageType) string {
	switch t {
	case types.MsgAuth, types.MsgLocationUpdate, types.MsgSOS, types.MsgAnomalyAlert:
		return string(t)
	default:
		return "other"
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
