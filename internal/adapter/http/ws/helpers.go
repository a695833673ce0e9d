package wshandler

import (
	"context"
	"encoding/json"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	wrap "github.com/Temutjin2k/kekelink/pkg/logger/wrapper"
)

// errorResponse enqueues an error envelope to a single connection.
func (h *Handler) errorResponse(ctx context.Context, conn sender, message string, fields map[string]string) {
	data, err := json.Marshal(models.NewErrorMessage(message, fields))
	if err != nil {
		h.log.Error(ctx, "marshal error envelope", err)
		return
	}
	if err := conn.Send(data); err != nil {
		h.log.Debug(wrap.WithConnID(ctx, conn.ID()), "failed to send error envelope", "error", err)
	}
}

func (h *Handler) failedValidationResponse(ctx context.Context, conn sender, errors map[string]string) {
	h.errorResponse(ctx, conn, "validation failed", errors)
}

type sender interface {
	ID() string
	Send(data []byte) error
}
