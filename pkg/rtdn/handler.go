package rtdn

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// maxBodySize caps webhook request bodies. Real notifications are well
// under a kilobyte.
const maxBodySize = 64 * 1024

// Handler exposes the processor as an HTTP webhook endpoint.
type Handler struct {
	processor *Processor
	logger    *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger supplies an external slog.Logger instance.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates the webhook HTTP handler. Panics if processor is nil
// to fail fast during initialization.
func NewHandler(processor *Processor, opts ...HandlerOption) *Handler {
	if processor == nil {
		panic("rtdn: Processor is required")
	}
	h := &Handler{
		processor: processor,
		logger:    newNoopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP accepts POSTed developer notifications.
//
// Undecodable payloads get a 400; the publisher will still redeliver those,
// but they never reach the ledger. Backend failures get a 500 so the
// publisher retries. Everything else, including notifications for unknown
// purchase tokens and non-subscription events on the same topic, is
// acknowledged with a 200.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to read webhook body", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	notification, err := DecodeNotification(body)
	if err != nil {
		h.logger.WarnContext(r.Context(), "malformed notification", slog.Any("error", err))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   ErrMalformedPayload.Error(),
		})
		return
	}

	if err := h.processor.Process(r.Context(), notification); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   ErrProcessingFailed.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Response already committed; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(payload)
}
