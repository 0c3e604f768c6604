package chat

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger  aqm.Logger
	tlm     *telemetry.HTTP
	channel *Channel
}

func NewHandler(channel *Channel, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
		channel: channel,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.SendMessage)
	})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMessages")
	defer finish()

	response := map[string]interface{}{
		"connected": h.channel.Connected(),
		"messages":  h.channel.Messages(),
	}
	aqm.Respond(w, http.StatusOK, response, nil)
}

type SendMessageRequest struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SendMessage")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req SendMessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("failed to decode request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		aqm.RespondError(w, http.StatusBadRequest, "body is required")
		return
	}

	msg, err := h.channel.Send(ctx, req.Sender, req.Body)
	if err != nil {
		log.Info("chat message dropped", "error", err)
		aqm.RespondError(w, http.StatusServiceUnavailable, "Chat channel disconnected")
		return
	}

	aqm.Respond(w, http.StatusCreated, msg, nil)
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
