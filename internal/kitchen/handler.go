package kitchen

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Gabriel44svg/Dopple-bar/pkg/enums/station"
	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
	cache     *TicketCache
	pos       *POSSource
	publisher events.Publisher
}

func NewHandler(cache *TicketCache, pos *POSSource, publisher events.Publisher, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		cache:     cache,
		pos:       pos,
		publisher: publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kds", func(r chi.Router) {
		r.Get("/tickets", h.ListTickets)
		r.Get("/summary", h.DemandSummary)
		r.Patch("/items/{id}/toggle", h.ToggleItem)
		r.Post("/orders/{id}/complete", h.CompleteTicket)
		r.Put("/orders/{id}/prioritize", h.PrioritizeTicket)
	})
}

// ListTickets returns the display queue for one station, prioritized tickets
// first. Without a station param it returns every station's tickets.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTickets")
	defer finish()

	st, ok := h.parseStation(w, r)
	if !ok {
		return
	}

	tickets := h.cache.TicketsForStation(st)
	aqm.Respond(w, http.StatusOK, tickets, nil)
}

// DemandSummary returns pending quantities aggregated by product name, the
// batch-cooking view.
func (h *Handler) DemandSummary(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DemandSummary")
	defer finish()

	st, ok := h.parseStation(w, r)
	if !ok {
		return
	}

	rows := h.cache.Summary(st)
	aqm.Respond(w, http.StatusOK, rows, nil)
}

// ToggleItem flips the preparation status of a single unit and reports the
// resulting state back to the POS. The projection updates immediately so the
// cook sees the flip without a round trip.
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, orderID, ok := h.cache.Toggle(itemID)
	if !ok {
		aqm.RespondError(w, http.StatusNotFound, "Item not on any ticket")
		return
	}

	h.publishToggle(ctx, orderID, item)
	log.Info("item toggled", "item_id", itemID, "prepared", item.Prepared)

	aqm.Respond(w, http.StatusOK, item, nil)
}

// CompleteTicket marks a whole ticket done. The ticket leaves the display
// and the POS moves the order to ready.
func (h *Handler) CompleteTicket(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CompleteTicket")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ticket := h.cache.Remove(orderID)
	if ticket == nil {
		aqm.RespondError(w, http.StatusNotFound, "Ticket not found")
		return
	}

	h.publishCompleted(ctx, orderID, r.URL.Query().Get("station"))
	log.Info("ticket completed", "order_id", orderID, "folio", ticket.Folio)

	w.WriteHeader(http.StatusNoContent)
}

// PrioritizeTicket bumps an order to the top of the station displays. The
// POS owns the flag; the local projection is patched so the display reorders
// immediately.
func (h *Handler) PrioritizeTicket(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PrioritizeTicket")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if h.pos != nil {
		if err := h.pos.Prioritize(ctx, orderID.String()); err != nil {
			log.Error("cannot prioritize order on POS", "error", err, "order_id", orderID)
			aqm.RespondError(w, http.StatusBadGateway, "Could not prioritize order")
			return
		}
	}

	h.cache.ApplyOrderPrioritized(event.OrderLifecycleEvent{
		EventType: event.EventOrderPrioritized,
		OrderID:   orderID.String(),
	})
	log.Info("ticket prioritized", "order_id", orderID)

	ticket, ok := h.cache.Get(orderID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	aqm.Respond(w, http.StatusOK, ticket, nil)
}

func (h *Handler) parseStation(w http.ResponseWriter, r *http.Request) (string, bool) {
	st := r.URL.Query().Get("station")
	if st == "" {
		return "", true
	}
	if station.ByName(st) == nil {
		aqm.RespondError(w, http.StatusBadRequest, "Unknown station")
		return "", false
	}
	return st, true
}

func (h *Handler) publishToggle(ctx context.Context, orderID uuid.UUID, item TicketItem) {
	if h.publisher == nil {
		return
	}

	evt := event.KitchenItemToggledEvent{
		EventType:  event.EventKitchenItemToggled,
		OccurredAt: time.Now().UTC(),
		OrderID:    orderID.String(),
		ItemID:     item.ItemID.String(),
		Station:    item.Station,
		Prepared:   item.Prepared,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("cannot marshal item toggled event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, event.KitchenTicketsTopic, payload); err != nil {
		h.logger.Error("cannot publish item toggled event", "error", err)
	}
}

func (h *Handler) publishCompleted(ctx context.Context, orderID uuid.UUID, st string) {
	if h.publisher == nil {
		return
	}

	evt := event.KitchenTicketCompletedEvent{
		EventType:  event.EventKitchenTicketCompleted,
		OccurredAt: time.Now().UTC(),
		OrderID:    orderID.String(),
		Station:    st,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("cannot marshal ticket completed event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, event.KitchenTicketsTopic, payload); err != nil {
		h.logger.Error("cannot publish ticket completed event", "error", err)
	}
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
