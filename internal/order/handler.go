package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gabriel44svg/Dopple-bar/internal/authz"
	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger     aqm.Logger
	config     *aqm.Config
	tlm        *telemetry.HTTP
	orderRepo  OrderRepo
	itemRepo   LineItemRepo
	promoRepo  PromotionRepo
	couponRepo CouponRepo
	reasonRepo ReasonRepo
	payRepo    PaymentRepo
	policyRepo authz.PolicyRepo
	publisher  events.Publisher
}

type HandlerDeps struct {
	Repos     Repos
	Policies  authz.PolicyRepo
	Publisher events.Publisher
}

type Repos struct {
	OrderRepo     OrderRepo
	LineItemRepo  LineItemRepo
	PromotionRepo PromotionRepo
	CouponRepo    CouponRepo
	ReasonRepo    ReasonRepo
	PaymentRepo   PaymentRepo
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return &Handler{
		config:     config,
		logger:     logger,
		tlm:        telemetry.NewHTTP(),
		orderRepo:  hd.Repos.OrderRepo,
		itemRepo:   hd.Repos.LineItemRepo,
		promoRepo:  hd.Repos.PromotionRepo,
		couponRepo: hd.Repos.CouponRepo,
		reasonRepo: hd.Repos.ReasonRepo,
		payRepo:    hd.Repos.PaymentRepo,
		policyRepo: hd.Policies,
		publisher:  hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/open", h.ListOpenOrders)
		r.Get("/{id}", h.GetOrder)
		r.Get("/{id}/quote", h.QuoteOrder)
		r.Post("/{id}/send", h.SendOrder)
		r.Post("/{id}/close", h.CloseOrder)
		r.Put("/{id}/customer", h.AssignCustomer)
		r.Put("/{id}/prioritize", h.PrioritizeOrder)

		r.Route("/{orderID}/items", func(r chi.Router) {
			r.Post("/", h.CreateLineItem)
			r.Get("/", h.ListLineItems)
		})

		r.Post("/{orderID}/cancellations", h.CancelGroupUnit)
	})

	r.Get("/kds/orders", h.ListKitchenOrders)

	r.Get("/promotions", h.ListPromotions)
	r.Get("/coupons/{code}", h.GetCoupon)

	r.Route("/cancellation-reasons", func(r chi.Router) {
		r.Get("/", h.ListCancellationReasons)
		r.Post("/", h.CreateCancellationReason)
	})
}

// Order handlers

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeOrderCreatePayload(w, r, log)
	if !ok {
		return
	}

	order := NewOrder()
	if req.TableID != nil && *req.TableID != uuid.Nil {
		order.TableID = req.TableID
		order.TableName = req.TableName
	}
	order.CustomerID = req.CustomerID
	order.CreatedBy = req.CreatedBy
	order.BeforeCreate()

	if err := h.orderRepo.Create(ctx, order); err != nil {
		log.Error("cannot create order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create order")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil || order == nil {
		log.Error("error loading order", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) ListOpenOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOpenOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orders, err := h.orderRepo.ListOpen(ctx)
	if err != nil {
		log.Error("error retrieving open orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	aqm.RespondCollection(w, orders, "order")
}

// QuoteOrder prices the order as it stands. An optional coupon query param
// applies a coupon code; an unknown code fails with 404 rather than being
// silently ignored.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.QuoteOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil || order == nil {
		log.Error("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	coupon, ok := h.resolveCoupon(w, r, log)
	if !ok {
		return
	}

	groups, quote, err := h.priceOrder(r, order, coupon)
	if err != nil {
		log.Error("cannot price order", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not price order")
		return
	}

	response := map[string]interface{}{
		"order_id": order.ID,
		"groups":   groups,
		"quote":    quote,
	}
	aqm.Respond(w, http.StatusOK, response, nil)
}

func (h *Handler) SendOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SendOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil || order == nil {
		log.Error("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	alreadySent := order.Status == StatusSent

	items, err := h.itemRepo.ListByOrder(ctx, id)
	if err != nil {
		log.Error("cannot list order items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve order items")
		return
	}
	if countActive(items) == 0 {
		log.Debug("send rejected, order has no active items", "id", id.String())
		h.respondDomainError(w, ErrEmptyOrder)
		return
	}

	if err := order.Send(); err != nil {
		log.Debug("send rejected", "id", id.String(), "status", order.Status, "error", err)
		h.respondDomainError(w, err)
		return
	}

	if !alreadySent {
		if err := h.orderRepo.Update(ctx, order); err != nil {
			log.Error("cannot update order", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not send order")
			return
		}
		h.publishLifecycle(ctx, order, event.EventOrderSent)
		log.Info("order sent to kitchen", "order_id", id, "folio", order.Folio)
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

// CloseOrder settles the order with cash. The server reprices the order from
// its own data before accepting the payment; the client's displayed total is
// advisory only.
func (h *Handler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CloseOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil || order == nil {
		log.Error("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	req, ok := h.decodeCloseOrderPayload(w, r, log)
	if !ok {
		return
	}

	var coupon *Coupon
	if req.CouponCode != "" {
		coupon, err = h.couponRepo.Get(ctx, req.CouponCode)
		if err != nil {
			log.Error("cannot load coupon", "error", err, "code", req.CouponCode)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not load coupon")
			return
		}
		if coupon == nil || !coupon.Redeemable(time.Now()) {
			aqm.RespondError(w, http.StatusNotFound, "Coupon not found")
			return
		}
	}

	_, quote, err := h.priceOrder(r, order, coupon)
	if err != nil {
		log.Error("cannot price order", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not price order")
		return
	}

	if !CanFinalize(quote.Total, req.Received) {
		log.Debug("close rejected, insufficient cash", "id", id.String(), "total", quote.Total, "received", req.Received)
		h.respondDomainError(w, ErrInsufficientCash)
		return
	}

	if err := order.Close(PaymentMethodCash, quote); err != nil {
		log.Debug("close rejected", "id", id.String(), "status", order.Status, "error", err)
		h.respondDomainError(w, err)
		return
	}

	if err := h.orderRepo.Update(ctx, order); err != nil {
		log.Error("cannot close order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not close order")
		return
	}

	payment := NewPayment(order.ID, quote.Total, req.Received, req.ClosedBy)
	if err := h.payRepo.Create(ctx, payment); err != nil {
		log.Error("cannot record payment", "error", err, "order_id", id.String())
		// The order is already closed; the payment record is best effort.
	}

	h.publishLifecycle(ctx, order, event.EventOrderClosed)
	log.Info("order closed", "order_id", id, "folio", order.Folio, "total", quote.Total, "change", payment.Change)

	response := map[string]interface{}{
		"order":   order,
		"payment": payment,
	}
	aqm.Respond(w, http.StatusOK, response, nil)
}

func (h *Handler) AssignCustomer(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AssignCustomer")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil || order == nil {
		log.Error("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if order.Status == StatusClosed {
		h.respondDomainError(w, ErrOrderClosed)
		return
	}

	req, ok := h.decodeAssignCustomerPayload(w, r, log)
	if !ok {
		return
	}

	order.CustomerID = req.CustomerID
	order.BeforeUpdate()

	if err := h.orderRepo.Update(ctx, order); err != nil {
		log.Error("cannot assign customer", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not assign customer")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

func (h *Handler) PrioritizeOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PrioritizeOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil || order == nil {
		log.Error("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if order.Status == StatusClosed {
		h.respondDomainError(w, ErrOrderClosed)
		return
	}

	order.Prioritize()
	if err := h.orderRepo.Update(ctx, order); err != nil {
		log.Error("cannot prioritize order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not prioritize order")
		return
	}

	h.publishLifecycle(ctx, order, event.EventOrderPrioritized)
	log.Info("order prioritized", "order_id", id, "folio", order.Folio)

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, order, links...)
}

// LineItem handlers

func (h *Handler) CreateLineItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateLineItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeLineItemCreatePayload(w, r, log)
	if !ok {
		return
	}
	if req.ProductID == uuid.Nil {
		log.Debug("missing product id in create item request")
		aqm.RespondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	order, err := h.orderRepo.Get(ctx, orderID)
	if err != nil || order == nil {
		log.Error("order not found for item create", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if !order.AcceptsItems() {
		h.respondDomainError(w, ErrOrderClosed)
		return
	}

	item := NewLineItem(orderID, req.ProductID)
	item.ProductName = req.ProductName
	item.UnitPrice = req.UnitPrice
	item.Notes = strings.TrimSpace(req.Notes)
	item.Station = req.Station
	item.CreatedBy = req.CreatedBy
	item.BeforeCreate()

	if err := h.itemRepo.Create(ctx, item); err != nil {
		log.Error("cannot create line item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create line item")
		return
	}

	h.publishItemEvent(ctx, event.EventOrderItemCreated, item, order, "", "")

	links := aqm.RESTfulLinksFor(item)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, item, links...)
}

// ListLineItems returns the raw rows of an order. Pass grouped=true for the
// collapsed display view.
func (h *Handler) ListLineItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListLineItems")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	items, err := h.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		log.Error("error retrieving line items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve line items")
		return
	}

	if r.URL.Query().Get("grouped") == "true" {
		groups := GroupLineItems(items)
		aqm.Respond(w, http.StatusOK, groups, nil)
		return
	}

	aqm.RespondCollection(w, items, "order-item")
}

// CancelGroupUnit removes one unit from a display group. The server, not the
// client, picks the row to cancel: always the most recently appended active
// unit of the group.
func (h *Handler) CancelGroupUnit(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelGroupUnit")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeCancelPayload(w, r, log)
	if !ok {
		return
	}

	if !authz.CanCancel(ctx, h.policyRepo, req.Role) {
		log.Info("cancellation denied", "role", req.Role, "order_id", orderID.String())
		h.respondDomainError(w, ErrNotAllowed)
		return
	}

	catalog, err := h.reasonRepo.List(ctx)
	if err != nil {
		log.Error("cannot load cancellation reasons", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load cancellation reasons")
		return
	}
	if err := ValidateReason(req.Reason, catalog); err != nil {
		log.Debug("cancellation rejected", "reason", req.Reason, "error", err)
		h.respondDomainError(w, err)
		return
	}

	order, err := h.orderRepo.Get(ctx, orderID)
	if err != nil || order == nil {
		log.Error("order not found", "error", err, "id", orderID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.Status == StatusClosed {
		h.respondDomainError(w, ErrOrderClosed)
		return
	}

	items, err := h.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		log.Error("cannot list order items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve line items")
		return
	}

	key := GroupKey(req.ProductID, strings.TrimSpace(req.Notes))
	var target *GroupedLine
	for _, g := range GroupLineItems(items) {
		if g.Key == key {
			target = &g
			break
		}
	}
	if target == nil {
		h.respondDomainError(w, ErrEmptyGroup)
		return
	}

	itemID, err := target.NewestItemID()
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	item, err := h.itemRepo.Get(ctx, itemID)
	if err != nil || item == nil {
		log.Error("cannot load line item", "error", err, "item_id", itemID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not cancel item")
		return
	}

	item.Cancel(req.Reason, req.RequestedBy)
	if err := h.itemRepo.Update(ctx, item); err != nil {
		log.Error("cannot cancel line item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not cancel item")
		return
	}

	h.publishItemEvent(ctx, event.EventOrderItemCancelled, item, order, req.Reason, req.RequestedBy)
	log.Info("line item cancelled", "item_id", itemID, "order_id", orderID, "reason", req.Reason)

	aqm.Respond(w, http.StatusOK, item, nil)
}

// ListKitchenOrders returns orders currently in sent_to_kitchen with their
// active items nested, the shape the KDS polls to warm and refresh its
// projection. Ready orders have left the stations and are excluded. An
// optional station query param narrows items to one station.
func (h *Handler) ListKitchenOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListKitchenOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	station := r.URL.Query().Get("station")

	orders, err := h.orderRepo.ListOpen(ctx)
	if err != nil {
		log.Error("error retrieving open orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	views := make([]KitchenOrderView, 0, len(orders))
	for _, o := range orders {
		if o.Status != StatusSent {
			continue
		}
		items, err := h.itemRepo.ListByOrder(ctx, o.ID)
		if err != nil {
			log.Error("cannot list order items", "error", err, "order_id", o.ID.String())
			continue
		}
		view := NewKitchenOrderView(o, items, station)
		if len(view.Items) == 0 {
			continue
		}
		views = append(views, view)
	}

	aqm.Respond(w, http.StatusOK, views, nil)
}

// Catalog handlers

func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListPromotions")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	promos, err := h.promoRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving promotions", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve promotions")
		return
	}

	now := time.Now()
	active := make([]*Promotion, 0, len(promos))
	for _, p := range promos {
		if p.InWindow(now) {
			active = append(active, p)
		}
	}

	aqm.RespondCollection(w, active, "promotion")
}

func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCoupon")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	code := chi.URLParam(r, "code")
	if code == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Missing coupon code")
		return
	}

	coupon, err := h.couponRepo.Get(ctx, code)
	if err != nil {
		log.Error("error loading coupon", "error", err, "code", code)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load coupon")
		return
	}
	if coupon == nil || !coupon.Redeemable(time.Now()) {
		aqm.RespondError(w, http.StatusNotFound, "Coupon not found")
		return
	}

	aqm.Respond(w, http.StatusOK, coupon, nil)
}

func (h *Handler) ListCancellationReasons(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCancellationReasons")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	reasons, err := h.reasonRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving cancellation reasons", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve cancellation reasons")
		return
	}

	aqm.RespondCollection(w, reasons, "cancellation-reason")
}

func (h *Handler) CreateCancellationReason(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateCancellationReason")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeReasonCreatePayload(w, r, log)
	if !ok {
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		aqm.RespondError(w, http.StatusBadRequest, "label is required")
		return
	}

	reason := NewCancellationReason(label)
	if err := h.reasonRepo.Create(ctx, reason); err != nil {
		log.Error("cannot create cancellation reason", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create cancellation reason")
		return
	}

	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, reason)
}

// Helper methods

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) parseOrderIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "orderID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid order ID", "orderID", idStr)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotAllowed):
		aqm.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrReasonRequired), errors.Is(err, ErrUnknownReason), errors.Is(err, ErrInsufficientCash):
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrOrderClosed), errors.Is(err, ErrNotSent), errors.Is(err, ErrOrderReady), errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrEmptyGroup):
		aqm.RespondError(w, http.StatusConflict, err.Error())
	default:
		aqm.RespondError(w, http.StatusInternalServerError, "Unexpected error")
	}
}

func (h *Handler) priceOrder(r *http.Request, order *Order, coupon *Coupon) ([]GroupedLine, Quote, error) {
	ctx := r.Context()

	items, err := h.itemRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, Quote{}, err
	}
	promos, err := h.promoRepo.List(ctx)
	if err != nil {
		return nil, Quote{}, err
	}

	groups := GroupLineItems(items)
	quote := Price(groups, promos, coupon, time.Now())
	return groups, quote, nil
}

// resolveCoupon reads the optional coupon query param. Returns (nil, true)
// when no coupon was requested; writes the error response itself otherwise.
func (h *Handler) resolveCoupon(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*Coupon, bool) {
	code := r.URL.Query().Get("coupon")
	if code == "" {
		return nil, true
	}

	coupon, err := h.couponRepo.Get(r.Context(), code)
	if err != nil {
		log.Error("cannot load coupon", "error", err, "code", code)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not load coupon")
		return nil, false
	}
	if coupon == nil || !coupon.Redeemable(time.Now()) {
		aqm.RespondError(w, http.StatusNotFound, "Coupon not found")
		return nil, false
	}
	return coupon, true
}

func countActive(items []*LineItem) int {
	n := 0
	for _, it := range items {
		if it.Active() {
			n++
		}
	}
	return n
}

// Payload decoders

type OrderCreateRequest struct {
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	TableName  string     `json:"table_name,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	CreatedBy  string     `json:"created_by"`
}

type LineItemCreateRequest struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
	Notes       string    `json:"notes,omitempty"`
	Station     string    `json:"station,omitempty"`
	CreatedBy   string    `json:"created_by"`
}

type CancelRequest struct {
	ProductID   uuid.UUID `json:"product_id"`
	Notes       string    `json:"notes,omitempty"`
	Reason      string    `json:"reason"`
	Role        string    `json:"role"`
	RequestedBy string    `json:"requested_by"`
}

type CloseOrderRequest struct {
	Received   float64 `json:"received"`
	CouponCode string  `json:"coupon_code,omitempty"`
	ClosedBy   string  `json:"closed_by"`
}

type AssignCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
}

type ReasonCreateRequest struct {
	Label string `json:"label"`
}

func (h *Handler) decodeOrderCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (OrderCreateRequest, bool) {
	var req OrderCreateRequest
	if !h.decodeBody(w, r, log, &req) {
		return OrderCreateRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeLineItemCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (LineItemCreateRequest, bool) {
	var req LineItemCreateRequest
	if !h.decodeBody(w, r, log, &req) {
		return LineItemCreateRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeCancelPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (CancelRequest, bool) {
	var req CancelRequest
	if !h.decodeBody(w, r, log, &req) {
		return CancelRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeCloseOrderPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (CloseOrderRequest, bool) {
	var req CloseOrderRequest
	if !h.decodeBody(w, r, log, &req) {
		return CloseOrderRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeAssignCustomerPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (AssignCustomerRequest, bool) {
	var req AssignCustomerRequest
	if !h.decodeBody(w, r, log, &req) {
		return AssignCustomerRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeReasonCreatePayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (ReasonCreateRequest, bool) {
	var req ReasonCreateRequest
	if !h.decodeBody(w, r, log, &req) {
		return ReasonCreateRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, log aqm.Logger, target interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("failed to decode request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

// Event publishing

func (h *Handler) publishItemEvent(ctx context.Context, eventType string, item *LineItem, order *Order, reason, cancelledBy string) {
	if h.publisher == nil {
		return
	}

	evt := event.OrderItemEvent{
		EventType:   eventType,
		OccurredAt:  time.Now().UTC(),
		OrderID:     item.OrderID.String(),
		ItemID:      item.ID.String(),
		Seq:         item.Seq,
		ProductID:   item.ProductID.String(),
		Notes:       item.Notes,
		Station:     item.Station,
		ProductName: item.ProductName,
		Reason:      reason,
		CancelledBy: cancelledBy,
	}
	if order != nil {
		evt.TableName = order.TableName
		evt.OrderFolio = order.Folio
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("cannot marshal order item event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, event.OrderItemsTopic, payload); err != nil {
		h.logger.Error("cannot publish order item event", "error", err, "event_type", eventType)
	}
}

func (h *Handler) publishLifecycle(ctx context.Context, order *Order, eventType string) {
	if h.publisher == nil {
		return
	}

	evt := event.OrderLifecycleEvent{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		OrderID:    order.ID.String(),
		OrderFolio: order.Folio,
		Status:     order.Status,
		TableName:  order.TableName,
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("cannot marshal order lifecycle event", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, event.OrderLifecycleTopic, payload); err != nil {
		h.logger.Error("cannot publish order lifecycle event", "error", err, "event_type", eventType)
	}
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
