package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	ordersvc "github.com/adosoftyazilim/blrb2b/internal/service/order"
)

// OrderHandler обслуживает REST-операции над заказами.
type OrderHandler struct {
	service *ordersvc.Service
	logger  *log.Entry
}

// NewOrderHandler создаёт обработчик заказов.
func NewOrderHandler(service *ordersvc.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.WithField("component", "rest-orders")
	}
	return &OrderHandler{service: service, logger: logger}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody{Message: "invalid JSON body"})
		return
	}

	items := make([]ordersvc.CreateItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ordersvc.CreateItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}

	order, err := h.service.Create(ordersvc.CreateRequest{
		CustomerID:      req.CustomerID,
		Items:           items,
		Notes:           req.Notes,
		DeliveryDate:    req.DeliveryDate,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetByNumber(mux.Vars(r)["orderNumber"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByCustomer(mux.Vars(r)["customerId"], queryLimit(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(mux.Vars(r)["status"])
	orders, err := h.service.ListByStatus(status, queryLimit(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody{Message: "invalid JSON body"})
		return
	}

	updated, err := h.service.UpdateStatus(orderID, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !updated {
		writeError(w, h.logger, domain.ErrOrderNotFound)
		return
	}

	order, err := h.service.GetByID(orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody{Message: "invalid JSON body"})
		return
	}

	order, err := h.service.Update(mux.Vars(r)["id"], ordersvc.UpdateRequest{
		Notes:           req.Notes,
		DeliveryDate:    req.DeliveryDate,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Delete(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !deleted {
		writeError(w, h.logger, domain.ErrOrderNotFound)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "deleted"})
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
