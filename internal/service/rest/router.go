package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	ordersvc "github.com/adosoftyazilim/blrb2b/internal/service/order"
)

// NewRouter собирает API-роутер сервиса.
func NewRouter(
	orders *ordersvc.Service,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	logger *log.Entry,
) *mux.Router {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}

	orderHandler := NewOrderHandler(orders, logger.WithField("handler", "orders"))
	catalogHandler := NewCatalogHandler(products, customers, logger.WithField("handler", "catalog"))

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/orders", orderHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/orders/number/{orderNumber}", orderHandler.GetByNumber).Methods(http.MethodGet)
	api.HandleFunc("/orders/customer/{customerId}", orderHandler.ListByCustomer).Methods(http.MethodGet)
	api.HandleFunc("/orders/status/{status}", orderHandler.ListByStatus).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", orderHandler.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/status", orderHandler.UpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}", orderHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}", orderHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/products", catalogHandler.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", catalogHandler.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", catalogHandler.GetCustomer).Methods(http.MethodGet)

	return router
}
