package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

// CatalogHandler отдаёт read-side представление каталога и клиентов.
type CatalogHandler struct {
	products  domain.ProductRepository
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewCatalogHandler создаёт обработчик каталога.
func NewCatalogHandler(products domain.ProductRepository, customers domain.CustomerRepository, logger *log.Entry) *CatalogHandler {
	if logger == nil {
		logger = log.WithField("component", "rest-catalog")
	}
	return &CatalogHandler{products: products, customers: customers, logger: logger}
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toProductResponse(product))
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(queryLimit(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := make([]productResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *CatalogHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toCustomerResponse(customer))
}
