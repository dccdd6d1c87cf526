package transport

import (
	"net/http"

	"stockroom/internal/middleware"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderCustomerRequest identifies the buying customer; phone is the lookup
// key, unknown phones create a new customer record.
type OrderCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address"`
}

// CreateOrderRequest is the create-order payload.
type CreateOrderRequest struct {
	Customer OrderCustomerRequest `json:"customer" validate:"required"`
	Items    []ItemRequest        `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest replaces an order's item list wholesale.
type UpdateOrderRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleHandler serves the sales order endpoints.
type SaleHandler struct {
	saleService service.SaleService
	logger      *zap.Logger
}

// NewSaleHandler creates a SaleHandler.
func NewSaleHandler(saleService service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{saleService: saleService, logger: logger}
}

// RegisterRoutes registers sale routes on an already-authenticated router.
// Order mutation and lookup is open to both staff and admins.
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Post("/create-order", h.CreateOrder)
	r.Get("/orders", h.GetOrders)
	r.Get("/orders/search", h.SearchProducts)
	r.Get("/order/{id}", h.GetOrderByID)
	r.Patch("/order/{id}", h.UpdateOrder)
	r.Delete("/order/{id}", h.DeleteOrder)
}

func (h *SaleHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(h.logger, w, err)
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	creatorID, ok := creatorFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	customer := service.CustomerInput{
		Name:    req.Customer.Name,
		Phone:   req.Customer.Phone,
		Address: req.Customer.Address,
	}

	result, err := h.saleService.CreateOrder(r.Context(), customer, items, creatorID)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("Order created",
		zap.String("sale_id", result.SaleID.String()),
		zap.String("customer_id", result.CustomerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"saleId":      result.SaleID.String(),
		"customerId":  result.CustomerID.String(),
		"totalAmount": result.TotalAmount,
	}, "Order created successfully")
}

func (h *SaleHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.saleService.GetOrders(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders, "Orders fetched successfully")
}

func (h *SaleHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.saleService.GetOrderByID(r.Context(), id)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order, "Order details")
}

func (h *SaleHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req UpdateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(h.logger, w, err)
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.saleService.UpdateOrder(r.Context(), id, items); err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nil, "Order updated successfully")
}

func (h *SaleHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.saleService.DeleteOrder(r.Context(), id); err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nil, "Order deleted and stock restored")
}

func (h *SaleHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		middleware.RespondWithJSON(w, http.StatusOK, []struct{}{}, "No matching products")
		return
	}

	products, err := h.saleService.SearchProducts(r.Context(), query)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products, "Products fetched successfully")
}
