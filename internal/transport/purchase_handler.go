package transport

import (
	"net/http"

	"stockroom/internal/middleware"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceCorrectionRequest fixes the price of one purchase line.
type PriceCorrectionRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Price     decimal.Decimal `json:"price" validate:"required"`
}

// UpdatePurchasePriceRequest is the post-delivery price correction payload.
type UpdatePurchasePriceRequest struct {
	Items []PriceCorrectionRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseHandler serves the delivery-reconciliation endpoints.
type PurchaseHandler struct {
	purchaseService service.PurchaseService
	logger          *zap.Logger
}

// NewPurchaseHandler creates a PurchaseHandler.
func NewPurchaseHandler(purchaseService service.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, logger: logger}
}

// RegisterRoutes registers purchase routes on an already-authenticated
// router. Everything here is admin-only.
func (h *PurchaseHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/ordered", h.GetOrderedPurchases)
		r.Get("/delivered", h.GetDeliveredPurchases)
		r.Put("/delivered/{id}", h.MarkDelivered)
		r.Put("/update-price/{id}", h.UpdatePurchasePrice)
		r.Get("/purchases/{purchaseId}", h.GetPurchaseByID)
	})
}

func (h *PurchaseHandler) GetOrderedPurchases(w http.ResponseWriter, r *http.Request) {
	orders, err := h.purchaseService.GetOrderedPurchases(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders, "Ordered and delivered purchases fetched successfully")
}

func (h *PurchaseHandler) GetDeliveredPurchases(w http.ResponseWriter, r *http.Request) {
	delivered, err := h.purchaseService.GetDeliveredPurchases(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, delivered, "Delivered purchases fetched successfully")
}

func (h *PurchaseHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid draft id")
		return
	}

	purchaseID, err := h.purchaseService.MarkDelivered(r.Context(), draftID)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("Order delivered and inventory updated",
		zap.String("draft_id", draftID.String()),
		zap.String("purchase_id", purchaseID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"purchaseId": purchaseID.String()},
		"Order marked as delivered and inventory updated")
}

func (h *PurchaseHandler) UpdatePurchasePrice(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}

	var req UpdatePurchasePriceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(h.logger, w, err)
		return
	}

	corrections := make([]service.PriceCorrection, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		corrections = append(corrections, service.PriceCorrection{ProductID: productID, Price: item.Price})
	}

	if err := h.purchaseService.UpdatePurchasePrice(r.Context(), purchaseID, corrections); err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nil, "Purchase prices updated successfully")
}

func (h *PurchaseHandler) GetPurchaseByID(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := uuid.Parse(chi.URLParam(r, "purchaseId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}

	purchase, err := h.purchaseService.GetPurchaseByID(r.Context(), purchaseID)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, purchase, "Purchase details")
}
