package transport

import (
	"net/http"

	"stockroom/internal/middleware"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemRequest is one product/quantity line in a draft or order payload.
type ItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateDraftRequest is the create-draft payload.
type CreateDraftRequest struct {
	SupplierID string        `json:"supplier_id" validate:"required,uuid"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateDraftRequest replaces a draft's item list wholesale.
type UpdateDraftRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DraftHandler serves the purchase-draft endpoints.
type DraftHandler struct {
	draftService service.DraftService
	logger       *zap.Logger
}

// NewDraftHandler creates a DraftHandler.
func NewDraftHandler(draftService service.DraftService, logger *zap.Logger) *DraftHandler {
	return &DraftHandler{draftService: draftService, logger: logger}
}

// RegisterRoutes registers draft routes on an already-authenticated router.
func (h *DraftHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Get("/drafts", h.GetDrafts)
	r.Get("/draft/{id}", h.GetDraftByID)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/create-draft", h.CreateDraft)
		r.Put("/draft/{id}", h.UpdateDraft)
		r.Delete("/draft/{id}", h.DeleteDraft)
		r.Post("/send-draft/{id}", h.SendDraft)
		r.Get("/get-suppliers", h.GetSuppliers)
	})
}

func parseItems(items []ItemRequest) ([]service.LineItem, error) {
	lineItems := make([]service.LineItem, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, service.LineItem{ProductID: productID, Quantity: item.Quantity})
	}
	return lineItems, nil
}

func creatorFromContext(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(h.logger, w, err)
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid supplier id")
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

	draftID, err := h.draftService.CreateDraft(r.Context(), supplierID, creatorID, items)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("Draft created", zap.String("draft_id", draftID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"draftId": draftID.String()}, "Draft created successfully")
}

func (h *DraftHandler) GetDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.draftService.GetDrafts(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, drafts, "Drafts fetched successfully")
}

func (h *DraftHandler) GetDraftByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid draft id")
		return
	}

	draft, err := h.draftService.GetDraftByID(r.Context(), id)
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, draft, "Draft details")
}

func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid draft id")
		return
	}

	var req UpdateDraftRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadRequest(h.logger, w, err)
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.draftService.UpdateDraft(r.Context(), id, items); err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nil, "Draft updated successfully")
}

func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid draft id")
		return
	}

	if err := h.draftService.DeleteDraft(r.Context(), id); err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, nil, "Draft deleted successfully")
}

func (h *DraftHandler) SendDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid draft id")
		return
	}

	if err := h.draftService.SendDraft(r.Context(), id); err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("Draft dispatched to supplier", zap.String("draft_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, nil, "Draft sent to supplier successfully")
}

func (h *DraftHandler) GetSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.draftService.GetSuppliers(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suppliers, "Suppliers fetched successfully")
}
