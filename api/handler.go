// Package api - HTTP handlers for recipe costing
// Handlers decode, delegate to the engine, and encode. They contain no costing logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"recipe-cost/core/engine"
	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
)

// IngredientStore is the read side of the ingredient catalog
type IngredientStore interface {
	List(ctx context.Context) ([]*types.Ingredient, error)
	Get(ctx context.Context, name string) (*types.Ingredient, error)
}

// Handler handles costing requests
type Handler struct {
	engine *engine.Engine
	store  IngredientStore
	logger *zap.Logger
}

// NewHandler creates a handler. store may be nil.
func NewHandler(eng *engine.Engine, store IngredientStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: eng, store: store, logger: logger}
}

// HandleConvert handles POST /convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	var req ConvertRequest
	if !h.decode(w, r, &req) {
		return
	}

	amount, err := h.engine.Convert(req.Amount, req.From, req.To, req.Density)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	writeJSON(w, ConvertResponse{RequestID: requestID, Amount: amount, Unit: req.To}, http.StatusOK)
}

// HandleUsageCost handles POST /usage-cost
func (h *Handler) HandleUsageCost(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	var req UsageCostRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Pack.Validate(); err != nil {
		h.writeError(w, requestID, err)
		return
	}

	cost, err := h.engine.UsageCost(req.Quantity, req.Unit, req.Pack)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	writeJSON(w, UsageCostResponse{RequestID: requestID, Cost: cost}, http.StatusOK)
}

// HandleRecipeCost handles POST /recipe-cost
func (h *Handler) HandleRecipeCost(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	var req RecipeCostRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Recipe == nil {
		h.writeError(w, requestID, apperrors.Validation("recipe is required"))
		return
	}
	if err := req.Recipe.Validate(); err != nil {
		h.writeError(w, requestID, err)
		return
	}

	report, err := h.engine.CostRecipe(req.Recipe, req.Margin)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}

	h.logger.Debug("recipe costed",
		zap.String("request_id", requestID),
		zap.String("recipe", req.Recipe.Name),
		zap.String("total_cost", report.Cost.TotalCost.String()),
		zap.String("status", string(report.Margin.Status)),
	)
	writeJSON(w, RecipeCostResponse{RequestID: requestID, RecipeReport: report}, http.StatusOK)
}

// HandleBestTier handles POST /best-tier
func (h *Handler) HandleBestTier(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	var req BestTierRequest
	if !h.decode(w, r, &req) {
		return
	}

	choice, err := h.engine.BestTier(req.QuantityNeeded, req.StandardPackQuantity, req.StandardPackPrice, req.Tiers)
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	writeJSON(w, BestTierResponse{RequestID: requestID, TierChoice: choice}, http.StatusOK)
}

// HandleMargin handles POST /margin
func (h *Handler) HandleMargin(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	var req MarginRequest
	if !h.decode(w, r, &req) {
		return
	}

	policy := h.engine.Config().Policy
	if req.TargetMargin != nil {
		policy.TargetMarginPercent = *req.TargetMargin
	}
	if req.MinMargin != nil {
		policy.MinMarginPercent = *req.MinMargin
	}

	calc := h.engine.AnalyzeMargin(req.Cost, req.CurrentPrice, &policy)
	writeJSON(w, MarginResponse{RequestID: requestID, Calculation: calc}, http.StatusOK)
}

// HandleListIngredients handles GET /ingredients
func (h *Handler) HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())
	if h.store == nil {
		h.writeUnavailable(w, requestID)
		return
	}

	ingredients, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	if ingredients == nil {
		ingredients = []*types.Ingredient{}
	}
	writeJSON(w, IngredientsResponse{RequestID: requestID, Ingredients: ingredients, Count: len(ingredients)}, http.StatusOK)
}

// HandleGetIngredient handles GET /ingredients/{name}
func (h *Handler) HandleGetIngredient(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())
	if h.store == nil {
		h.writeUnavailable(w, requestID)
		return
	}

	ing, err := h.store.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeError(w, requestID, err)
		return
	}
	writeJSON(w, IngredientResponse{RequestID: requestID, Ingredient: ing}, http.StatusOK)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, ErrorResponse{
			RequestID: RequestID(r.Context()),
			Error:     ErrorDetail{Code: "INVALID_JSON", Message: err.Error()},
		}, http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, requestID string, err error) {
	status := StatusFor(err)
	detail := ErrorDetail{Code: string(apperrors.TypeOf(err)), Message: err.Error()}
	if e, ok := err.(*apperrors.Error); ok {
		detail.Message = e.Message
		detail.Context = e.Context
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("request_id", requestID), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("request_id", requestID), zap.Error(err))
	}
	writeJSON(w, ErrorResponse{RequestID: requestID, Error: detail}, status)
}

func (h *Handler) writeUnavailable(w http.ResponseWriter, requestID string) {
	writeJSON(w, ErrorResponse{
		RequestID: requestID,
		Error:     ErrorDetail{Code: "CATALOG_UNAVAILABLE", Message: "ingredient catalog not connected"},
	}, http.StatusServiceUnavailable)
}

// StatusFor maps an error type to an HTTP status
func StatusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.TypeUnit, apperrors.TypeIncompatibleUnits, apperrors.TypeValidation, apperrors.TypeParsing:
		return http.StatusBadRequest
	case apperrors.TypeDivision:
		return http.StatusUnprocessableEntity
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
