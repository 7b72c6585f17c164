package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

type listingHandler struct {
	listings *service.ListingService
	log      logger.Logger
}

type createListingRequest struct {
	Title                string   `json:"title"`
	PriceMinor           int64    `json:"price_minor"`
	Currency             string   `json:"currency"`
	Category             string   `json:"category"`
	Condition            string   `json:"condition"`
	Colors               []string `json:"colors"`
	SizeLabel            string   `json:"size_label"`
	Description          string   `json:"description"`
	ImageRefs            []string `json:"image_refs"`
	DeliveryFeeMinor     int64    `json:"delivery_fee_minor"`
	DeliveryPaidBySeller bool     `json:"delivery_paid_by_seller"`
}

func (h *listingHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req createListingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	listing, err := h.listings.CreateListing(r.Context(), service.CreateListingParams{
		OwnerID:              userID,
		Title:                req.Title,
		PriceMinor:           req.PriceMinor,
		Currency:             req.Currency,
		Category:             req.Category,
		Condition:            req.Condition,
		Colors:               req.Colors,
		SizeLabel:            req.SizeLabel,
		Description:          req.Description,
		ImageRefs:            req.ImageRefs,
		DeliveryFeeMinor:     req.DeliveryFeeMinor,
		DeliveryPaidBySeller: req.DeliveryPaidBySeller,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *listingHandler) get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *listingHandler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	listings, err := h.listings.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *listingHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	if err := h.listings.DeleteListing(r.Context(), chi.URLParam(r, "listingID"), userID); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type placeOrderRequest struct {
	Payment entity.PaymentConfirmation `json:"payment"`
}

type placeOrderResponse struct {
	ListingID  string   `json:"listing_id"`
	BuyerID    string   `json:"buyer_id"`
	Partial    bool     `json:"partial"`
	Incomplete []string `json:"incomplete,omitempty"`
}

func (h *listingHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.listings.PlaceOrder(r.Context(), service.PlaceOrderParams{
		ListingID: chi.URLParam(r, "listingID"),
		BuyerID:   userID,
		Payment:   req.Payment,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, placeOrderResponse{
		ListingID:  result.ListingID,
		BuyerID:    result.BuyerID,
		Partial:    result.Partial,
		Incomplete: result.Incomplete,
	})
}

func (h *listingHandler) repairSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.listings.RepairSale(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, placeOrderResponse{
		ListingID:  result.ListingID,
		BuyerID:    result.BuyerID,
		Partial:    result.Partial,
		Incomplete: result.Incomplete,
	})
}

func (h *listingHandler) listPurchases(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	entries, err := h.listings.ListPurchases(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *listingHandler) listSold(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	entries, err := h.listings.ListSold(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
