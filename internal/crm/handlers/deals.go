package handlers

import (
	"net/http"

	"github.com/gartstein/crm/internal/crm/models"
)

func (h *CRMHandler) listDeals(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	opts, ok := h.listOptions(w, r)
	if !ok {
		return
	}
	var filter models.DealFilter
	if raw := r.URL.Query().Get("stage"); raw != "" {
		stage, err := models.ParseDealStage(raw)
		if err != nil {
			writeValidation(w, []FieldError{{Field: "stage", Rule: "oneof", Message: err.Error()}})
			return
		}
		filter.Stage = &stage
	}
	page, err := h.service.ListDeals(r.Context(), filter, opts)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, toDealListResponse))
}

func (h *CRMHandler) createDeal(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req DealCreateRequest
	if !h.bind(w, r, &req) {
		return
	}
	deal, ferr := dealToModel(&req)
	if ferr != nil {
		writeValidation(w, []FieldError{*ferr})
		return
	}
	created, err := h.service.CreateDeal(r.Context(), deal)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDealResponse(created))
}

func (h *CRMHandler) getDeal(w http.ResponseWriter, r *http.Request, params map[string]string) {
	deal, err := h.service.GetDeal(r.Context(), params["id"])
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(deal))
}

func (h *CRMHandler) updateDeal(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req DealUpdateRequest
	if !h.bind(w, r, &req) {
		return
	}
	updated, err := h.service.UpdateDeal(r.Context(), dealToUpdate(&req, params["id"]))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(updated))
}

func (h *CRMHandler) deleteDeal(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := h.service.DeleteDeal(r.Context(), params["id"]); err != nil {
		h.mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
