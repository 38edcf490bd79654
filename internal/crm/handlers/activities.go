package handlers

import (
	"net/http"

	"github.com/gartstein/crm/internal/crm/models"
)

// listActivities filters on contact_id and deal_id, newest activity first.
func (h *CRMHandler) listActivities(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	opts, ok := h.listOptions(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := models.ActivityFilter{
		ContactID: queryRef(q, "contact_id"),
		DealID:    queryRef(q, "deal_id"),
	}
	page, err := h.service.ListActivities(r.Context(), filter, opts)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, same[models.Activity]))
}

func (h *CRMHandler) createActivity(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req ActivityCreateRequest
	if !h.bind(w, r, &req) {
		return
	}
	activity, ferr := activityToModel(&req)
	if ferr != nil {
		writeValidation(w, []FieldError{*ferr})
		return
	}
	created, err := h.service.CreateActivity(r.Context(), activity)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
