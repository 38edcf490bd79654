package handlers

import (
	"net/http"

	"github.com/gartstein/crm/internal/crm/models"
)

// listContacts returns contacts in list shape, without the company.
func (h *CRMHandler) listContacts(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	opts, ok := h.listOptions(w, r)
	if !ok {
		return
	}
	filter := models.ContactFilter{Search: r.URL.Query().Get("search")}
	page, err := h.service.ListContacts(r.Context(), filter, opts)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, same[models.Contact]))
}

func (h *CRMHandler) createContact(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req ContactCreateRequest
	if !h.bind(w, r, &req) {
		return
	}
	created, err := h.service.CreateContact(r.Context(), contactToModel(&req))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactResponse(created))
}

func (h *CRMHandler) getContact(w http.ResponseWriter, r *http.Request, params map[string]string) {
	contact, err := h.service.GetContact(r.Context(), params["id"])
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *CRMHandler) updateContact(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req ContactUpdateRequest
	if !h.bind(w, r, &req) {
		return
	}
	updated, err := h.service.UpdateContact(r.Context(), contactToUpdate(&req, params["id"]))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(updated))
}

func (h *CRMHandler) deleteContact(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := h.service.DeleteContact(r.Context(), params["id"]); err != nil {
		h.mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
