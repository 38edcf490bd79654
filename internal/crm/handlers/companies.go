package handlers

import (
	"net/http"

	"github.com/gartstein/crm/internal/crm/models"
)

func (h *CRMHandler) listCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	opts, ok := h.listOptions(w, r)
	if !ok {
		return
	}
	filter := models.CompanyFilter{Search: r.URL.Query().Get("search")}
	page, err := h.service.ListCompanies(r.Context(), filter, opts)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, same[models.Company]))
}

func (h *CRMHandler) createCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req CompanyCreateRequest
	if !h.bind(w, r, &req) {
		return
	}
	created, err := h.service.CreateCompany(r.Context(), companyToModel(&req))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CRMHandler) getCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	company, err := h.service.GetCompany(r.Context(), params["id"])
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CRMHandler) updateCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req CompanyUpdateRequest
	if !h.bind(w, r, &req) {
		return
	}
	updated, err := h.service.UpdateCompany(r.Context(), companyToUpdate(&req, params["id"]))
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CRMHandler) deleteCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := h.service.DeleteCompany(r.Context(), params["id"]); err != nil {
		h.mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
