// Package handlers exposes the CRM over HTTP: routing on the grpc-gateway
// runtime mux, request decoding and validation, response shaping, and the
// Server that runs the HTTP listener next to a gRPC health endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/metrics"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/go-playground/validator/v10"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// CRMController defines the business logic interface the HTTP handlers invoke.
type CRMController interface {
	CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context, filter models.CompanyFilter, opts models.ListOptions) (*models.Page[models.Company], error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(ctx context.Context, id string) error

	CreateContact(ctx context.Context, contact *models.Contact) (*models.ContactDetail, error)
	GetContact(ctx context.Context, id string) (*models.ContactDetail, error)
	ListContacts(ctx context.Context, filter models.ContactFilter, opts models.ListOptions) (*models.Page[models.Contact], error)
	UpdateContact(ctx context.Context, update *models.ContactUpdate) (*models.ContactDetail, error)
	DeleteContact(ctx context.Context, id string) error

	CreateDeal(ctx context.Context, deal *models.Deal) (*models.DealDetail, error)
	GetDeal(ctx context.Context, id string) (*models.DealDetail, error)
	ListDeals(ctx context.Context, filter models.DealFilter, opts models.ListOptions) (*models.Page[models.Deal], error)
	UpdateDeal(ctx context.Context, update *models.DealUpdate) (*models.DealDetail, error)
	DeleteDeal(ctx context.Context, id string) error

	CreateActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	ListActivities(ctx context.Context, filter models.ActivityFilter, opts models.ListOptions) (*models.Page[models.Activity], error)
}

// CRMHandler serves the CRM resources over HTTP, mapping requests onto a
// CRMController.
type CRMHandler struct {
	service  CRMController
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCRMHandler constructs a new CRMHandler with the given service and logger.
func NewCRMHandler(service CRMController, logger *zap.Logger) *CRMHandler {
	return &CRMHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger.Named("http_handler"),
	}
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

func (h *CRMHandler) routes() []route {
	return []route{
		{http.MethodGet, "/companies", h.listCompanies},
		{http.MethodPost, "/companies", h.createCompany},
		{http.MethodGet, "/companies/{id}", h.getCompany},
		{http.MethodPut, "/companies/{id}", h.updateCompany},
		{http.MethodDelete, "/companies/{id}", h.deleteCompany},

		{http.MethodGet, "/contacts", h.listContacts},
		{http.MethodPost, "/contacts", h.createContact},
		{http.MethodGet, "/contacts/{id}", h.getContact},
		{http.MethodPut, "/contacts/{id}", h.updateContact},
		{http.MethodDelete, "/contacts/{id}", h.deleteContact},

		{http.MethodGet, "/deals", h.listDeals},
		{http.MethodPost, "/deals", h.createDeal},
		{http.MethodGet, "/deals/{id}", h.getDeal},
		{http.MethodPut, "/deals/{id}", h.updateDeal},
		{http.MethodDelete, "/deals/{id}", h.deleteDeal},

		{http.MethodGet, "/activities", h.listActivities},
		{http.MethodPost, "/activities", h.createActivity},
	}
}

// Routes builds the complete HTTP handler. When m is non-nil requests are
// instrumented and the registry is exposed on /metrics.
func (h *CRMHandler) Routes(m *metrics.Metrics) (http.Handler, error) {
	gw := runtime.NewServeMux(runtime.WithRoutingErrorHandler(h.routingError))
	for _, rt := range h.routes() {
		if err := gw.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			h.describe(w, r)
			return
		}
		gw.ServeHTTP(w, r)
	})

	var handler http.Handler = mux
	if m != nil {
		mux.Handle("/metrics", m.Handler())
		handler = m.InstrumentHandler(handler)
	}
	return h.logRequests(handler), nil
}

func (h *CRMHandler) describe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Simple CRM API",
		"docs":    "/docs",
		"endpoints": map[string]string{
			"contacts":   "/contacts",
			"companies":  "/companies",
			"deals":      "/deals",
			"activities": "/activities",
		},
	})
}

func (h *CRMHandler) routingError(_ context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, _ *http.Request, status int) {
	switch status {
	case http.StatusMethodNotAllowed:
		writeError(w, status, "Method Not Allowed")
	default:
		writeError(w, http.StatusNotFound, "Not Found")
	}
}

// logRequests logs every request once it has been served.
func (h *CRMHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.Status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// errorBody is the body of every non-validation error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// validationBody is the body of a 422 response.
type validationBody struct {
	Detail []FieldError `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeValidation(w http.ResponseWriter, fields []FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, validationBody{Detail: fields})
}

// mapServiceError maps domain or repository errors to HTTP responses.
func (h *CRMHandler) mapServiceError(w http.ResponseWriter, err error) {
	entity := entityName(err)
	switch {
	case errors.Is(err, e.ErrNotFound):
		writeError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, e.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, entity+" not found")
	case errors.Is(err, e.ErrInvalidInput):
		writeValidation(w, []FieldError{{Rule: "invalid", Message: err.Error()}})
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func entityName(err error) string {
	if entity, ok := e.EntityOf(err); ok {
		return entity
	}
	return "Resource"
}
