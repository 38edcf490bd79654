package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gartstein/crm/internal/crm/controller"
	"github.com/gartstein/crm/internal/crm/db"
	"github.com/gartstein/crm/internal/crm/metrics"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T) *controller.CRMService {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo, err := db.NewRepository(&db.Config{Driver: db.DriverSQLite, Path: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return controller.NewCRMService(repo, nil, logger)
}

type apiClient struct {
	t   *testing.T
	srv *httptest.Server
}

// newAPI serves the full route table over an in-memory store.
func newAPI(t *testing.T) *apiClient {
	return newAPIWith(t, newTestService(t), zaptest.NewLogger(t), nil)
}

func newAPIWith(t *testing.T, svc CRMController, logger *zap.Logger, m *metrics.Metrics) *apiClient {
	t.Helper()
	routes, err := NewCRMHandler(svc, logger).Routes(m)
	require.NoError(t, err)
	srv := httptest.NewServer(routes)
	t.Cleanup(srv.Close)
	return &apiClient{t: t, srv: srv}
}

// do sends body (a string is sent verbatim) and decodes any JSON response.
func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(raw, &out), "body: %s", raw)
	return resp.StatusCode, out
}

func (c *apiClient) create(path string, body any) map[string]any {
	c.t.Helper()
	status, out := c.do(http.MethodPost, path, body)
	require.Equal(c.t, http.StatusCreated, status, "body: %v", out)
	return out
}

func items(t *testing.T, page map[string]any) []map[string]any {
	t.Helper()
	raw, ok := page["items"].([]any)
	require.True(t, ok, "items should be a list: %v", page)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]any))
	}
	return out
}

func firstDetail(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	list, ok := body["detail"].([]any)
	require.True(t, ok, "detail should be a list: %v", body)
	require.NotEmpty(t, list)
	return list[0].(map[string]any)
}

func TestRoot(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Simple CRM API", body["message"])
	assert.Equal(t, "/docs", body["docs"])
	assert.Equal(t, "/activities", body["endpoints"].(map[string]any)["activities"])
}

func TestUnknownRoutes(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(http.MethodGet, "/invoices", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", body["detail"])

	status, _ = api.do(http.MethodPatch, "/companies", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _ = api.do(http.MethodPut, "/activities", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestAcmeFlow(t *testing.T) {
	api := newAPI(t)

	company := api.create("/companies", map[string]any{"name": "Acme", "industry": "Manufacturing"})
	companyID := company["id"].(string)
	assert.Len(t, companyID, 36)
	assert.Equal(t, company["created_at"], company["updated_at"])
	assert.Nil(t, company["website"])
	_, stored := api.do(http.MethodGet, "/companies/"+companyID, nil)
	assert.Equal(t, company, stored, "create returns the row as a later read sees it")

	contact := api.create("/contacts", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@acme.test",
		"company_id": companyID,
	})
	contactID := contact["id"].(string)
	require.NotNil(t, contact["company"])
	assert.Equal(t, "Acme", contact["company"].(map[string]any)["name"])

	status, page := api.do(http.MethodGet, "/contacts?search=ADA", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, page["total"])
	listed := items(t, page)
	require.Len(t, listed, 1)
	assert.NotContains(t, listed[0], "company", "list shape omits relations")
	assert.Equal(t, companyID, listed[0]["company_id"])

	deal := api.create("/deals", map[string]any{
		"title":          "Big order",
		"value":          1999.999,
		"contact_id":     contactID,
		"company_id":     companyID,
		"expected_close": "2024-06-30",
	})
	assert.Equal(t, "2000.00", deal["value"])
	assert.Equal(t, "lead", deal["stage"])
	assert.Equal(t, "2024-06-30", deal["expected_close"])
	dealContact := deal["contact"].(map[string]any)
	assert.Equal(t, "Ada", dealContact["first_name"])
	assert.NotContains(t, dealContact, "company")
	assert.Equal(t, "Acme", deal["company"].(map[string]any)["name"])

	status, got := api.do(http.MethodGet, "/deals/"+deal["id"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, deal["value"], got["value"])

	status, page = api.do(http.MethodGet, "/companies?search=acm", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, page["total"])
	assert.EqualValues(t, 1, page["pages"])
	assert.EqualValues(t, 20, page["per_page"])
}

func TestDealPagination(t *testing.T) {
	api := newAPI(t)
	for i := 0; i < 25; i++ {
		api.create("/deals", map[string]any{"title": fmt.Sprintf("Deal %d", i), "stage": "won"})
	}
	api.create("/deals", map[string]any{"title": "Open deal"})

	status, page := api.do(http.MethodGet, "/deals?stage=won&page=2&per_page=10", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, items(t, page), 10)
	assert.EqualValues(t, 25, page["total"])
	assert.EqualValues(t, 2, page["page"])
	assert.EqualValues(t, 10, page["per_page"])
	assert.EqualValues(t, 3, page["pages"])

	status, page = api.do(http.MethodGet, "/deals?stage=won&page=4&per_page=10", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items(t, page))
	assert.EqualValues(t, 25, page["total"])

	status, page = api.do(http.MethodGet, "/deals", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 26, page["total"])
	assert.Equal(t, "Open deal", items(t, page)[0]["title"], "newest first")
}

func TestEmptyListing(t *testing.T) {
	api := newAPI(t)

	status, page := api.do(http.MethodGet, "/companies", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items(t, page))
	assert.EqualValues(t, 0, page["total"])
	assert.EqualValues(t, 0, page["pages"])
}

func TestHugePageIsEmpty(t *testing.T) {
	api := newAPI(t)
	for _, name := range []string{"Acme", "Globex", "Initech"} {
		api.create("/companies", map[string]any{"name": name})
	}

	status, page := api.do(http.MethodGet, "/companies?page=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items(t, page))
	assert.EqualValues(t, 3, page["total"])
	assert.EqualValues(t, 1, page["pages"])

	status, page = api.do(http.MethodGet, "/companies?page=922337203685477581&per_page=20", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items(t, page), "an offset that wraps past zero must not return the first page")
}

func TestInvalidReference(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(http.MethodPost, "/contacts", map[string]any{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"company_id": "does-not-exist",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Company not found", body["detail"])

	_, page := api.do(http.MethodGet, "/contacts", nil)
	assert.EqualValues(t, 0, page["total"], "rejected create persists nothing")

	status, body = api.do(http.MethodPost, "/deals", map[string]any{
		"title":      "Orphan",
		"contact_id": "missing",
		"company_id": "missing",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Contact not found", body["detail"])

	status, body = api.do(http.MethodPost, "/activities", map[string]any{
		"type":        "call",
		"description": "Intro",
		"deal_id":     "missing",
		"date":        "2024-01-02T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Deal not found", body["detail"])

	// An empty reference is no reference.
	contact := api.create("/contacts", map[string]any{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"company_id": "",
	})
	assert.Nil(t, contact["company_id"])
	assert.Nil(t, contact["company"])
}

func TestNotFound(t *testing.T) {
	api := newAPI(t)

	cases := []struct {
		method string
		path   string
		body   any
		detail string
	}{
		{http.MethodGet, "/companies/nope", nil, "Company not found"},
		{http.MethodPut, "/companies/nope", map[string]any{"name": "X"}, "Company not found"},
		{http.MethodDelete, "/contacts/nope", nil, "Contact not found"},
		{http.MethodGet, "/contacts/nope", nil, "Contact not found"},
		{http.MethodPut, "/deals/nope", map[string]any{}, "Deal not found"},
		{http.MethodDelete, "/deals/nope", nil, "Deal not found"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, body := api.do(tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusNotFound, status)
			assert.Equal(t, tc.detail, body["detail"])
		})
	}
}

func TestNotFoundBeforeReferenceCheck(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(http.MethodPut, "/contacts/nope", map[string]any{"company_id": "also-missing"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Contact not found", body["detail"])
}

func TestDanglingReferences(t *testing.T) {
	api := newAPI(t)

	company := api.create("/companies", map[string]any{"name": "Short-lived"})
	companyID := company["id"].(string)
	contact := api.create("/contacts", map[string]any{
		"first_name": "Alan",
		"last_name":  "Turing",
		"company_id": companyID,
	})

	status, body := api.do(http.MethodDelete, "/companies/"+companyID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Nil(t, body)

	status, got := api.do(http.MethodGet, "/contacts/"+contact["id"].(string), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, companyID, got["company_id"])
	assert.Nil(t, got["company"])

	status, _ = api.do(http.MethodGet, "/companies/"+companyID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPartialUpdates(t *testing.T) {
	api := newAPI(t)

	company := api.create("/companies", map[string]any{"name": "Acme", "website": "https://acme.test"})
	id := company["id"].(string)

	status, updated := api.do(http.MethodPut, "/companies/"+id, map[string]any{"industry": "Retail"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acme", updated["name"])
	assert.Equal(t, "https://acme.test", updated["website"])
	assert.Equal(t, "Retail", updated["industry"])

	status, updated = api.do(http.MethodPut, "/companies/"+id, map[string]any{"website": nil})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, updated["website"])
	assert.Equal(t, "Retail", updated["industry"])

	status, unchanged := api.do(http.MethodPut, "/companies/"+id, map[string]any{})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, updated["name"], unchanged["name"])

	contact := api.create("/contacts", map[string]any{"first_name": "Ada", "last_name": "L", "company_id": id})
	deal := api.create("/deals", map[string]any{
		"title":      "Renewal",
		"value":      "150.5",
		"contact_id": contact["id"],
	})
	dealID := deal["id"].(string)
	assert.Equal(t, "150.50", deal["value"])

	status, updated = api.do(http.MethodPut, "/deals/"+dealID, map[string]any{
		"stage":      "won",
		"value":      nil,
		"contact_id": "",
		"company_id": id,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "won", updated["stage"])
	assert.Nil(t, updated["value"])
	assert.Nil(t, updated["contact_id"])
	assert.Nil(t, updated["contact"])
	assert.Equal(t, "Acme", updated["company"].(map[string]any)["name"])

	// Any stage may follow any other.
	status, updated = api.do(http.MethodPut, "/deals/"+dealID, map[string]any{"stage": "lead"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "lead", updated["stage"])

	status, body := api.do(http.MethodPut, "/contacts/"+contact["id"].(string), map[string]any{"company_id": "gone"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Company not found", body["detail"])
}

func TestValidation(t *testing.T) {
	api := newAPI(t)
	company := api.create("/companies", map[string]any{"name": "Acme"})
	companyPath := "/companies/" + company["id"].(string)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		field  string
	}{
		{"missing name", http.MethodPost, "/companies", map[string]any{}, "name"},
		{"long name", http.MethodPost, "/companies", map[string]any{"name": strings.Repeat("x", 256)}, "name"},
		{"no body", http.MethodPost, "/companies", nil, "body"},
		{"malformed json", http.MethodPost, "/companies", `{"name":`, "body"},
		{"wrong type", http.MethodPost, "/companies", map[string]any{"name": 42}, "name"},
		{"null name", http.MethodPut, companyPath, map[string]any{"name": nil}, ""},
		{"blank name", http.MethodPut, companyPath, map[string]any{"name": "  "}, ""},
		{"long phone", http.MethodPost, "/contacts", map[string]any{"first_name": "A", "last_name": "B", "phone": strings.Repeat("1", 51)}, "phone"},
		{"missing last name", http.MethodPost, "/contacts", map[string]any{"first_name": "A"}, "last_name"},
		{"unknown stage", http.MethodPost, "/deals", map[string]any{"title": "T", "stage": "closed"}, "body"},
		{"null stage", http.MethodPost, "/deals", map[string]any{"title": "T", "stage": nil}, "stage"},
		{"bad date", http.MethodPost, "/deals", map[string]any{"title": "T", "expected_close": "30/06/2024"}, "body"},
		{"huge value", http.MethodPost, "/deals", map[string]any{"title": "T", "value": "10000000000000"}, ""},
		{"unknown type", http.MethodPost, "/activities", map[string]any{"type": "fax", "description": "D", "date": "2024-01-01T00:00:00Z"}, "body"},
		{"missing date", http.MethodPost, "/activities", map[string]any{"type": "call", "description": "D"}, "date"},
		{"bad timestamp", http.MethodPost, "/activities", map[string]any{"type": "call", "description": "D", "date": "yesterday"}, "date"},
		{"page zero", http.MethodGet, "/companies?page=0", nil, "page"},
		{"per_page too big", http.MethodGet, "/contacts?per_page=101", nil, "per_page"},
		{"per_page not int", http.MethodGet, "/deals?per_page=ten", nil, "per_page"},
		{"unknown stage filter", http.MethodGet, "/deals?stage=closed", nil, "stage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := api.do(tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, status, "body: %v", body)
			detail := firstDetail(t, body)
			if tc.field != "" {
				assert.Equal(t, tc.field, detail["field"])
			}
			assert.NotEmpty(t, detail["message"])
		})
	}

	status, page := api.do(http.MethodGet, "/deals", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, page["total"], "rejected deals persist nothing")
}

func TestActivities(t *testing.T) {
	api := newAPI(t)

	contact := api.create("/contacts", map[string]any{"first_name": "Ada", "last_name": "L"})
	contactID := contact["id"].(string)
	deal := api.create("/deals", map[string]any{"title": "Deal", "contact_id": contactID})
	dealID := deal["id"].(string)

	older := api.create("/activities", map[string]any{
		"type":        "call",
		"description": "Intro call",
		"contact_id":  contactID,
		"date":        "2024-01-02T10:00:00",
	})
	assert.Equal(t, "2024-01-02T10:00:00Z", older["date"])
	assert.NotContains(t, older, "updated_at")
	_, page := api.do(http.MethodGet, "/activities?contact_id="+contactID, nil)
	assert.Equal(t, older, items(t, page)[0])

	api.create("/activities", map[string]any{
		"type":        "meeting",
		"description": "Demo",
		"contact_id":  contactID,
		"deal_id":     dealID,
		"date":        "2024-02-01T09:30:00+02:00",
	})
	api.create("/activities", map[string]any{
		"type":        "note",
		"description": "Unrelated",
		"date":        "2024-03-01T00:00:00Z",
	})

	status, page := api.do(http.MethodGet, "/activities?contact_id="+contactID, nil)
	require.Equal(t, http.StatusOK, status)
	listed := items(t, page)
	require.Len(t, listed, 2)
	assert.Equal(t, "Demo", listed[0]["description"], "newest activity first")
	assert.Equal(t, "Intro call", listed[1]["description"])

	status, page = api.do(http.MethodGet, "/activities?contact_id="+contactID+"&deal_id="+dealID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, page["total"])

	status, page = api.do(http.MethodGet, "/activities", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, page["total"])

	status, _ = api.do(http.MethodGet, "/activities/"+older["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// brokenController fails every call it overrides; the rest are never reached.
type brokenController struct {
	CRMController
}

func (brokenController) GetCompany(context.Context, string) (*models.Company, error) {
	return nil, errors.New("connection reset")
}

func TestInternalErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	api := newAPIWith(t, brokenController{}, zap.New(core), nil)

	status, body := api.do(http.MethodGet, "/companies/any", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", body["detail"])
	assert.NotContains(t, body["detail"], "connection reset")

	failures := logs.FilterMessage("Internal server error").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "http_handler", failures[0].LoggerName)

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	fields := requests[0].ContextMap()
	assert.Equal(t, "/companies/any", fields["path"])
	assert.EqualValues(t, http.StatusInternalServerError, fields["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	api := newAPIWith(t, newTestService(t), zaptest.NewLogger(t), m)

	api.create("/companies", map[string]any{"name": "Acme"})
	api.do(http.MethodGet, "/companies/missing", nil)
	api.do(http.MethodGet, "/invoices/1", nil)
	api.do(http.MethodGet, "/invoices/2", nil)

	resp, err := api.srv.Client().Get(api.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(raw)
	assert.Contains(t, text, `crm_http_requests_total{method="POST",path="/companies",status="201"} 1`)
	assert.Contains(t, text, `crm_http_requests_total{method="GET",path="/companies/:id",status="404"} 1`)
	assert.Contains(t, text, `crm_http_requests_total{method="GET",path="other",status="404"} 2`)
	assert.NotContains(t, text, "/invoices")
}
