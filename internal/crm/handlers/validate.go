package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// newValidator reports fields by their JSON names and validates Optional
// fields through their carried value.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if opt, ok := field.Interface().(utils.Optional[string]); ok && opt.Valid {
			return opt.Value
		}
		return nil
	}, utils.Optional[string]{})
	return v
}

// fieldErrors converts a validator failure into response entries.
func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Rule: "invalid", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}

// decodeErrors converts a JSON decoding failure into response entries.
func decodeErrors(err error) []FieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return []FieldError{{Field: "body", Rule: "required", Message: "request body is required"}}
	case errors.As(err, &typeErr):
		return []FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type),
		}}
	default:
		return []FieldError{{Field: "body", Rule: "json", Message: err.Error()}}
	}
}

// bind decodes the JSON body into dst and validates it, answering 422 on
// failure. It reports whether the handler should continue.
func (h *CRMHandler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidation(w, decodeErrors(err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeValidation(w, fieldErrors(err))
		return false
	}
	return true
}

// parseListOptions reads page and per_page from the query string.
func parseListOptions(q url.Values) (models.ListOptions, []FieldError) {
	var errs []FieldError
	page, err := intParam(q, "page", models.DefaultPage, 1, 0)
	if err != nil {
		errs = append(errs, *err)
	}
	perPage, err := intParam(q, "per_page", models.DefaultPerPage, 1, models.MaxPerPage)
	if err != nil {
		errs = append(errs, *err)
	}
	return models.ListOptions{Page: page, PerPage: perPage}, errs
}

// intParam parses an integer query parameter bounded by [lo, hi]; hi <= 0
// means unbounded.
func intParam(q url.Values, name string, def, lo, hi int) (int, *FieldError) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FieldError{Field: name, Rule: "int", Message: fmt.Sprintf("%s must be an integer", name)}
	}
	if v < lo {
		return 0, &FieldError{Field: name, Rule: "gte", Message: fmt.Sprintf("%s must be at least %d", name, lo)}
	}
	if hi > 0 && v > hi {
		return 0, &FieldError{Field: name, Rule: "lte", Message: fmt.Sprintf("%s must be at most %d", name, hi)}
	}
	return v, nil
}

// listOptions answers 422 when the paging parameters are invalid.
func (h *CRMHandler) listOptions(w http.ResponseWriter, r *http.Request) (models.ListOptions, bool) {
	opts, errs := parseListOptions(r.URL.Query())
	if len(errs) > 0 {
		writeValidation(w, errs)
		return opts, false
	}
	return opts, true
}

// queryRef returns the named query parameter, or nil when absent or empty.
func queryRef(q url.Values, name string) *string {
	if v := q.Get(name); v != "" {
		return &v
	}
	return nil
}
