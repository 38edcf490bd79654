package handlers

import (
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

// nullIfEmpty treats an empty reference id as no reference.
func nullIfEmpty(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func optionalRef(id utils.Optional[string]) utils.Optional[string] {
	if id.Valid && id.Value == "" {
		return utils.Null[string]()
	}
	return id
}

func companyToModel(req *CompanyCreateRequest) *models.Company {
	return &models.Company{
		Name:     req.Name,
		Website:  req.Website,
		Industry: req.Industry,
		Notes:    req.Notes,
	}
}

func companyToUpdate(req *CompanyUpdateRequest, id string) *models.CompanyUpdate {
	return &models.CompanyUpdate{
		ID:       id,
		Name:     req.Name,
		Website:  req.Website,
		Industry: req.Industry,
		Notes:    req.Notes,
	}
}

func contactToModel(req *ContactCreateRequest) *models.Contact {
	return &models.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		CompanyID: nullIfEmpty(req.CompanyID),
		Notes:     req.Notes,
	}
}

func contactToUpdate(req *ContactUpdateRequest, id string) *models.ContactUpdate {
	return &models.ContactUpdate{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		CompanyID: optionalRef(req.CompanyID),
		Notes:     req.Notes,
	}
}

// dealToModel converts the request, failing only on an explicit null stage.
func dealToModel(req *DealCreateRequest) (*models.Deal, *FieldError) {
	if req.Stage.Set && !req.Stage.Valid {
		return nil, &FieldError{Field: "stage", Rule: "required", Message: "stage may not be null"}
	}
	deal := &models.Deal{
		Title:         req.Title,
		Value:         req.Value,
		ContactID:     nullIfEmpty(req.ContactID),
		CompanyID:     nullIfEmpty(req.CompanyID),
		Notes:         req.Notes,
		ExpectedClose: req.ExpectedClose,
	}
	if req.Stage.Valid {
		deal.Stage = req.Stage.Value
	}
	return deal, nil
}

func dealToUpdate(req *DealUpdateRequest, id string) *models.DealUpdate {
	return &models.DealUpdate{
		ID:            id,
		Title:         req.Title,
		Value:         req.Value,
		Stage:         req.Stage,
		ContactID:     optionalRef(req.ContactID),
		CompanyID:     optionalRef(req.CompanyID),
		Notes:         req.Notes,
		ExpectedClose: req.ExpectedClose,
	}
}

// activityToModel converts the request, failing only on an unparseable date.
func activityToModel(req *ActivityCreateRequest) (*models.Activity, *FieldError) {
	date, err := models.ParseTimestamp(req.Date)
	if err != nil {
		return nil, &FieldError{Field: "date", Rule: "datetime", Message: err.Error()}
	}
	return &models.Activity{
		Type:        req.Type,
		Description: req.Description,
		ContactID:   nullIfEmpty(req.ContactID),
		DealID:      nullIfEmpty(req.DealID),
		Date:        date,
	}, nil
}

func formatValue(v *decimal.Decimal) *string {
	if v == nil {
		return nil
	}
	return utils.Ptr(v.StringFixed(2))
}

func toContactResponse(c *models.ContactDetail) *ContactResponse {
	return &ContactResponse{Contact: c.Contact, Company: c.Company}
}

func toDealListResponse(d models.Deal) DealListResponse {
	return DealListResponse{Deal: d, Value: formatValue(d.Value)}
}

func toDealResponse(d *models.DealDetail) *DealResponse {
	return &DealResponse{
		DealListResponse: toDealListResponse(d.Deal),
		Contact:          d.Contact,
		Company:          d.Company,
	}
}

func same[T any](v T) T { return v }

func toPageResponse[T, R any](p *models.Page[T], convert func(T) R) PageResponse[R] {
	items := make([]R, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, convert(item))
	}
	return PageResponse[R]{
		Items:   items,
		Total:   p.Total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
	}
}
