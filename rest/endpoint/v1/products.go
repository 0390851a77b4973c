package endpoint

import (
	"errors"
	"net/http"
	"time"

	"github.com/roamstack/attractions-api/db"
	"github.com/roamstack/attractions-api/rest/contextutils"
	e "github.com/roamstack/attractions-api/rest/errors"
	m "github.com/roamstack/attractions-api/rest/models"
	t "github.com/roamstack/attractions-api/rest/translator"
	"github.com/roamstack/attractions-api/types"
)

// attractionExpansion inlines the owning attraction's name and description
// into listed products.
func attractionExpansion() *db.Populate {
	return &db.Populate{
		Path:       "attraction",
		Collection: "attractions",
		LocalField: "attraction",
		Fields:     []string{"name", "description"},
	}
}

func (s *routeList) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := t.ParseListQuery(r.URL.Query(), s.config.Naming(), s.config.DefaultPageSize())

	result, err := s.listCollection(r.Context(), s.products, attractionExpansion(), query)
	if err != nil {
		s.logError("unable to list products", err)
		RespondWithError(w, errors.New("unable to list products"), http.StatusInternalServerError)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, result)
}

func (s *routeList) GetAttractionProducts(w http.ResponseWriter, r *http.Request) {
	attractionID := s.params(r, "attractionId")

	query := t.ParseListQuery(r.URL.Query(), s.config.Naming(), s.config.DefaultPageSize())
	query.Where = append(query.Where, types.ConditionItem{
		Field:    "attraction",
		Operator: "eq",
		Value:    attractionID,
	})

	result, err := s.listCollection(r.Context(), s.products, nil, query)
	if err != nil {
		s.logError("unable to list attraction products", err)
		RespondWithError(w, errors.New("unable to list products"), http.StatusInternalServerError)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, result)
}

func (s *routeList) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := s.params(r, "productId")

	doc, err := s.products.FindByID(r.Context(), productID)
	if err != nil {
		s.respondFetchError(w, "product", err)
		return
	}

	RespondWithData(w, http.StatusOK, doc)
}

func (s *routeList) AddProduct(w http.ResponseWriter, r *http.Request) {
	attractionID := s.params(r, "attractionId")

	attraction, err := s.attractions.FindByID(r.Context(), attractionID)
	if err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}
	if !s.callerOwns(r, attraction) {
		RespondWithServiceError(w, e.NewForbiddenError("not authorized to add products to this attraction"))
		return
	}

	var payload m.ProductCreate
	if err := parseAndValidatePayload(&payload, r); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	doc, err := toDocument(payload)
	if err != nil {
		RespondWithError(w, errors.New("unable to process payload"), http.StatusBadRequest)
		return
	}
	if payload.InStock == nil {
		doc["inStock"] = true
	}
	doc["attraction"] = attractionID
	doc["user"] = contextutils.ContextUserID(r.Context())
	doc["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	id, err := s.products.Insert(r.Context(), doc)
	if err != nil {
		s.logError("unable to insert product", err)
		RespondWithError(w, errors.New("unable to create product"), http.StatusInternalServerError)
		return
	}
	doc["id"] = id

	RespondWithData(w, http.StatusCreated, doc)
}

func (s *routeList) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := s.params(r, "productId")

	doc, err := s.products.FindByID(r.Context(), productID)
	if err != nil {
		s.respondFetchError(w, "product", err)
		return
	}
	if !s.callerOwns(r, doc) {
		RespondWithServiceError(w, e.NewForbiddenError("not authorized to update this product"))
		return
	}

	var payload m.ProductUpdate
	if err := parseAndValidatePayload(&payload, r); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	fields := make(map[string]interface{})
	if payload.Title != nil {
		fields["title"] = *payload.Title
	}
	if payload.Description != nil {
		fields["description"] = *payload.Description
	}
	if payload.Price != nil {
		fields["price"] = *payload.Price
	}
	if payload.InStock != nil {
		fields["inStock"] = *payload.InStock
	}

	if len(fields) == 0 {
		RespondWithData(w, http.StatusOK, doc)
		return
	}

	updated, err := s.products.Patch(r.Context(), productID, fields)
	if err != nil {
		s.logError("unable to update product", err)
		RespondWithError(w, errors.New("unable to update product"), http.StatusInternalServerError)
		return
	}

	RespondWithData(w, http.StatusOK, updated)
}

func (s *routeList) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := s.params(r, "productId")

	doc, err := s.products.FindByID(r.Context(), productID)
	if err != nil {
		s.respondFetchError(w, "product", err)
		return
	}
	if !s.callerOwns(r, doc) {
		RespondWithServiceError(w, e.NewForbiddenError("not authorized to delete this product"))
		return
	}

	if err := s.products.Delete(r.Context(), productID); err != nil {
		s.respondFetchError(w, "product", err)
		return
	}

	RespondWithData(w, http.StatusOK, map[string]interface{}{})
}
