package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/mitchellh/mapstructure"

	"github.com/roamstack/attractions-api/db"
	"github.com/roamstack/attractions-api/rest/contextutils"
	e "github.com/roamstack/attractions-api/rest/errors"
	m "github.com/roamstack/attractions-api/rest/models"
	t "github.com/roamstack/attractions-api/rest/translator"
	"github.com/roamstack/attractions-api/types"
)

const earthRadiusKm = 6378.1

var (
	inputValidator *validator.Validate
	trans          ut.Translator
)

func init() {
	inputValidator = validator.New()

	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")

	_ = enTranslations.RegisterDefaultTranslations(inputValidator, trans)

	_ = inputValidator.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		translator, _ := ut.T("required", fe.Field())
		return translator
	})
}

// GetAttractions serves the listing endpoint. The whole operation is query
// building: translate the query string, count, fetch, shape the envelope.
func (s *routeList) GetAttractions(w http.ResponseWriter, r *http.Request) {
	query := t.ParseListQuery(r.URL.Query(), s.config.Naming(), s.config.DefaultPageSize())

	result, err := s.listCollection(r.Context(), s.attractions, nil, query)
	if err != nil {
		s.logError("unable to list attractions", err)
		RespondWithError(w, errors.New("unable to list attractions"), http.StatusInternalServerError)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, result)
}

func (s *routeList) GetAttraction(w http.ResponseWriter, r *http.Request) {
	attractionID := s.params(r, "attractionId")

	doc, err := s.attractions.FindByID(r.Context(), attractionID)
	if err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}

	RespondWithData(w, http.StatusOK, doc)
}

func (s *routeList) AddAttraction(w http.ResponseWriter, r *http.Request) {
	var payload m.AttractionCreate
	if err := parseAndValidatePayload(&payload, r); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	doc, err := toDocument(payload)
	if err != nil {
		RespondWithError(w, errors.New("unable to process payload"), http.StatusBadRequest)
		return
	}
	doc["slug"] = slugify(payload.Name)
	doc["user"] = contextutils.ContextUserID(r.Context())
	doc["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	doc["likes"] = []interface{}{}
	doc["bookmarks"] = []interface{}{}

	id, err := s.attractions.Insert(r.Context(), doc)
	if err != nil {
		s.logError("unable to insert attraction", err)
		RespondWithError(w, errors.New("unable to create attraction"), http.StatusInternalServerError)
		return
	}
	doc["id"] = id

	RespondWithData(w, http.StatusCreated, doc)
}

func (s *routeList) UpdateAttraction(w http.ResponseWriter, r *http.Request) {
	attractionID := s.params(r, "attractionId")

	doc, err := s.attractions.FindByID(r.Context(), attractionID)
	if err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}
	if !s.callerOwns(r, doc) {
		RespondWithServiceError(w, e.NewForbiddenError("not authorized to update this attraction"))
		return
	}

	var payload m.AttractionUpdate
	if err := parseAndValidatePayload(&payload, r); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	fields := attractionUpdateFields(payload)
	if len(fields) == 0 {
		RespondWithData(w, http.StatusOK, doc)
		return
	}

	updated, err := s.attractions.Patch(r.Context(), attractionID, fields)
	if err != nil {
		s.logError("unable to update attraction", err)
		RespondWithError(w, errors.New("unable to update attraction"), http.StatusInternalServerError)
		return
	}

	RespondWithData(w, http.StatusOK, updated)
}

func (s *routeList) DeleteAttraction(w http.ResponseWriter, r *http.Request) {
	attractionID := s.params(r, "attractionId")

	doc, err := s.attractions.FindByID(r.Context(), attractionID)
	if err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}
	if !s.callerOwns(r, doc) {
		RespondWithServiceError(w, e.NewForbiddenError("not authorized to delete this attraction"))
		return
	}

	if err := s.attractions.Delete(r.Context(), attractionID); err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}

	// An attraction's products don't outlive it
	if _, err := s.products.DeleteMany(r.Context(),
		types.ConditionItem{Field: "attraction", Operator: "eq", Value: attractionID}); err != nil {
		s.logError("unable to delete attraction products", err)
	}

	RespondWithData(w, http.StatusOK, map[string]interface{}{})
}

// GetAttractionsInRadius returns the attractions within the given distance
// (km) of a point. A bounding box narrows the scan in the store; the exact
// great-circle distance is checked per candidate.
func (s *routeList) GetAttractionsInRadius(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(s.params(r, "lat"), 64)
	lon, errLon := strconv.ParseFloat(s.params(r, "lon"), 64)
	distance, errDist := strconv.ParseFloat(s.params(r, "distance"), 64)
	if errLat != nil || errLon != nil || errDist != nil || distance <= 0 ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		RespondWithError(w, errors.New("lat, lon and distance must be valid numbers"), http.StatusBadRequest)
		return
	}

	latDelta := (distance / earthRadiusKm) * (180 / math.Pi)
	lonDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	}

	candidates, err := s.attractions.Find(
		types.ConditionItem{Field: "latitude", Operator: "gte", Value: lat - latDelta},
		types.ConditionItem{Field: "latitude", Operator: "lte", Value: lat + latDelta},
		types.ConditionItem{Field: "longitude", Operator: "gte", Value: lon - lonDelta},
		types.ConditionItem{Field: "longitude", Operator: "lte", Value: lon + lonDelta},
	).Sort(db.ColumnOrder{Column: "name", Order: "ASC"}).Exec(r.Context())
	if err != nil {
		s.logError("unable to search attractions by radius", err)
		RespondWithError(w, errors.New("unable to search attractions"), http.StatusInternalServerError)
		return
	}

	within := make([]map[string]interface{}, 0, len(candidates))
	for _, doc := range candidates {
		var attraction m.Attraction
		if err := decodeInto(doc, &attraction); err != nil {
			continue
		}
		if haversineKm(lat, lon, attraction.Latitude, attraction.Longitude) <= distance {
			within = append(within, doc)
		}
	}

	RespondJSONObjectWithCode(w, http.StatusOK, &types.ListResult{
		Success: true,
		Count:   len(within),
		Data:    within,
	})
}

// LikeAttraction toggles the caller's membership in the attraction's likes.
func (s *routeList) LikeAttraction(w http.ResponseWriter, r *http.Request) {
	s.toggleSocial(w, r, "likes")
}

// BookmarkAttraction toggles the caller's membership in the attraction's
// bookmarks.
func (s *routeList) BookmarkAttraction(w http.ResponseWriter, r *http.Request) {
	s.toggleSocial(w, r, "bookmarks")
}

func (s *routeList) toggleSocial(w http.ResponseWriter, r *http.Request, field string) {
	attractionID := s.params(r, "attractionId")
	userID := contextutils.ContextUserID(r.Context())

	doc, err := s.attractions.FindByID(r.Context(), attractionID)
	if err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}

	members, active := toggleMembership(doc[field], userID)
	updated, err := s.attractions.Patch(r.Context(), attractionID, map[string]interface{}{field: members})
	if err != nil {
		s.logError("unable to update attraction "+field, err)
		RespondWithError(w, fmt.Errorf("unable to update %s", field), http.StatusInternalServerError)
		return
	}

	RespondWithData(w, http.StatusOK, map[string]interface{}{
		"id":     attractionID,
		field:    updated[field],
		"count":  len(members),
		"active": active,
	})
}

// toggleMembership adds userID to the member list when absent and removes it
// when present. The second return reports whether the user is a member after
// the toggle.
func toggleMembership(raw interface{}, userID string) ([]interface{}, bool) {
	var members []interface{}
	if list, ok := raw.([]interface{}); ok {
		members = list
	}

	for i, member := range members {
		if member == userID {
			return append(members[:i:i], members[i+1:]...), false
		}
	}
	return append(members, userID), true
}

func (s *routeList) callerOwns(r *http.Request, doc map[string]interface{}) bool {
	if contextutils.ContextUserRole(r.Context()) == "admin" {
		return true
	}
	owner, _ := doc["user"].(string)
	return owner != "" && owner == contextutils.ContextUserID(r.Context())
}

func (s *routeList) respondFetchError(w http.ResponseWriter, resource string, err error) {
	if errors.Is(err, db.ErrNotFound) {
		RespondWithServiceError(w, e.NewNotFoundError(resource+" not found"))
		return
	}
	s.logError("unable to fetch "+resource, err)
	RespondWithError(w, fmt.Errorf("unable to fetch %s", resource), http.StatusInternalServerError)
}

func (s *routeList) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}

func parseAndValidatePayload(obj interface{}, r *http.Request) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(obj); err != nil {
		return errors.New("request body is not valid JSON")
	}
	if err := inputValidator.Struct(obj); err != nil {
		return e.TranslateValidatorError(err, trans)
	}
	return nil
}

// toDocument converts a validated payload into the stored document shape via
// its JSON tags.
func toDocument(payload interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]interface{})
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeInto(doc map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

func attractionUpdateFields(payload m.AttractionUpdate) map[string]interface{} {
	fields := make(map[string]interface{})
	if payload.Name != nil {
		fields["name"] = *payload.Name
		fields["slug"] = slugify(*payload.Name)
	}
	if payload.Description != nil {
		fields["description"] = *payload.Description
	}
	if payload.Website != nil {
		fields["website"] = *payload.Website
	}
	if payload.Phone != nil {
		fields["phone"] = *payload.Phone
	}
	if payload.Email != nil {
		fields["email"] = *payload.Email
	}
	if payload.Address != nil {
		fields["address"] = *payload.Address
	}
	if payload.Latitude != nil {
		fields["latitude"] = *payload.Latitude
	}
	if payload.Longitude != nil {
		fields["longitude"] = *payload.Longitude
	}
	if payload.Categories != nil {
		fields["categories"] = payload.Categories
	}
	if payload.EntryFee != nil {
		fields["entryFee"] = *payload.EntryFee
	}
	return fields
}

func slugify(name string) string {
	var builder strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				builder.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(builder.String(), "-")
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
