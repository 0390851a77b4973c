package endpoint

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/roamstack/attractions-api/auth"
	"github.com/roamstack/attractions-api/rest/contextutils"
	e "github.com/roamstack/attractions-api/rest/errors"
	m "github.com/roamstack/attractions-api/rest/models"
	"github.com/roamstack/attractions-api/types"
)

func (s *routeList) Register(w http.ResponseWriter, r *http.Request) {
	var payload m.UserRegister
	if err := parseAndValidatePayload(&payload, r); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	email := strings.ToLower(payload.Email)
	existing, err := s.users.CountDocuments(r.Context(),
		types.ConditionItem{Field: "email", Operator: "eq", Value: email})
	if err != nil {
		s.logError("unable to check for existing user", err)
		RespondWithError(w, errors.New("unable to register"), http.StatusInternalServerError)
		return
	}
	if existing > 0 {
		RespondWithServiceError(w, e.NewConflictError("email is already registered"))
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		s.logError("unable to hash password", err)
		RespondWithError(w, errors.New("unable to register"), http.StatusInternalServerError)
		return
	}

	role := payload.Role
	if role == "" {
		role = "user"
	}

	id, err := s.users.Insert(r.Context(), map[string]interface{}{
		"name":      payload.Name,
		"email":     email,
		"password":  hash,
		"role":      role,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logError("unable to insert user", err)
		RespondWithError(w, errors.New("unable to register"), http.StatusInternalServerError)
		return
	}

	s.respondWithToken(w, http.StatusCreated, id, role)
}

func (s *routeList) Login(w http.ResponseWriter, r *http.Request) {
	var payload m.UserLogin
	if err := parseAndValidatePayload(&payload, r); err != nil {
		RespondWithError(w, err, http.StatusBadRequest)
		return
	}

	docs, err := s.users.Find(types.ConditionItem{
		Field:    "email",
		Operator: "eq",
		Value:    strings.ToLower(payload.Email),
	}).Limit(1).Exec(r.Context())
	if err != nil {
		s.logError("unable to look up user", err)
		RespondWithError(w, errors.New("unable to login"), http.StatusInternalServerError)
		return
	}

	if len(docs) == 0 {
		RespondWithServiceError(w, e.NewUnauthorizedError(auth.ErrInvalidCredentials.Error()))
		return
	}

	var user m.User
	if err := decodeInto(docs[0], &user); err != nil {
		s.logError("unable to decode user document", err)
		RespondWithError(w, errors.New("unable to login"), http.StatusInternalServerError)
		return
	}

	if !auth.CheckPassword(user.Password, payload.Password) {
		RespondWithServiceError(w, e.NewUnauthorizedError(auth.ErrInvalidCredentials.Error()))
		return
	}

	s.respondWithToken(w, http.StatusOK, user.ID, user.Role)
}

// Me returns the authenticated caller's user document.
func (s *routeList) Me(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.ContextUserID(r.Context())

	doc, err := s.users.FindByID(r.Context(), userID)
	if err != nil {
		s.respondFetchError(w, "user", err)
		return
	}

	var user m.User
	if err := decodeInto(doc, &user); err != nil {
		s.logError("unable to decode user document", err)
		RespondWithError(w, errors.New("unable to fetch user"), http.StatusInternalServerError)
		return
	}

	RespondWithData(w, http.StatusOK, user)
}

func (s *routeList) respondWithToken(w http.ResponseWriter, code int, userID string, role string) {
	token, err := s.authn.IssueToken(userID, role)
	if err != nil {
		s.logError("unable to issue token", err)
		RespondWithError(w, errors.New("unable to issue token"), http.StatusInternalServerError)
		return
	}
	RespondJSONObjectWithCode(w, code, m.TokenResponse{Success: true, Token: token})
}
