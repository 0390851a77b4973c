package endpoint

import (
	"encoding/json"
	"errors"
	"net/http"

	e "github.com/roamstack/attractions-api/rest/errors"
	m "github.com/roamstack/attractions-api/rest/models"
)

// RespondJSONObjectWithCode writes the object and status header to the response. Important to note that if this is being
// used for an error case then an empty return will need to immediately follow the call to this function
func RespondJSONObjectWithCode(w http.ResponseWriter, code int, obj interface{}) {
	setCommonHeaders(w)
	var err error
	var jsonBytes []byte
	if obj != nil {
		jsonBytes, err = json.Marshal(obj)
	}
	writeJSONBytes(w, jsonBytes, err, code)
}

func writeJSONBytes(w http.ResponseWriter, jsonBytes []byte, err error, code int) {
	if err != nil {
		RespondWithError(w, errors.New("unable to marshal response"), http.StatusInternalServerError)
	}

	w.WriteHeader(code)
	if jsonBytes != nil {
		w.Write(jsonBytes)
	}
}

func RespondWithError(w http.ResponseWriter, err error, code int) {
	requestError := m.ModelError{
		Description: err.Error(),
	}
	RespondJSONObjectWithCode(w, code, requestError)
}

// RespondWithServiceError writes an error response with the status implied
// by the error's type.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	RespondWithError(w, err, statusFor(err))
}

func statusFor(err error) int {
	switch err.(type) {
	case *e.NotFoundError:
		return http.StatusNotFound
	case *e.ConflictError:
		return http.StatusConflict
	case *e.UnauthorizedError:
		return http.StatusUnauthorized
	case *e.ForbiddenError:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithData writes the single-resource success envelope.
func RespondWithData(w http.ResponseWriter, code int, data interface{}) {
	RespondJSONObjectWithCode(w, code, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func setCommonHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
}
