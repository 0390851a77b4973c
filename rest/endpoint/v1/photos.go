package endpoint

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// UploadAttractionPhoto stores a multipart image under the configured upload
// directory and records the filename on the attraction document.
func (s *routeList) UploadAttractionPhoto(w http.ResponseWriter, r *http.Request) {
	attractionID := s.params(r, "attractionId")

	doc, err := s.attractions.FindByID(r.Context(), attractionID)
	if err != nil {
		s.respondFetchError(w, "attraction", err)
		return
	}
	if !s.callerOwns(r, doc) {
		RespondWithError(w, errors.New("not authorized to update this attraction"), http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, errors.New("a file is required"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		RespondWithError(w, errors.New("file must be an image"), http.StatusBadRequest)
		return
	}

	name := "photo_" + attractionID + safeExtension(header.Filename)

	if err := os.MkdirAll(s.config.UploadDir(), 0o755); err != nil {
		s.logError("unable to create upload directory", err)
		RespondWithError(w, errors.New("unable to store file"), http.StatusInternalServerError)
		return
	}

	dst, err := os.Create(filepath.Join(s.config.UploadDir(), name))
	if err != nil {
		s.logError("unable to create upload file", err)
		RespondWithError(w, errors.New("unable to store file"), http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.logError("unable to write upload file", err)
		RespondWithError(w, errors.New("unable to store file"), http.StatusInternalServerError)
		return
	}

	if _, err := s.attractions.Patch(r.Context(), attractionID, map[string]interface{}{"photo": name}); err != nil {
		s.logError("unable to record photo on attraction", err)
		RespondWithError(w, errors.New("unable to store file"), http.StatusInternalServerError)
		return
	}

	RespondWithData(w, http.StatusOK, name)
}

// safeExtension keeps only a plain lowercase alphanumeric extension from the
// uploaded filename.
func safeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ".jpg"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".jpg"
		}
	}
	return ext
}
