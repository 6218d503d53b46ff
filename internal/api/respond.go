package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"gotrial/internal/errors"

	"github.com/go-playground/validator/v10"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, err error, details interface{}) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s: %v", appErr.Code, err)
	}
	writeJSON(w, status, ErrorResponse{Error: appErr.Error(), Code: appErr.Code, Details: details})
}

// decode reads a JSON body into dst and runs envelope validation
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body: "+err.Error()), nil)
		return false
	}
	if err := requestValidate.Struct(dst); err != nil {
		s.writeError(w, errors.ValidationError(describeValidation(err)), nil)
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed "+fe.Tag()+" "+fe.Param())
	}
	return strings.Join(parts, "; ")
}
