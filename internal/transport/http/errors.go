package http

import (
	"encoding/json"
	"net/http"

	"github.com/enumclawevents/opencircle-api/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidDatetime       = "invalid_datetime"
	codeInvalidID             = "invalid_id"
	codeInvalidLimit          = "invalid_limit"
	codeInvalidOffset         = "invalid_offset"
	codeInvalidIncludeDrafts  = "invalid_include_drafts"
	codeInvalidStatus         = "invalid_status"
	codeCityRequired          = "city_required"
	codeTitleRequired         = "title_required"
	codeStartRequired         = "start_datetime_required"
	codeEndBeforeStart        = "end_before_start"
	codeNameRequired          = "publisher_name_required"
	codeAdminKeyNotConfigured = "admin_key_not_configured"
	codeInvalidAdminKey       = "invalid_admin_key"
	codePublisherKeyRequired  = "publisher_key_required"
	codeInvalidPublisherKey   = "invalid_publisher_key"
	codeCityNotAllowed        = "city_not_allowed"
	codeNotEventOwner         = "not_event_owner"
	codePublishRequiresAdmin  = "publish_requires_admin"
	codeDuplicateExternalID   = "duplicate_external_id"
	codePublisherNameExists   = "publisher_name_exists"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps every domain sentinel to its HTTP status and
// wire code. Handlers fall through here after their request-shape checks.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrAdminKeyNotConfigured:
		writeError(w, http.StatusInternalServerError, codeAdminKeyNotConfigured, err.Error())
	case domain.ErrInvalidAdminKey:
		writeError(w, http.StatusUnauthorized, codeInvalidAdminKey, err.Error())
	case domain.ErrPublisherKeyRequired:
		writeError(w, http.StatusUnauthorized, codePublisherKeyRequired, err.Error())
	case domain.ErrInvalidPublisherKey:
		writeError(w, http.StatusUnauthorized, codeInvalidPublisherKey, err.Error())
	case domain.ErrEventNotFound, domain.ErrPublisherNotFound:
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case domain.ErrNotEventOwner:
		writeError(w, http.StatusForbidden, codeNotEventOwner, err.Error())
	case domain.ErrCityNotAllowed:
		writeError(w, http.StatusForbidden, codeCityNotAllowed, err.Error())
	case domain.ErrPublishRequiresAdmin:
		writeError(w, http.StatusForbidden, codePublishRequiresAdmin, err.Error())
	case domain.ErrCityRequired:
		writeError(w, http.StatusBadRequest, codeCityRequired, err.Error())
	case domain.ErrTitleRequired:
		writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
	case domain.ErrStartRequired:
		writeError(w, http.StatusBadRequest, codeStartRequired, err.Error())
	case domain.ErrEndBeforeStart:
		writeError(w, http.StatusBadRequest, codeEndBeforeStart, err.Error())
	case domain.ErrInvalidStatus:
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case domain.ErrInvalidLimit:
		writeError(w, http.StatusBadRequest, codeInvalidLimit, err.Error())
	case domain.ErrInvalidOffset:
		writeError(w, http.StatusBadRequest, codeInvalidOffset, err.Error())
	case domain.ErrPublisherNameRequired:
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case domain.ErrDuplicateExternalID:
		writeError(w, http.StatusConflict, codeDuplicateExternalID, err.Error())
	case domain.ErrPublisherNameExists:
		writeError(w, http.StatusConflict, codePublisherNameExists, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
