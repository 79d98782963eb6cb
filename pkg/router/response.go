package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arbuzhub/casino-backend/pkg/errorx"
)

type successResponse struct {
	Code int `json:"code"`
	Data any `json:"data,omitempty"`
}

type errorResponse struct {
	Code  errorx.Code `json:"code"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	var xerr errorx.Error
	if !errors.As(err, &xerr) {
		xerr = errorx.Unknown
	}

	writeJSON(w, httpStatus(xerr.Code), errorResponse{Code: xerr.Code, Error: xerr.Message})
}

func httpStatus(code errorx.Code) int {
	switch code {
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied:
		return http.StatusForbidden
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.Transient, errorx.Unavailable:
		return http.StatusServiceUnavailable
	case errorx.Internal, errorx.Unknown.Code:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
