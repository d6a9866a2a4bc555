package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/storefront/internal/model"
	"github.com/vyrodovalexey/storefront/internal/service"
)

// responder writes outcomes according to the configured ResponseMode.
type responder struct {
	mode   ResponseMode
	logger *zap.Logger
}

func newResponder(mode ResponseMode, logger *zap.Logger) *responder {
	if mode == "" {
		mode = ResponseLegacy
	}
	return &responder{mode: mode, logger: logger}
}

// success writes text in legacy mode and data wrapped in an APIResponse otherwise.
func (rs *responder) success(w http.ResponseWriter, status int, text string, data any) {
	if rs.mode == ResponseLegacy {
		rs.writeText(w, http.StatusOK, text)
		return
	}
	rs.writeJSON(w, status, model.NewSuccessResponse(data))
}

// failure reports err using the route's legacy texts or the status mapping.
func (rs *responder) failure(w http.ResponseWriter, err error, msgs routeMessages, operation string) {
	if !service.IsBusinessError(err) {
		rs.logger.Error("request failed", zap.String("operation", operation), zap.Error(err))
		rs.writeInternalError(w)
		return
	}

	if rs.mode == ResponseLegacy {
		text := legacyText(err, msgs)
		if text == "" {
			rs.logger.Error("no legacy text for outcome", zap.String("operation", operation), zap.Error(err))
			rs.writeInternalError(w)
			return
		}
		rs.writeText(w, http.StatusOK, text)
		return
	}

	response := model.ErrorResponse{
		Code:    statusFor(err),
		Message: err.Error(),
	}
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		response.Fields = verrs.Details()
	}
	rs.writeJSON(w, response.Code, response)
}

func (rs *responder) writeInternalError(w http.ResponseWriter) {
	if rs.mode == ResponseLegacy {
		rs.writeText(w, http.StatusInternalServerError, internalErrorText)
		return
	}
	rs.writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: internalErrorText,
	})
}

// writeJSON writes a JSON response with the given status code.
func (rs *responder) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (rs *responder) writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write([]byte(text)); err != nil {
		rs.logger.Debug("failed to write response", zap.Error(err))
	}
}

// legacyText picks the literal text for a business error.
func legacyText(err error, msgs routeMessages) string {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return msgs.unauthorized
	case errors.Is(err, service.ErrInvalidInput):
		if msgs.emptyName != "" && errors.Is(err, model.ErrEmptyName) {
			return msgs.emptyName
		}
		return msgs.invalid
	case errors.Is(err, service.ErrConflict):
		return msgs.conflict
	case errors.Is(err, service.ErrNotFound):
		return msgs.notFound
	case errors.Is(err, service.ErrInsufficientStock):
		return msgs.insufficient
	default:
		return ""
	}
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// listText renders a list as the JSON array text used by legacy list routes.
func listText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
