// Package render writes JSON responses and is the single terminal boundary that converts
// failures into the `{message, stack?}` envelope. It also decodes and validates request bodies.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/portfolio-go/apperror"
)

const maxBodyBytes = 1 << 20

// Renderer carries the two pieces of process configuration the error boundary needs:
// whether stacks may be echoed to clients, and where to log server-side failures.
type Renderer struct {
	logger     *slog.Logger
	validate   *validator.Validate
	production bool
}

// New creates a Renderer. In production, error responses never include a stack.
func New(logger *slog.Logger, production bool) *Renderer {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names ("email") instead of Go field names ("Email").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Renderer{logger: logger, validate: v, production: production}
}

// JSON serializes `data` and writes it with the given status.
func (rd *Renderer) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rd.logger.Error("failed to encode response", "error", err)
	}
}

// Error converts any error into the JSON error envelope. Errors that are not
// *apperror.AppError are treated as unexpected and become a 500.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("internal server error", err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		rd.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"type", appErr.Type.String(),
			"error", appErr.Error(),
		)
	} else {
		rd.logger.DebugContext(r.Context(), "request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"type", appErr.Type.String(),
			"error", appErr.Error(),
		)
	}

	rd.JSON(w, status, appErr.ToResponse(!rd.production))
}

// Decode reads a JSON body into dst and runs struct validation on it.
// Unknown fields, malformed JSON and validation failures are all BadRequest.
func (rd *Renderer) Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewBadRequestError("request body is required", err)
		}
		return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
	}

	if err := rd.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperror.NewValidationError(describe(verrs), err)
		}
		return apperror.NewValidationError("invalid request body", err)
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "url", "http_url":
			parts = append(parts, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// Recoverer turns a panic in any downstream handler into a logged 500 written through
// the error boundary.
func (rd *Renderer) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			rd.logger.ErrorContext(r.Context(), "panic recovered",
				"panic", fmt.Sprint(rvr),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			rd.Error(w, r, apperror.NewInternalError("internal server error", fmt.Errorf("panic: %v", rvr)))
		}()
		next.ServeHTTP(w, r)
	})
}
