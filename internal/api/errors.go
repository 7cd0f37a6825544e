package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/notes"
	"github.com/abhisek/cihui/internal/practice"
	"github.com/abhisek/cihui/internal/quiz"
	"github.com/abhisek/cihui/internal/speech"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeEmptyPool           = "EMPTY_POOL"
	CodeNoActiveQuestion    = "NO_ACTIVE_QUESTION"
	CodeAlreadyAnswered     = "ALREADY_ANSWERED"
	CodeSessionBusy         = "SESSION_BUSY"
	CodeWordNotFound        = "WORD_NOT_FOUND"
	CodeNoSpeechEntries     = "NO_SPEECH_ENTRIES"
	CodeTTSUnavailable      = "TTS_UNAVAILABLE"
	CodeNotesUnavailable    = "NOTES_UNAVAILABLE"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeHTTP                = "HTTP_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response structure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Error is a handler error with a fixed status and code.
type Error struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func badRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: msg}
}

// mapError converts domain errors into an *Error. Unknown errors yield nil.
func mapError(err error) *Error {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, quiz.ErrEmptyPool):
		return &Error{Status: http.StatusNotFound, Code: CodeEmptyPool, Message: "No words in this category"}
	case errors.Is(err, quiz.ErrNoActiveQuestion):
		return &Error{Status: http.StatusConflict, Code: CodeNoActiveQuestion, Message: "No active question"}
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return &Error{Status: http.StatusConflict, Code: CodeAlreadyAnswered, Message: "Question already answered"}
	case errors.Is(err, ErrSessionBusy):
		return &Error{Status: http.StatusConflict, Code: CodeSessionBusy, Message: "Session is busy, retry shortly", Cause: err}
	case errors.Is(err, practice.ErrNoSpeechEntries):
		return &Error{Status: http.StatusNotFound, Code: CodeNoSpeechEntries, Message: "No speech sentences in the dataset"}
	case errors.Is(err, speech.ErrUnavailable):
		return &Error{Status: http.StatusServiceUnavailable, Code: CodeTTSUnavailable, Message: "Audio unavailable"}
	case errors.Is(err, notes.ErrUnavailable):
		return &Error{Status: http.StatusServiceUnavailable, Code: CodeNotesUnavailable, Message: "AI notes unavailable"}
	}
	return nil
}

// ErrorHandler is the centralized Fiber error handler.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if apiErr := mapError(err); apiErr != nil {
			fields := []zap.Field{
				zap.String("path", c.Path()),
				zap.String("code", apiErr.Code),
				zap.Int("status", apiErr.Status),
			}
			if apiErr.Cause != nil {
				fields = append(fields, zap.Error(apiErr.Cause))
			}
			if apiErr.Status >= http.StatusInternalServerError {
				log.Error("request failed", fields...)
			} else {
				log.Debug("request rejected", fields...)
			}
			return c.Status(apiErr.Status).JSON(ErrorResponse{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Status:  apiErr.Status,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("fiber error", zap.Int("code", fiberErr.Code), zap.String("message", fiberErr.Message))
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    CodeHTTP,
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		log.Error("unknown error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    CodeInternal,
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}
