package apperror

import (
	"net/http"
)

type Error struct {
	Code       string
	Message    string
	StatusCode int
	Internal   error
	Retryable  bool // Whether the operation can be retried
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Internal
}

var (
	ErrNotFound = &Error{
		Code:       "not_found",
		Message:    "The requested resource was not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &Error{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrSessionNotFound = &Error{
		Code:       "session_not_found",
		Message:    "Upload session not found",
		StatusCode: http.StatusNotFound,
	}

	ErrVideoNotFound = &Error{
		Code:       "video_not_found",
		Message:    "Video not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidChunkIndex = &Error{
		Code:       "invalid_chunk_index",
		Message:    "Chunk index out of range",
		StatusCode: http.StatusBadRequest,
	}

	ErrEmptyChunk = &Error{
		Code:       "empty_chunk",
		Message:    "Chunk body is empty",
		StatusCode: http.StatusBadRequest,
	}

	ErrIncompleteUpload = &Error{
		Code:       "incomplete_upload",
		Message:    "Upload is missing one or more chunks",
		StatusCode: http.StatusBadRequest,
	}

	ErrFileTooLarge = &Error{
		Code:       "file_too_large",
		Message:    "The uploaded file exceeds the maximum allowed size",
		StatusCode: http.StatusRequestEntityTooLarge,
	}

	ErrStorageFull = &Error{
		Code:       "storage_full",
		Message:    "Insufficient storage space",
		StatusCode: http.StatusInsufficientStorage,
		Retryable:  true,
	}

	ErrInternal = &Error{
		Code:       "internal_error",
		Message:    "An unexpected error occurred. Please try again later",
		StatusCode: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &Error{
		Code:       "service_unavailable",
		Message:    "Service temporarily unavailable. Please try again later",
		StatusCode: http.StatusServiceUnavailable,
		Retryable:  true,
	}

	// Encoder/job errors
	ErrTranscodeFailed = &Error{
		Code:       "transcode_failed",
		Message:    "Transcoding failed",
		StatusCode: http.StatusInternalServerError,
	}

	ErrEncoderNotFound = &Error{
		Code:       "encoder_not_found",
		Message:    "Encoder binary not found on PATH",
		StatusCode: http.StatusInternalServerError,
	}

	ErrJobNotFound = &Error{
		Code:       "job_not_found",
		Message:    "Transcoding job not found",
		StatusCode: http.StatusNotFound,
	}
)

func Wrap(err error, appErr *Error) *Error {
	return &Error{
		Code:       appErr.Code,
		Message:    appErr.Message,
		StatusCode: appErr.StatusCode,
		Internal:   err,
		Retryable:  appErr.Retryable,
	}
}

func WrapWithMessage(err error, code, message string, statusCode int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}
