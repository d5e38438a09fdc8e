// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Pipeline failures. Each one aborts the current event only; callers match with errors.Is.
var (
	ErrMalformedLayout      = errors.New("malformed account layout")
	ErrInvalidFlags         = errors.New("invalid market account flags")
	ErrInvalidSeed          = errors.New("invalid program address seeds")
	ErrNotFound             = errors.New("not found")
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")
	ErrInvalidSlippage      = errors.New("slippage bps out of range")

	ErrInvalidFee            = errors.New("invalid fee fraction")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrTargetNotInPool       = errors.New("target mint not in pool")
	ErrPoolAlreadyRegistered = errors.New("pool already registered")
)

// HttpError represents an HTTP error with status code and message
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

// HTTP Error constructors

func HTTPErrorBadRequest(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    messageOrDefault(msg, "Bad request"),
	}
}

func HTTPErrorNotFound(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    messageOrDefault(msg, "Not found"),
	}
}

func HTTPErrorInternalError(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    messageOrDefault(msg, "Internal server error"),
	}
}

func HTTPErrorResourceConflict(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusConflict,
		Code:       "RESOURCE_CONFLICT",
		Message:    messageOrDefault(msg, "Resource conflict"),
	}
}

// HTTPErrorFromPipeline maps a pipeline failure onto a client or server error.
func HTTPErrorFromPipeline(err error) *HttpError {
	switch {
	case errors.Is(err, ErrNotFound):
		return HTTPErrorNotFound(err.Error())
	case errors.Is(err, ErrPoolAlreadyRegistered):
		return HTTPErrorResourceConflict(err.Error())
	case errors.Is(err, ErrInvalidSlippage),
		errors.Is(err, ErrInvalidFee),
		errors.Is(err, ErrInsufficientLiquidity),
		errors.Is(err, ErrArithmeticOverflow):
		return HTTPErrorBadRequest(err.Error())
	default:
		return HTTPErrorInternalError(err.Error())
	}
}
