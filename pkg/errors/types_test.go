package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	err := New(ErrCodeScriptGeneration, "model returned malformed JSON")
	assert.Contains(t, err.Error(), "SCRIPT_GENERATION_FAILED")
	assert.Contains(t, err.Error(), "malformed JSON")

	cause := errors.New("unexpected end of JSON input")
	wrapped := Wrap(cause, ErrCodeScriptGeneration, "parse failed")
	assert.Contains(t, wrapped.Error(), "caused by")
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestDefaultHTTPCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeContentFlagged, http.StatusUnprocessableEntity},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeScriptGeneration, http.StatusBadGateway},
		{ErrCodeSynthesisFailed, http.StatusBadGateway},
		{ErrCodePersistence, http.StatusInternalServerError},
		{ErrCodeAssemblyFailed, http.StatusInternalServerError},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "x").GetHTTPCode())
		})
	}
}

func TestContentFlaggedError(t *testing.T) {
	err := ContentFlaggedError(0.42, []string{"toxicity"})
	assert.Equal(t, ErrCodeContentFlagged, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.GetHTTPCode())
	assert.Equal(t, 0.42, err.Details["toxicity_score"])
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	inner := ScriptGenerationError("studio", errors.New("empty response"))
	outer := fmt.Errorf("engine attempt: %w", inner)

	assert.True(t, Is(outer, ErrCodeScriptGeneration))
	assert.False(t, Is(outer, ErrCodeContentFlagged))
	assert.Equal(t, ErrCodeScriptGeneration, GetCode(outer))
	assert.Equal(t, http.StatusBadGateway, GetHTTPCode(outer))
}

func TestGetCodeForPlainError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPCode(errors.New("plain")))
}
