package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{
			name: "failed with retries left",
			job:  Job{Status: JobStatusFailed, RetryCount: 0, MaxRetries: 1},
			want: true,
		},
		{
			name: "failed with retries exhausted",
			job:  Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 1},
			want: false,
		},
		{
			name: "permanently failed is never retryable",
			job:  Job{Status: JobStatusPermanentlyFailed, RetryCount: 0, MaxRetries: 3},
			want: false,
		},
		{
			name: "completed is not retryable",
			job:  Job{Status: JobStatusCompleted},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.IsRetryable())
		})
	}
}

func TestJobIsTerminal(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"completed", Job{Status: JobStatusCompleted}, true},
		{"permanently failed", Job{Status: JobStatusPermanentlyFailed}, true},
		{"cancelled", Job{Status: JobStatusCancelled}, true},
		{"failed with retries exhausted", Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 1}, true},
		{"failed with retries left", Job{Status: JobStatusFailed, RetryCount: 0, MaxRetries: 1}, false},
		{"pending", Job{Status: JobStatusPending}, false},
		{"processing", Job{Status: JobStatusProcessing}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.IsTerminal())
		})
	}
}

func TestStructuredJobErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewRejectedError("CONTENT_FLAGGED", "flagged", "details", cause)

	assert.Equal(t, "flagged", err.Error())
	assert.Equal(t, ErrorTypeRejected, err.Type)
	assert.ErrorIs(t, err, cause)

	var structured *StructuredJobError
	assert.ErrorAs(t, error(err), &structured)
}
