package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	}}
}

// ==========================
// Retry Tests
// ==========================

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"NOT_FOUND: process definition not found", false},
		{"PERMISSION_DENIED", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.msg)), tt.msg)
	}
}

func TestExecuteWithRetry_RecoversFromTransientFailure(t *testing.T) {
	c := testClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return "ok", nil
	}, "publish-message")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := testClient(2)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("unavailable")
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeWorkflowEngineFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "topology", stdErr.Metadata["operation"])
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	c := testClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("process definition not found")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "after 1 attempt(s)")
}

// ==========================
// Worker Tests
// ==========================

type countingHandler struct{ calls int }

func (h *countingHandler) Handle(worker.JobClient, entities.Job) { h.calls++ }

func TestInstrument_RecordsJobMetrics(t *testing.T) {
	const taskType = "instrument-test"
	h := &countingHandler{}
	before := testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType))

	Instrument(taskType, h)(nil, entities.Job{})

	assert.Equal(t, 1, h.calls)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}
