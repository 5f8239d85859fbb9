package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		kind   Kind
		status int
		code   codes.Code
	}{
		{BadRequest("bad"), KindBadRequest, http.StatusBadRequest, codes.InvalidArgument},
		{NotFound("missing"), KindNotFound, http.StatusNotFound, codes.NotFound},
		{OutOfStock("sold out"), KindOutOfStock, http.StatusConflict, codes.FailedPrecondition},
		{Internal("boom"), KindInternal, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind())
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.GRPCCode())
		})
	}
}

func TestAppError_CauseAndDetails(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to place order",
		WithCause(cause),
		WithDetail("bike_id", int64(4)),
		WithDetails(map[string]any{"part": "tire"}),
	)

	assert.Equal(t, "failed to place order: disk full", err.Error())
	assert.Equal(t, "failed to place order", err.Message())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, map[string]any{"bike_id": int64(4), "part": "tire"}, err.Details())
}

func TestNew_DefaultsMessageToKind(t *testing.T) {
	assert.Equal(t, "not_found", New(KindNotFound, "").Message())
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	appErr := NotFound("bike not found")
	wrapped := fmt.Errorf("catalog: %w", appErr)
	assert.Same(t, appErr, From(wrapped))

	plain := From(errors.New("driver gone"))
	require.NotNil(t, plain)
	assert.Equal(t, KindInternal, plain.Kind())
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("place: %w", OutOfStock("bike unavailable"))
	assert.True(t, IsKind(err, KindOutOfStock))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
}

func TestNilAppError(t *testing.T) {
	var err *AppError
	assert.Equal(t, "<nil>", err.Error())
	assert.Equal(t, KindInternal, err.Kind())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	assert.Nil(t, err.Unwrap())
}
