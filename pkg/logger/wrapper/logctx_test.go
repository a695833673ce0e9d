package wrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithLogCtx_MergesFields(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithLogCtx(ctx, LogCtx{Action: "auth", ConnID: "c-1"})

	lc := fromContext(ctx)
	require.Equal(t, "req-1", lc.RequestID)
	require.Equal(t, "auth", lc.Action)
	require.Equal(t, "c-1", lc.ConnID)
}

func TestErrorCtx_RestoresOrigin(t *testing.T) {
	base := WithRequestID(context.Background(), "req-7")

	inner := WithAction(WithUserID(base, "201"), "route_sos")
	err := Error(inner, errors.New("boom"))

	outer := WithAction(base, "ws_dispatch")
	got := fromContext(ErrorCtx(outer, err))

	require.Equal(t, "route_sos", got.Action)
	require.Equal(t, "201", got.UserID)
	require.Equal(t, "req-7", got.RequestID)
}

func TestError_NilStaysNil(t *testing.T) {
	require.NoError(t, Error(context.Background(), nil))
}

func TestError_Unwraps(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Error(context.Background(), sentinel)
	require.ErrorIs(t, err, sentinel)
}
