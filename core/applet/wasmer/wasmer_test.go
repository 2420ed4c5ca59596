package wasmer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"boardlet/core/applet"
)

func TestMainAfterCancelIsKill(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&Module{}).Main(ctx)
	term := applet.TerminationOf(err)
	require.NotNil(t, term)
	require.Equal(t, applet.ReasonKill, term.Reason)
	require.ErrorIs(t, err, context.Canceled)
}
