package types

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWalletErrorMatching(t *testing.T) {
	err := ErrWalletConnection.WithMessage("provider window crashed")
	require.ErrorIs(t, err, ErrWalletConnection)
	require.NotErrorIs(t, err, ErrWalletDisconnection)
	require.Contains(t, err.Error(), "provider window crashed")

	wrapped := errors.Wrap(ErrWalletSignMessage, "dispatch")
	require.ErrorIs(t, wrapped, ErrWalletSignMessage)
}

func TestUnsupportedFeatureError(t *testing.T) {
	err := UnsupportedFeatureError("solana:signMessage", "Phantom")
	require.Equal(t, "the requested feature: `solana:signMessage` is not supported for this wallet: `Phantom`", err.Error())
	require.ErrorIs(t, err, UnsupportedFeatureError("standard:connect", "other"))
}

func TestExternalError(t *testing.T) {
	require.Nil(t, ExternalError(nil))

	err := ExternalError(fmt.Errorf("rpc: connection reset"))
	require.Equal(t, CodeExternal, err.Code)
	require.Equal(t, "rpc: connection reset", err.Error())

	// taxonomy members pass through unchanged
	require.Same(t, ErrWalletTimeout, ExternalError(ErrWalletTimeout))
}
