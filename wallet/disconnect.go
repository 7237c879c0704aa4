package wallet

import (
	"context"

	"github.com/ipfs-force-community/wallet-hub/types"
)

// StandardDisconnect is the canonical name of the disconnect feature.
const StandardDisconnect = "standard:disconnect"

type DisconnectFeature struct {
	Version string `json:"version"`

	Disconnect func(ctx context.Context) error `json:"-"`
}

func (DisconnectFeature) FeatureName() string { return StandardDisconnect }

// Disconnect revokes the wallet's authorization. Calling it while already
// disconnected fails with a wallet-disconnected error; callers wanting a
// no-op must check Connected first.
func Disconnect(ctx context.Context, w Wallet) error {
	feature, err := types.RequireFeature[DisconnectFeature](w.Info().Features, Name(w))
	if err != nil {
		return err
	}
	if feature.Disconnect == nil {
		return types.ErrWalletNotReady
	}
	if !Connected(w) {
		return types.ErrWalletDisconnected
	}
	if err := feature.Disconnect(ctx); err != nil {
		return types.ExternalError(err)
	}
	return nil
}
