package wallet

import (
	"context"

	"github.com/ipfs-force-community/wallet-hub/types"
)

// StandardConnect is the canonical name of the connect feature.
const StandardConnect = "standard:connect"

// ConnectInput carries the connect options. Silent instructs the wallet to
// return only previously authorized accounts without prompting; the hint is
// best effort and a wallet ignoring it is not an error.
type ConnectInput struct {
	Silent bool `json:"silent,omitempty"`
}

type ConnectOutput struct {
	Accounts []types.Account `json:"accounts"`
}

// ConnectFeature is the typed handle stored in the capability map under
// StandardConnect. The function field is reconstructed after wire decode,
// only the data fields serialize.
type ConnectFeature struct {
	Version string `json:"version"`

	Connect func(ctx context.Context, input ConnectInput) (ConnectOutput, error) `json:"-"`
}

func (ConnectFeature) FeatureName() string { return StandardConnect }

// Connect extracts the connect feature from w and invokes it. On failure
// the wallet stays disconnected.
func Connect(ctx context.Context, w Wallet, input ConnectInput) (ConnectOutput, error) {
	feature, err := types.RequireFeature[ConnectFeature](w.Info().Features, Name(w))
	if err != nil {
		return ConnectOutput{}, err
	}
	if feature.Connect == nil {
		return ConnectOutput{}, types.ErrWalletNotReady
	}
	out, err := feature.Connect(ctx, input)
	if err != nil {
		return ConnectOutput{}, types.ExternalError(err)
	}
	return out, nil
}
