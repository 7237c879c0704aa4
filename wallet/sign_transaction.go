package wallet

import (
	"context"

	"github.com/ipfs-force-community/wallet-hub/types"
)

const (
	// SolanaSignTransaction is the canonical name of the transaction-signing
	// feature.
	SolanaSignTransaction = "solana:signTransaction"
	// SolanaSignAndSendTransaction signs and submits in one round trip; the
	// output is the transaction signature only.
	SolanaSignAndSendTransaction = "solana:signAndSendTransaction"
)

// TransactionVersion identifies the serialized transaction layout. An empty
// value means legacy.
type TransactionVersion string

const (
	TransactionVersionLegacy TransactionVersion = "legacy"
	TransactionVersion0      TransactionVersion = "0"
)

type SignTransactionInput struct {
	Account types.Account `json:"account"`
	// Transaction is the serialized transaction, opaque to the hub.
	Transaction []byte             `json:"transaction"`
	Chain       string             `json:"chain,omitempty"`
	Version     TransactionVersion `json:"version,omitempty"`
}

type SignTransactionOutput struct {
	SignedTransaction []byte `json:"signedTransaction"`
}

type SendTransactionOptions struct {
	SkipPreflight bool `json:"skipPreflight,omitempty"`
	MaxRetries    uint `json:"maxRetries,omitempty"`
}

type SignAndSendTransactionInput struct {
	Account     types.Account           `json:"account"`
	Transaction []byte                  `json:"transaction"`
	Chain       string                  `json:"chain,omitempty"`
	Version     TransactionVersion      `json:"version,omitempty"`
	Options     *SendTransactionOptions `json:"options,omitempty"`
}

type SignAndSendTransactionOutput struct {
	Signature []byte `json:"signature"`
}

type SignTransactionFeature struct {
	Version string `json:"version"`
	// SupportedTransactionVersions the wallet accepts. Empty means legacy
	// only.
	SupportedTransactionVersions []TransactionVersion `json:"supportedTransactionVersions,omitempty"`

	SignTransaction func(ctx context.Context, input SignTransactionInput) (SignTransactionOutput, error) `json:"-"`
}

func (SignTransactionFeature) FeatureName() string { return SolanaSignTransaction }

type SignAndSendTransactionFeature struct {
	Version                      string               `json:"version"`
	SupportedTransactionVersions []TransactionVersion `json:"supportedTransactionVersions,omitempty"`

	SignAndSendTransaction func(ctx context.Context, input SignAndSendTransactionInput) (SignAndSendTransactionOutput, error) `json:"-"`
}

func (SignAndSendTransactionFeature) FeatureName() string { return SolanaSignAndSendTransaction }

func versionSupported(supported []TransactionVersion, want TransactionVersion) bool {
	if want == "" || want == TransactionVersionLegacy {
		if len(supported) == 0 {
			return true
		}
		want = TransactionVersionLegacy
	}
	for _, version := range supported {
		if version == want {
			return true
		}
	}
	return false
}

// SignTransaction checks the transaction version against the feature's
// advertised support before dispatching.
func SignTransaction(ctx context.Context, w Wallet, input SignTransactionInput) (SignTransactionOutput, error) {
	feature, err := types.RequireFeature[SignTransactionFeature](w.Info().Features, Name(w))
	if err != nil {
		return SignTransactionOutput{}, err
	}
	if feature.SignTransaction == nil {
		return SignTransactionOutput{}, types.ErrWalletNotReady
	}
	if !versionSupported(feature.SupportedTransactionVersions, input.Version) {
		return SignTransactionOutput{}, types.ErrUnsupportedTransactionVersion
	}
	out, err := feature.SignTransaction(ctx, input)
	if err != nil {
		return SignTransactionOutput{}, types.ExternalError(err)
	}
	return out, nil
}

func SignAndSendTransaction(ctx context.Context, w Wallet, input SignAndSendTransactionInput) (SignAndSendTransactionOutput, error) {
	feature, err := types.RequireFeature[SignAndSendTransactionFeature](w.Info().Features, Name(w))
	if err != nil {
		return SignAndSendTransactionOutput{}, err
	}
	if feature.SignAndSendTransaction == nil {
		return SignAndSendTransactionOutput{}, types.ErrWalletNotReady
	}
	if !versionSupported(feature.SupportedTransactionVersions, input.Version) {
		return SignAndSendTransactionOutput{}, types.ErrUnsupportedTransactionVersion
	}
	out, err := feature.SignAndSendTransaction(ctx, input)
	if err != nil {
		return SignAndSendTransactionOutput{}, types.ExternalError(err)
	}
	return out, nil
}
