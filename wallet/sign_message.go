package wallet

import (
	"context"
	"fmt"

	"github.com/ipfs-force-community/wallet-hub/types"
)

// SolanaSignMessage is the canonical name of the message-signing feature.
const SolanaSignMessage = "solana:signMessage"

// SignatureType names the signature algorithm of an output. An empty value
// means the chain default, ed25519.
type SignatureType string

const SignatureTypeEd25519 SignatureType = "ed25519"

type SignMessageInput struct {
	Account types.Account `json:"account"`
	Message []byte        `json:"message"`
}

// SignMessageOutput carries the signed message bytes and the raw signature.
// Use TrySignature when the signing algorithm has not been checked yet.
type SignMessageOutput struct {
	SignedMessage []byte        `json:"signedMessage"`
	RawSignature  []byte        `json:"signature"`
	SignatureType SignatureType `json:"signatureType,omitempty"`
}

// TrySignature returns the signature if it uses the default algorithm, and
// an invalid-signature error otherwise. Wallets may sign with a non-default
// algorithm the caller's context cannot accept.
func (o SignMessageOutput) TrySignature() ([]byte, error) {
	if o.SignatureType != "" && o.SignatureType != SignatureTypeEd25519 {
		return nil, types.ErrInvalidSignature.WithMessage(fmt.Sprintf("unexpected signature type %s", o.SignatureType))
	}
	return o.RawSignature, nil
}

// Signature is the strict twin of TrySignature, panicking on a non-default
// algorithm. For callers that already validated the signature type.
func (o SignMessageOutput) Signature() []byte {
	sig, err := o.TrySignature()
	if err != nil {
		panic(err)
	}
	return sig
}

type SignMessageFeature struct {
	Version string `json:"version"`

	SignMessage func(ctx context.Context, input SignMessageInput) (SignMessageOutput, error) `json:"-"`
}

func (SignMessageFeature) FeatureName() string { return SolanaSignMessage }

// SignMessage signs a single message through the wallet's feature handle.
func SignMessage(ctx context.Context, w Wallet, input SignMessageInput) (SignMessageOutput, error) {
	feature, err := types.RequireFeature[SignMessageFeature](w.Info().Features, Name(w))
	if err != nil {
		return SignMessageOutput{}, err
	}
	if feature.SignMessage == nil {
		return SignMessageOutput{}, types.ErrWalletNotReady
	}
	out, err := feature.SignMessage(ctx, input)
	if err != nil {
		return SignMessageOutput{}, types.ExternalError(err)
	}
	return out, nil
}

// SignMessages signs every input concurrently and fails as soon as any
// single signature fails. Partial successes are discarded; the caller must
// treat a batch failure as "unknown how many signatures completed inside
// the provider". Results match the input order.
func SignMessages(ctx context.Context, w Wallet, inputs []SignMessageInput) ([]SignMessageOutput, error) {
	feature, err := types.RequireFeature[SignMessageFeature](w.Info().Features, Name(w))
	if err != nil {
		return nil, err
	}
	if feature.SignMessage == nil {
		return nil, types.ErrWalletNotReady
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		i   int
		out SignMessageOutput
		err error
	}
	results := make(chan indexed, len(inputs))
	for i, input := range inputs {
		go func(i int, input SignMessageInput) {
			out, err := feature.SignMessage(ctx, input)
			results <- indexed{i: i, out: out, err: err}
		}(i, input)
	}

	outs := make([]SignMessageOutput, len(inputs))
	for range inputs {
		r := <-results
		if r.err != nil {
			return nil, types.ExternalError(r.err)
		}
		outs[r.i] = r.out
	}
	return outs, nil
}
