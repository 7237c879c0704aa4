package walletevent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/wallet-hub/metrics"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
)

// RemoteWallet projects a provider connection into the wallet contract. The
// descriptor announced by the provider carries feature data only; the
// callable handles are rebuilt here, each one a JSON round trip over the
// provider's event channel.
type RemoteWallet struct {
	stream  *types.BaseEventStream
	channel *types.ChannelInfo

	lk        sync.Mutex
	info      types.WalletInfo
	account   *types.Account
	nextSub   uint64
	listeners map[uint64]func(wallet.PropertiesChange)
}

var _ wallet.Wallet = (*RemoteWallet)(nil)

func newRemoteWallet(stream *types.BaseEventStream, channel *types.ChannelInfo, announced types.WalletInfo) *RemoteWallet {
	r := &RemoteWallet{
		stream:    stream,
		channel:   channel,
		listeners: make(map[uint64]func(wallet.PropertiesChange)),
	}

	// in-process announcements carry typed handles, wire ones carry decoded
	// maps; one JSON round trip gives both the same shape
	announcedFeatures := normalizeFeatures(announced.Features)

	info := announced
	info.Features = make(types.Features, len(announcedFeatures))
	for name, raw := range announcedFeatures {
		switch name {
		case wallet.StandardConnect:
			types.AddFeature(info.Features, wallet.ConnectFeature{Version: featureVersion(raw), Connect: r.connect})
		case wallet.StandardDisconnect:
			types.AddFeature(info.Features, wallet.DisconnectFeature{Version: featureVersion(raw), Disconnect: r.disconnect})
		case wallet.StandardEvents:
			types.AddFeature(info.Features, wallet.EventsFeature{Version: featureVersion(raw), On: r.on})
		case wallet.SolanaSignMessage:
			types.AddFeature(info.Features, wallet.SignMessageFeature{Version: featureVersion(raw), SignMessage: r.signMessage})
		case wallet.SolanaSignTransaction:
			types.AddFeature(info.Features, wallet.SignTransactionFeature{
				Version:                      featureVersion(raw),
				SupportedTransactionVersions: transactionVersions(raw),
				SignTransaction:              r.signTransaction,
			})
		case wallet.SolanaSignAndSendTransaction:
			types.AddFeature(info.Features, wallet.SignAndSendTransactionFeature{
				Version:                      featureVersion(raw),
				SupportedTransactionVersions: transactionVersions(raw),
				SignAndSendTransaction:       r.signAndSendTransaction,
			})
		case wallet.ExperimentalEncrypt:
			types.AddFeature(info.Features, wallet.EncryptFeature{Version: featureVersion(raw), Ciphers: featureStrings(raw, "ciphers"), Encrypt: r.encrypt})
		case wallet.ExperimentalDecrypt:
			types.AddFeature(info.Features, wallet.DecryptFeature{Version: featureVersion(raw), Ciphers: featureStrings(raw, "ciphers"), Decrypt: r.decrypt})
		default:
			// chain extensions the hub does not know stay opaque
			types.RegisterFeature(info.Features, name, raw)
		}
	}
	r.info = info
	return r
}

func (r *RemoteWallet) Info() types.WalletInfo {
	r.lk.Lock()
	defer r.lk.Unlock()
	return r.info
}

func (r *RemoteWallet) Account() *types.Account {
	r.lk.Lock()
	defer r.lk.Unlock()
	return r.account
}

func (r *RemoteWallet) connect(ctx context.Context, input wallet.ConnectInput) (wallet.ConnectOutput, error) {
	start := time.Now()
	var out wallet.ConnectOutput
	if err := r.call(ctx, MethodWalletConnect, input, &out, types.ErrWalletConnection); err != nil {
		return wallet.ConnectOutput{}, err
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.WalletNameKey, r.info.Name)},
		metrics.WalletConnect.M(metrics.SinceInMilliseconds(start)))

	r.lk.Lock()
	r.info.Accounts = out.Accounts
	if len(out.Accounts) > 0 {
		account := out.Accounts[0]
		r.account = &account
	} else {
		r.account = nil
	}
	r.lk.Unlock()
	r.notify(wallet.PropertiesChange{Accounts: out.Accounts})
	return out, nil
}

func (r *RemoteWallet) disconnect(ctx context.Context) error {
	if err := r.call(ctx, MethodWalletDisconnect, struct{}{}, nil, types.ErrWalletDisconnection); err != nil {
		return err
	}
	r.lk.Lock()
	r.info.Accounts = nil
	r.account = nil
	r.lk.Unlock()
	r.notify(wallet.PropertiesChange{Accounts: []types.Account{}})
	return nil
}

func (r *RemoteWallet) signMessage(ctx context.Context, input wallet.SignMessageInput) (wallet.SignMessageOutput, error) {
	start := time.Now()
	var out wallet.SignMessageOutput
	if err := r.call(ctx, MethodWalletSignMessage, input, &out, types.ErrWalletSignMessage); err != nil {
		return wallet.SignMessageOutput{}, err
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.WalletNameKey, r.info.Name)},
		metrics.WalletSign.M(metrics.SinceInMilliseconds(start)))
	return out, nil
}

func (r *RemoteWallet) signTransaction(ctx context.Context, input wallet.SignTransactionInput) (wallet.SignTransactionOutput, error) {
	start := time.Now()
	var out wallet.SignTransactionOutput
	if err := r.call(ctx, MethodWalletSignTransaction, input, &out, types.ErrWalletSignTransaction); err != nil {
		return wallet.SignTransactionOutput{}, err
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.WalletNameKey, r.info.Name)},
		metrics.WalletSignTransaction.M(metrics.SinceInMilliseconds(start)))
	return out, nil
}

func (r *RemoteWallet) signAndSendTransaction(ctx context.Context, input wallet.SignAndSendTransactionInput) (wallet.SignAndSendTransactionOutput, error) {
	var out wallet.SignAndSendTransactionOutput
	if err := r.call(ctx, MethodWalletSignAndSendTransaction, input, &out, types.ErrWalletSendTransaction); err != nil {
		return wallet.SignAndSendTransactionOutput{}, err
	}
	return out, nil
}

func (r *RemoteWallet) encrypt(ctx context.Context, input wallet.EncryptInput) (wallet.EncryptOutput, error) {
	var out wallet.EncryptOutput
	if err := r.call(ctx, MethodWalletEncrypt, input, &out, types.ErrWalletEncrypt); err != nil {
		return wallet.EncryptOutput{}, err
	}
	return out, nil
}

func (r *RemoteWallet) decrypt(ctx context.Context, input wallet.DecryptInput) (wallet.DecryptOutput, error) {
	var out wallet.DecryptOutput
	if err := r.call(ctx, MethodWalletDecrypt, input, &out, types.ErrWalletDecrypt); err != nil {
		return wallet.DecryptOutput{}, err
	}
	return out, nil
}

func (r *RemoteWallet) on(event string, listener func(wallet.PropertiesChange)) wallet.Disposer {
	if event != wallet.EventChange {
		return func() {}
	}
	r.lk.Lock()
	id := r.nextSub
	r.nextSub++
	r.listeners[id] = listener
	r.lk.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.lk.Lock()
			delete(r.listeners, id)
			r.lk.Unlock()
		})
	}
}

func (r *RemoteWallet) notify(change wallet.PropertiesChange) {
	r.lk.Lock()
	listeners := make([]func(wallet.PropertiesChange), 0, len(r.listeners))
	for _, cb := range r.listeners {
		listeners = append(listeners, cb)
	}
	r.lk.Unlock()
	for _, cb := range listeners {
		cb(change)
	}
}

// call round-trips one request. A provider-side failure comes back as text
// and is folded into the taxonomy under base.
func (r *RemoteWallet) call(ctx context.Context, method string, in interface{}, out interface{}, base *types.WalletError) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return types.DeserializationError(err.Error())
	}
	if err := r.stream.SendRequest(ctx, r.channel, method, payload, out); err != nil {
		return base.WithMessage(err.Error())
	}
	return nil
}

func normalizeFeatures(features types.Features) map[string]interface{} {
	data, err := json.Marshal(features)
	if err != nil {
		return features
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return features
	}
	return raw
}

func featureVersion(raw interface{}) string {
	if m, ok := raw.(map[string]interface{}); ok {
		if version, ok := m["version"].(string); ok && version != "" {
			return version
		}
	}
	return "1.0.0"
}

func featureStrings(raw interface{}, key string) []string {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	list, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func transactionVersions(raw interface{}) []wallet.TransactionVersion {
	strs := featureStrings(raw, "supportedTransactionVersions")
	if len(strs) == 0 {
		return nil
	}
	versions := make([]wallet.TransactionVersion, 0, len(strs))
	for _, s := range strs {
		versions = append(versions, wallet.TransactionVersion(s))
	}
	return versions
}
