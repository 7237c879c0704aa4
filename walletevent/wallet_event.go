package walletevent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/wallet-hub/metrics"
	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/types"
)

var log = logging.Logger("event_stream")

// WalletEventStream accepts provider announcements, projects each one into
// a RemoteWallet and keeps the discovery registry in sync with the set of
// live connections.
type WalletEventStream struct {
	walletConnMgr IWalletConnMgr
	reg           *registry.Registry
	cfg           *types.RequestConfig
	// registerLk serializes connection add/remove against registry updates,
	// so a teardown can never interleave with another connection's takeover
	registerLk sync.Mutex
	*types.BaseEventStream
}

func NewWalletEventStream(ctx context.Context, reg *registry.Registry, cfg *types.RequestConfig) *WalletEventStream {
	return &WalletEventStream{
		walletConnMgr:   newWalletConnMgr(),
		reg:             reg,
		cfg:             cfg,
		BaseEventStream: types.NewBaseEventStream(ctx, cfg),
	}
}

// ListenWalletEvent is the provider entry point. The returned channel
// carries the hub's requests for as long as the provider stays connected;
// the announced wallet is registered after validation and withdrawn when
// the connection ends.
func (w *WalletEventStream) ListenWalletEvent(ctx context.Context, policy *WalletRegisterPolicy) (<-chan *types.RequestEvent, error) {
	if policy == nil {
		return nil, errors.New("listen wallet event must have policy")
	}
	info := policy.Wallet
	if err := info.Validate(); err != nil {
		return nil, errors.Wrapf(err, "reject announcement of wallet %s", info.Name)
	}

	ip, _ := ctx.Value(types.IPKey).(string)
	walletLog := log.With("wallet", info.Name).With("ip", ip)
	ctx, _ = tag.New(ctx, tag.Upsert(metrics.WalletNameKey, info.Name), tag.Upsert(metrics.IPKey, ip))

	out := make(chan *types.RequestEvent, w.cfg.RequestQueueSize)
	go func() {
		channel := types.NewChannelInfo(ip, out)
		defer close(out)
		remote := newRemoteWallet(w.BaseEventStream, channel, info)

		w.registerLk.Lock()
		err := w.walletConnMgr.addNewConn(info.ID(), remote, channel)
		var dispose registry.Disposer
		if err == nil {
			dispose = w.reg.Register(remote)
		}
		w.registerLk.Unlock()
		if err != nil {
			walletLog.Errorf("add connection failed %v", err)
			return
		}
		walletLog.Infof("add new connection %s", channel.ChannelID)
		stats.Record(ctx, metrics.WalletRegister.M(1))

		teardown := func() {
			w.registerLk.Lock()
			defer w.registerLk.Unlock()
			survivor, err := w.walletConnMgr.removeConn(info.ID(), channel)
			if err != nil {
				walletLog.Errorf("remove connection error %v", err)
				return
			}
			if survivor != nil {
				// a duplicate announcement is still connected; hand the
				// registry entry over to its remote so the wallet stays
				// discoverable. The survivor's own disposer covers the
				// handed-over instance.
				_ = w.reg.Register(survivor)
				return
			}
			stats.Record(ctx, metrics.WalletUnregister.M(1))
			dispose()
		}

		connectBytes, err := json.Marshal(types.ConnectedCompleted{ChannelID: channel.ChannelID})
		if err != nil {
			walletLog.Errorf("marshal failed %v", err)
			teardown()
			return
		}

		out <- &types.RequestEvent{
			ID:         uuid.New(),
			Method:     MethodInitConnect,
			CreateTime: time.Now(),
			Payload:    connectBytes,
			Result:     nil,
		} // not response

		<-ctx.Done()
		teardown()
	}()
	return out, nil
}

func (w *WalletEventStream) ResponseWalletEvent(ctx context.Context, resp *types.ResponseEvent) error {
	return w.ResponseEvent(ctx, resp)
}

// ConnectionCount reports the number of open provider channels.
func (w *WalletEventStream) ConnectionCount(ctx context.Context) (int, error) {
	return w.walletConnMgr.connectionCount(ctx)
}

func (w *WalletEventStream) ListWalletInfo(ctx context.Context) ([]*WalletDetail, error) {
	return w.walletConnMgr.listWalletInfo(ctx)
}

func (w *WalletEventStream) ListWalletInfoByName(ctx context.Context, name string) (*WalletDetail, error) {
	return w.walletConnMgr.listWalletInfoByName(ctx, name)
}
