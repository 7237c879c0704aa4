package walletevent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/wallet"
)

var clientLog = logging.Logger("wallet_client")

// WalletEventClient runs provider side: it announces a local wallet to the
// hub and serves the hub's requests from it, reconnecting with backoff when
// the event channel drops.
type WalletEventClient struct {
	processor wallet.Wallet
	client    IWalletEventAPI
	channel   uuid.UUID
	readyCh   chan struct{}
}

func NewWalletEventClient(processor wallet.Wallet, client IWalletEventAPI) *WalletEventClient {
	return &WalletEventClient{
		processor: processor,
		client:    client,
		readyCh:   make(chan struct{}, 1),
	}
}

func (e *WalletEventClient) ListenWalletRequest(ctx context.Context) {
	for {
		if err := e.listenWalletRequestOnce(ctx); err != nil {
			clientLog.Errorf("listen wallet event errored: %s", err)
		} else {
			clientLog.Warn("listenWalletRequestOnce quit, try again")
		}
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			clientLog.Warnf("not restarting listenWalletRequestOnce: context error: %s", ctx.Err())
			return
		}
		clientLog.Info("restarting listenWalletRequestOnce")
		// try clear ready channel
		select {
		case <-e.readyCh:
		default:
		}
	}
}

// WaitReady blocks until the hub acknowledged the announcement.
func (e *WalletEventClient) WaitReady(ctx context.Context) {
	select {
	case <-e.readyCh:
	case <-ctx.Done():
	}
}

func (e *WalletEventClient) listenWalletRequestOnce(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	policy := &WalletRegisterPolicy{Wallet: e.processor.Info()}
	clientLog.Infow("announce wallet", "name", policy.Wallet.Name, "features", policy.Wallet.Features.Names())
	walletEventCh, err := e.client.ListenWalletEvent(ctx, policy)
	if err != nil {
		// Retry is handled by caller
		return fmt.Errorf("listenWalletRequestOnce listen call failed: %w", err)
	}

	for event := range walletEventCh {
		switch event.Method {
		case MethodInitConnect:
			req := types.ConnectedCompleted{}
			if err := json.Unmarshal(event.Payload, &req); err != nil {
				clientLog.Errorf("init connect error %s", err)
			}
			e.channel = req.ChannelID
			clientLog.Infof("connect to hub success %v", req.ChannelID)
			e.readyCh <- struct{}{}
			// do not response
		case MethodWalletConnect:
			go e.walletConnect(ctx, event)
		case MethodWalletDisconnect:
			go e.walletDisconnect(ctx, event)
		case MethodWalletSignMessage:
			go e.walletSignMessage(ctx, event)
		case MethodWalletSignTransaction:
			go e.walletSignTransaction(ctx, event)
		case MethodWalletSignAndSendTransaction:
			go e.walletSignAndSendTransaction(ctx, event)
		case MethodWalletEncrypt:
			go e.walletEncrypt(ctx, event)
		case MethodWalletDecrypt:
			go e.walletDecrypt(ctx, event)
		default:
			clientLog.Errorf("unexpected wallet event type %s", event.Method)
		}
	}

	return nil
}

func (e *WalletEventClient) walletConnect(ctx context.Context, event *types.RequestEvent) {
	var input wallet.ConnectInput
	if err := json.Unmarshal(event.Payload, &input); err != nil {
		e.error(ctx, event.ID, err)
		return
	}
	out, err := wallet.Connect(ctx, e.processor, input)
	if err != nil {
		clientLog.Errorf("WalletConnect error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, out)
}

func (e *WalletEventClient) walletDisconnect(ctx context.Context, event *types.RequestEvent) {
	if err := wallet.Disconnect(ctx, e.processor); err != nil {
		clientLog.Errorf("WalletDisconnect error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, nil)
}

func (e *WalletEventClient) walletSignMessage(ctx context.Context, event *types.RequestEvent) {
	clientLog.Debug("receive WalletSignMessage event")
	var input wallet.SignMessageInput
	if err := json.Unmarshal(event.Payload, &input); err != nil {
		clientLog.Errorf("unmarshal SignMessageInput error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	out, err := wallet.SignMessage(ctx, e.processor, input)
	if err != nil {
		clientLog.Errorf("WalletSignMessage error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, out)
}

func (e *WalletEventClient) walletSignTransaction(ctx context.Context, event *types.RequestEvent) {
	var input wallet.SignTransactionInput
	if err := json.Unmarshal(event.Payload, &input); err != nil {
		e.error(ctx, event.ID, err)
		return
	}
	out, err := wallet.SignTransaction(ctx, e.processor, input)
	if err != nil {
		clientLog.Errorf("WalletSignTransaction error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, out)
}

func (e *WalletEventClient) walletSignAndSendTransaction(ctx context.Context, event *types.RequestEvent) {
	var input wallet.SignAndSendTransactionInput
	if err := json.Unmarshal(event.Payload, &input); err != nil {
		e.error(ctx, event.ID, err)
		return
	}
	out, err := wallet.SignAndSendTransaction(ctx, e.processor, input)
	if err != nil {
		clientLog.Errorf("WalletSignAndSendTransaction error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, out)
}

func (e *WalletEventClient) walletEncrypt(ctx context.Context, event *types.RequestEvent) {
	var input wallet.EncryptInput
	if err := json.Unmarshal(event.Payload, &input); err != nil {
		e.error(ctx, event.ID, err)
		return
	}
	out, err := wallet.Encrypt(ctx, e.processor, input)
	if err != nil {
		clientLog.Errorf("WalletEncrypt error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, out)
}

func (e *WalletEventClient) walletDecrypt(ctx context.Context, event *types.RequestEvent) {
	var input wallet.DecryptInput
	if err := json.Unmarshal(event.Payload, &input); err != nil {
		e.error(ctx, event.ID, err)
		return
	}
	out, err := wallet.Decrypt(ctx, e.processor, input)
	if err != nil {
		clientLog.Errorf("WalletDecrypt error %s", err)
		e.error(ctx, event.ID, err)
		return
	}
	e.value(ctx, event.ID, out)
}

func (e *WalletEventClient) value(ctx context.Context, id uuid.UUID, val interface{}) {
	respBytes, err := json.Marshal(val)
	if err != nil {
		clientLog.Errorf("marshal response error %s", err)
		e.error(ctx, id, err)
		return
	}
	err = e.client.ResponseWalletEvent(ctx, &types.ResponseEvent{
		ID:      id,
		Payload: respBytes,
		Error:   "",
	})
	if err != nil {
		clientLog.Errorf("response error %v", err)
	}
}

func (e *WalletEventClient) error(ctx context.Context, id uuid.UUID, err error) {
	err = e.client.ResponseWalletEvent(ctx, &types.ResponseEvent{
		ID:      id,
		Payload: nil,
		Error:   err.Error(),
	})
	if err != nil {
		clientLog.Errorf("response error %v", err)
	}
}
