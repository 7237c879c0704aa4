package walletevent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/wallet-hub/types"
)

type walletChannelInfo struct {
	*types.ChannelInfo
	wallet *RemoteWallet
}

type walletConns struct {
	// wallet is the remote built for the latest announcement
	wallet      *RemoteWallet
	connections map[uuid.UUID]*walletChannelInfo
}

type IWalletConnMgr interface {
	addNewConn(id types.WalletID, remote *RemoteWallet, channel *types.ChannelInfo) error
	removeConn(id types.WalletID, channel *types.ChannelInfo) (*RemoteWallet, error)
	getConn(id types.WalletID, channelID uuid.UUID) (*walletChannelInfo, error)
	connectionCount(ctx context.Context) (int, error)

	listWalletInfo(ctx context.Context) ([]*WalletDetail, error)
	listWalletInfoByName(ctx context.Context, name string) (*WalletDetail, error)
}

var _ IWalletConnMgr = (*walletConnMgr)(nil)

type walletConnMgr struct {
	infoLk  sync.Mutex
	wallets map[types.WalletID]*walletConns
}

func newWalletConnMgr() *walletConnMgr {
	return &walletConnMgr{
		infoLk:  sync.Mutex{},
		wallets: make(map[types.WalletID]*walletConns),
	}
}

func (w *walletConnMgr) addNewConn(id types.WalletID, remote *RemoteWallet, channel *types.ChannelInfo) error {
	w.infoLk.Lock()
	defer w.infoLk.Unlock()

	conns, ok := w.wallets[id]
	if !ok {
		conns = &walletConns{connections: make(map[uuid.UUID]*walletChannelInfo)}
		w.wallets[id] = conns
	}
	conns.wallet = remote
	conns.connections[channel.ChannelID] = &walletChannelInfo{ChannelInfo: channel, wallet: remote}

	log.Infow("add wallet connection",
		"channel", channel.ChannelID.String(),
		"walletName", remote.Info().Name,
		"connections", len(conns.connections),
	)
	return nil
}

// removeConn drops one connection and, when other connections for the same
// wallet remain, promotes one of their remotes so the wallet stays
// serviceable.
func (w *walletConnMgr) removeConn(id types.WalletID, channel *types.ChannelInfo) (*RemoteWallet, error) {
	w.infoLk.Lock()
	defer w.infoLk.Unlock()

	conns, ok := w.wallets[id]
	if !ok {
		return nil, nil
	}
	delete(conns.connections, channel.ChannelID)
	log.Infof("wallet %s remove connection %s", id, channel.ChannelID)

	if len(conns.connections) == 0 {
		delete(w.wallets, id)
		return nil, nil
	}
	for _, conn := range conns.connections {
		conns.wallet = conn.wallet
		return conn.wallet, nil
	}
	return nil, nil
}

func (w *walletConnMgr) getConn(id types.WalletID, channelID uuid.UUID) (*walletChannelInfo, error) {
	w.infoLk.Lock()
	defer w.infoLk.Unlock()

	if conns, ok := w.wallets[id]; ok {
		if conn, ok := conns.connections[channelID]; ok {
			return conn, nil
		}
	}

	return nil, fmt.Errorf("no connection found for wallet %s and channel %s", id, channelID)
}

func (w *walletConnMgr) connectionCount(ctx context.Context) (int, error) {
	w.infoLk.Lock()
	defer w.infoLk.Unlock()

	count := 0
	for _, conns := range w.wallets {
		count += len(conns.connections)
	}
	return count, nil
}

func (w *walletConnMgr) listWalletInfo(ctx context.Context) ([]*WalletDetail, error) {
	w.infoLk.Lock()
	defer w.infoLk.Unlock()

	var walletDetails []*WalletDetail
	for _, conns := range w.wallets {
		walletDetails = append(walletDetails, detailLocked(conns))
	}
	return walletDetails, nil
}

func (w *walletConnMgr) listWalletInfoByName(ctx context.Context, name string) (*WalletDetail, error) {
	w.infoLk.Lock()
	defer w.infoLk.Unlock()

	for _, conns := range w.wallets {
		if conns.wallet.Info().Name == name {
			return detailLocked(conns), nil
		}
	}
	return nil, fmt.Errorf("wallet %s not exist", name)
}

func detailLocked(conns *walletConns) *WalletDetail {
	detail := &WalletDetail{
		Wallet:        conns.wallet.Info(),
		ConnectStates: []ConnectState{},
	}
	for channelID, conn := range conns.connections {
		detail.ConnectStates = append(detail.ConnectStates, ConnectState{
			ChannelID:    channelID,
			IP:           conn.IP,
			RequestCount: len(conn.OutBound),
			CreateTime:   conn.CreateTime,
		})
	}
	return detail
}
