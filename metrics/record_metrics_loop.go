package metrics

import (
	"context"
	"time"

	"github.com/ipfs-force-community/wallet-hub/registry"
)

func recordMetricsLoop(ctx context.Context, reg *registry.Registry, conns ConnectionLister) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			recordWalletConnectionInfo(ctx, reg, conns)
		case <-ctx.Done():
			log.Infof("context done, stop record metrics")
			return
		}
	}
}

func recordWalletConnectionInfo(ctx context.Context, reg *registry.Registry, conns ConnectionLister) {
	WalletNum.Set(ctx, int64(reg.Count()))

	connNum, err := conns.ConnectionCount(ctx)
	if err != nil {
		log.Warnf("failed to count wallet connections %v", err)
		return
	}
	WalletConnNum.Set(ctx, int64(connNum))
}
