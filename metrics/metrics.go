package metrics

import (
	"time"

	rpcMetrics "github.com/filecoin-project/go-jsonrpc/metrics"
	"github.com/ipfs-force-community/metrics"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Global Tags
var (
	WalletNameKey, _ = tag.NewKey("wallet_name")

	IPKey, _ = tag.NewKey("ip")
)

// Distribution
var defaultMillisecondsDistribution = view.Distribution(0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 3000, 4000, 5000, 7500, 10000, 20000, 50000, 100000)

var (
	// wallet
	WalletNum        = metrics.NewInt64("wallet/num", "Announced wallet count", stats.UnitDimensionless)
	WalletConnNum    = metrics.NewInt64("wallet/conn_num", "Wallet connection count", stats.UnitDimensionless)
	WalletRegister   = stats.Int64("wallet/register", "Wallet register", stats.UnitDimensionless)
	WalletUnregister = stats.Int64("wallet/unregister", "Wallet unregister", stats.UnitDimensionless)

	// method call
	WalletConnect         = stats.Float64("wallet_connect", "Call WalletConnect spent time", stats.UnitMilliseconds)
	WalletSign            = stats.Float64("wallet_sign", "Call WalletSignMessage spent time", stats.UnitMilliseconds)
	WalletSignTransaction = stats.Float64("wallet_sign_transaction", "Call WalletSignTransaction spent time", stats.UnitMilliseconds)

	ApiState = metrics.NewInt64("api/state", "api service state. 0: down, 1: up", "")
)

var (
	walletRegisterView = &view.View{
		Measure:     WalletRegister,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey, IPKey},
	}
	walletUnregisterView = &view.View{
		Measure:     WalletUnregister,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey, IPKey},
	}

	walletConnectView = &view.View{
		Measure:     WalletConnect,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{WalletNameKey},
	}
	walletSignView = &view.View{
		Measure:     WalletSign,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{WalletNameKey},
	}
	walletSignTransactionView = &view.View{
		Measure:     WalletSignTransaction,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{WalletNameKey},
	}
)

var views = append([]*view.View{
	walletRegisterView,
	walletUnregisterView,
	walletConnectView,
	walletSignView,
	walletSignTransactionView,
}, rpcMetrics.DefaultViews...)

// SinceInMilliseconds returns the duration of time since the provide time as a float64.
func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}

func init() {
	// register metrics
	_ = view.Register(views...)
}
