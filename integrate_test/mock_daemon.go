package integrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	logging "github.com/ipfs/go-log/v2"

	"github.com/ipfs-force-community/wallet-hub/api"
	"github.com/ipfs-force-community/wallet-hub/cmds"
	"github.com/ipfs-force-community/wallet-hub/proxy"
	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/version"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

var log = logging.Logger("mock main")

type testConfig struct {
	requestTimeout time.Duration
	clearInterval  time.Duration
}

func defaultTestConfig() testConfig {
	return testConfig{
		requestTimeout: time.Minute * 5,
		clearInterval:  time.Minute * 5,
	}
}

// MockMain stands up a full hub daemon on an ephemeral port and returns its
// base url plus the registry backing it.
func MockMain(ctx context.Context, t interface{ Cleanup(func()) }, tcfg testConfig) (string, *registry.Registry) {
	requestCfg := &types.RequestConfig{
		RequestQueueSize: 30,
		RequestTimeout:   tcfg.requestTimeout,
		ClearInterval:    tcfg.clearInterval,
	}

	reg := registry.NewRegistry(ctx)
	walletStream := walletevent.NewWalletEventStream(ctx, reg, requestCfg)
	hubAPI := api.NewWalletHubAPI(walletStream, reg, proxy.NewProxy())

	log.Infof("wallet-hub current version %s", version.UserVersion)

	router := mux.NewRouter()
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(cmds.APINamespace, hubAPI)
	router.Handle("/rpc/v1", rpcServer)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), types.IPKey, r.RemoteAddr)
		router.ServeHTTP(w, r.WithContext(ctx))
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL, reg
}
