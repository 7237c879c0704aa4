package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/etherlabsio/healthcheck/v2"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	"github.com/ipfs-force-community/metrics"
	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	multiaddr "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/plugin/ochttp"

	"github.com/ipfs-force-community/wallet-hub/api"
	"github.com/ipfs-force-community/wallet-hub/cmds"
	"github.com/ipfs-force-community/wallet-hub/config"
	hubMetrics "github.com/ipfs-force-community/wallet-hub/metrics"
	"github.com/ipfs-force-community/wallet-hub/proxy"
	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/version"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

var log = logging.Logger("main")

func main() {
	_ = logging.SetLogLevel("*", "INFO")

	app := &cli.App{
		Name:  "wallet-hub",
		Usage: "wallet-hub aggregates remote wallets behind one rpc endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "repo",
				Usage: "repo directory for config",
				Value: "~/.wallet-hub",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "host address and port the hub api will listen on",
				Value: "/ip4/127.0.0.1/tcp/45132",
			},
		},
		Commands: []*cli.Command{
			runCmd, cmds.WalletCmds, cmds.ProxyCmds,
		},
	}
	app.Version = version.UserVersion
	if err := app.Run(os.Args); err != nil {
		log.Warn(err)
		os.Exit(1)
	}
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "start wallet-hub daemon",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		return RunMain(cctx.Context, cfg)
	},
}

func loadConfig(cctx *cli.Context) (*config.Config, error) {
	repoPath, err := homedir.Expand(cctx.String("repo"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		return nil, err
	}

	cfgPath := filepath.Join(repoPath, config.ConfigFile)
	cfg, err := config.ReadConfig(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = config.DefaultConfig()
		if err := config.WriteConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
		log.Infof("wrote default config to %s", cfgPath)
	}

	if cctx.IsSet("listen") {
		cfg.API.ListenAddress = cctx.String("listen")
	}
	return cfg, nil
}

func RunMain(ctx context.Context, cfg *config.Config) error {
	log.Infof("wallet-hub current version %s, listen %s", version.UserVersion, cfg.API.ListenAddress)

	reg := registry.NewRegistry(ctx)
	walletStream := walletevent.NewWalletEventStream(ctx, reg, cfg.Request.Stream())

	reverseProxy := proxy.NewProxy()
	hubAPI := api.NewWalletHubAPI(walletStream, reg, reverseProxy)

	if err := hubMetrics.SetupMetrics(ctx, cfg.Metrics, reg, walletStream); err != nil {
		return err
	}

	router := mux.NewRouter()

	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(cmds.APINamespace, hubAPI)
	router.Handle("/rpc/v1", rpcServer)

	router.Handle("/healthcheck", healthcheck.Handler(
		healthcheck.WithChecker("walletevent", healthcheck.CheckerFunc(func(ctx context.Context) error {
			_, err := walletStream.ConnectionCount(ctx)
			return err
		})),
	))

	handler := reverseProxy.ProxyMiddleware(clientIPMiddleware(router))

	if reporter, err := metrics.SetupJaegerTracing(cfg.Trace.ServerName, cfg.Trace); err != nil {
		log.Errorf("register jaeger exporter failed: %s", err)
	} else if reporter != nil {
		log.Infof("register jaeger-tracing exporter to %s, with node-name:%s", cfg.Trace.JaegerEndpoint, cfg.Trace.ServerName)
		defer func() {
			_ = metrics.ShutdownJaeger(ctx, reporter)
		}()
		handler = &ochttp.Handler{Handler: handler}
	}

	srv := &http.Server{Handler: handler}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Warnw("received shutdown", "signal", sig)
		case <-ctx.Done():
			log.Warn("received shutdown")
		}

		log.Info("Shutting down...")
		if err := srv.Shutdown(context.TODO()); err != nil {
			log.Errorf("shutting down RPC server failed: %s", err)
		}
	}()

	addr, err := multiaddr.NewMultiaddr(cfg.API.ListenAddress)
	if err != nil {
		return err
	}

	nl, err := manet.Listen(addr)
	if err != nil {
		return err
	}

	log.Infof("start to rpc listen %s", nl.Addr())
	if err = srv.Serve(manet.NetListener(nl)); err != nil && err != http.ErrServerClosed {
		return err
	}

	log.Info("Graceful shutdown successful")
	return nil
}

// clientIPMiddleware stamps the caller address into the request context so the
// event stream can record which host a wallet announced from.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.Header.Get("X-Real-IP")
		if len(ip) == 0 {
			ip = r.RemoteAddr
		}
		ctx := context.WithValue(r.Context(), types.IPKey, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
