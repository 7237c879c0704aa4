package main

import (
	"context"
	"log"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	multiaddr "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/ipfs-force-community/wallet-hub/api"
	"github.com/ipfs-force-community/wallet-hub/cmds"
	"github.com/ipfs-force-community/wallet-hub/config"
	"github.com/ipfs-force-community/wallet-hub/proxy"
	"github.com/ipfs-force-community/wallet-hub/registry"
	"github.com/ipfs-force-community/wallet-hub/types"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

// A stripped down hub daemon, handy for poking at the rpc surface by hand.
func main() {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	reg := registry.NewRegistry(ctx)
	walletStream := walletevent.NewWalletEventStream(ctx, reg, cfg.Request.Stream())
	hubAPI := api.NewWalletHubAPI(walletStream, reg, proxy.NewProxy())

	rpcServer := jsonrpc.NewServer()
	rpcServer.Register(cmds.APINamespace, hubAPI)

	router := mux.NewRouter()
	router.Handle("/rpc/v1", rpcServer)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), types.IPKey, r.RemoteAddr)
		router.ServeHTTP(w, r.WithContext(ctx))
	})

	addr, err := multiaddr.NewMultiaddr(cfg.API.ListenAddress)
	if err != nil {
		log.Fatal(err)
	}
	nl, err := manet.Listen(addr)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("listen on %s", nl.Addr())
	if err := http.Serve(manet.NetListener(nl), handler); err != nil {
		log.Fatal(err)
	}
}
