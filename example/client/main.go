package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ipfs-force-community/wallet-hub/cmds"
	"github.com/ipfs-force-community/wallet-hub/testhelper"
	"github.com/ipfs-force-community/wallet-hub/wallet"
	"github.com/ipfs-force-community/wallet-hub/walletevent"
)

const listen = "/ip4/127.0.0.1/tcp/45132"

// Announces an in-memory wallet to a running hub, then drives it through the
// hub's app-facing api: connect, sign a message, verify the signature.
func main() {
	ctx := context.Background()

	providerAPI, providerCloser, err := cmds.DialWalletHubClient(ctx, listen)
	if err != nil {
		log.Fatal(err)
	}
	defer providerCloser()

	w, err := testhelper.NewMemWallet("Phantom", []string{"solana:mainnet"}, 2)
	if err != nil {
		log.Fatal(err)
	}
	provider := walletevent.NewWalletEventClient(w, providerAPI)
	go provider.ListenWalletRequest(ctx)
	provider.WaitReady(ctx)

	appAPI, appCloser, err := cmds.DialWalletHubClient(ctx, listen)
	if err != nil {
		log.Fatal(err)
	}
	defer appCloser()

	wallets, err := appAPI.ListWallets(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, info := range wallets {
		fmt.Printf("wallet %s (%s) chains %v\n", info.Name, info.ID(), info.Chains)
	}

	id := w.Info().ID()
	connected, err := appAPI.WalletConnect(ctx, id, wallet.ConnectInput{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("connected, %d accounts\n", len(connected.Accounts))

	message := []byte("hello hub")
	signed, err := appAPI.WalletSignMessage(ctx, id, wallet.SignMessageInput{Message: message})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("signature valid: %v\n",
		testhelper.Verify(connected.Accounts[0].PublicKey, message, signed.RawSignature))
}
