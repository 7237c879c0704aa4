package cmds

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/wallet-hub/types"
)

var WalletCmds = &cli.Command{
	Name:        "wallet",
	Usage:       "wallet cmds",
	Subcommands: []*cli.Command{listWalletCmds, getWalletStateCmds, getWalletByChainCmds},
}

var listWalletCmds = &cli.Command{
	Name:  "list",
	Flags: []cli.Flag{},
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewWalletHubClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		wallets, err := api.ListWallets(cctx.Context)
		if err != nil {
			return err
		}
		walletsBytes, err := json.MarshalIndent(wallets, " ", "\t")
		if err != nil {
			return err
		}
		fmt.Println(string(walletsBytes))
		return nil
	},
}

var getWalletStateCmds = &cli.Command{
	Name:      "state",
	Flags:     []cli.Flag{},
	ArgsUsage: "wallet-name",
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewWalletHubClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		walletName := cctx.Args().Get(0)
		walletState, err := api.ListWalletInfoByName(cctx.Context, walletName)
		if err != nil {
			return err
		}
		walletStateBytes, err := json.MarshalIndent(walletState, " ", "\t")
		if err != nil {
			return err
		}
		fmt.Println(string(walletStateBytes))
		return nil
	},
}

var getWalletByChainCmds = &cli.Command{
	Name:      "list-support",
	Usage:     "query which wallet supports the chain",
	Flags:     []cli.Flag{},
	ArgsUsage: "chain",
	Action: func(cctx *cli.Context) error {
		api, closer, err := NewWalletHubClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		wallets, err := api.ListWallets(cctx.Context)
		if err != nil {
			return err
		}

		chain := cctx.Args().Get(0)
		var supportWallets []types.WalletInfo
		for _, wallet := range wallets {
			for _, supportChain := range wallet.Chains {
				if supportChain == chain {
					supportWallets = append(supportWallets, wallet)
				}
			}
		}
		walletsBytes, err := json.MarshalIndent(supportWallets, " ", "\t")
		if err != nil {
			return err
		}
		fmt.Println(string(walletsBytes))
		return nil
	},
}
