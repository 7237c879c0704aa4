package cmds

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ipfs-force-community/wallet-hub/proxy"
)

var ProxyCmds = &cli.Command{
	Name:        "proxy",
	Usage:       "manage the hub's reverse proxy upstreams",
	Subcommands: []*cli.Command{setProxyCmd},
}

var setProxyCmd = &cli.Command{
	Name:      "set",
	Usage:     "point an upstream at a url, or clear it by omitting the url",
	ArgsUsage: "<HUB|NODE> [url]",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() < 1 {
			return fmt.Errorf("upstream type required, one of %s, %s", proxy.HostHub, proxy.HostNode)
		}

		hostKey := proxy.HostKey(strings.ToUpper(cctx.Args().Get(0)))
		if hostKey != proxy.HostHub && hostKey != proxy.HostNode {
			return fmt.Errorf("unknown upstream type %q", cctx.Args().Get(0))
		}
		u := cctx.Args().Get(1)

		api, closer, err := NewWalletHubClient(cctx)
		if err != nil {
			return err
		}
		defer closer()

		if err := api.RegisterReverse(cctx.Context, hostKey, u); err != nil {
			return err
		}

		if u == "" {
			fmt.Printf("cleared %s upstream\n", hostKey)
		} else {
			fmt.Printf("routing %s to %s\n", hostKey, u)
		}
		return nil
	},
}
