package cmd

import (
	"fmt"

	"github.com/encodeous/lsr/state"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Checks that a scenario is well formed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := state.ReadNetworkConfig(args[0])
		if err != nil {
			return err
		}
		routers, hosts := 0, 0
		for _, node := range cfg.Nodes {
			switch node.Kind {
			case state.KindRouter:
				routers++
			case state.KindHost:
				hosts++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scenario is valid: %d routers, %d hosts, %d links, %d events, %d probes\n",
			routers, hosts, len(cfg.Links), len(cfg.Events), len(cfg.Probes))
		return nil
	},
	SilenceUsage: true,
	GroupID:      "scenario",
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
