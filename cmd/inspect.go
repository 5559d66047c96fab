package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/encodeous/lsr/sim"
	"github.com/encodeous/lsr/state"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <scenario.yaml> <node>",
	Aliases: []string{"i"},
	Short:   "Runs a scenario until it is quiet, then prints the state of one router",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := state.ReadNetworkConfig(args[0])
		if err != nil {
			return err
		}
		id := state.NodeId(args[1])
		if !cfg.IsRouter(id) {
			return fmt.Errorf("%s is not a router of this scenario", id)
		}
		// scheduled events would keep the network from settling
		cfg.Events = nil
		cfg.Probes = nil

		n, err := sim.NewNetwork(cfg, sim.WithLogLevel(logLevel(slog.LevelWarn)))
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n.Start(context.Background())
		defer n.Stop()
		if err := n.WaitQuiet(ctx, state.QuiescenceCheckDelay); err != nil {
			return fmt.Errorf("network did not settle: %w", err)
		}
		dump, err := n.Dump(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dump)
		return nil
	},
	SilenceUsage: true,
	GroupID:      "sim",
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Duration("timeout", state.DefaultRunDuration, "Give up if the network has not settled after this long")
}
