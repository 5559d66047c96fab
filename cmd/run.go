package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/encodeous/lsr/sim"
	"github.com/encodeous/lsr/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a simulated network",
	Long: `This runs every node of the scenario in-process for the given duration, applies the scheduled link events and probes,
then prints the state of every router.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := state.ReadNetworkConfig(args[0])
		if err != nil {
			panic(err)
		}

		level := logLevel(slog.LevelInfo)
		logPath, _ := cmd.Flags().GetString("log")
		if logPath == "" {
			logPath = cfg.LogPath
		}
		var logFile io.Writer
		if logPath != "" {
			f, err := sim.OpenLogFile(logPath)
			if err != nil {
				panic(err)
			}
			defer f.Close()
			logFile = f
		}

		if addr, _ := cmd.Flags().GetString("debug-addr"); addr != "" {
			go func() {
				// perf registers /debug/metrics, expvar registers /debug/vars
				err := http.ListenAndServe(addr, nil)
				if err != nil {
					slog.Error("debug server stopped", "error", err)
				}
			}()
		}

		n, err := sim.NewNetwork(cfg, sim.WithLogLevel(level), sim.WithLogFile(logFile))
		if err != nil {
			panic(err)
		}

		duration, _ := cmd.Flags().GetDuration("duration")
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		ctx, cancelRun := context.WithTimeout(ctx, duration)
		defer cancelRun()

		done := n.Tracer.Subscribe(ctx, func(t sim.Trace) {
			if t.Kind == sim.TraceDelivered || t.Kind == sim.TraceDropped {
				fmt.Println(t)
			}
		})
		n.Start(context.Background())
		<-ctx.Done()
		<-done
		dumpRouters(cmd.OutOrStdout(), n)
		n.Stop()
	},
	GroupID: "sim",
}

func dumpRouters(w io.Writer, n *sim.Network) {
	for _, node := range n.Cfg.Nodes {
		if _, ok := n.Routers[node.Id]; !ok {
			continue
		}
		dump, err := n.Dump(node.Id)
		if err != nil {
			_, _ = fmt.Fprintf(w, "router %s is not running: %v\n\n", node.Id, err)
			continue
		}
		_, _ = fmt.Fprintln(w, dump)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationP("duration", "d", state.DefaultRunDuration, "How long to run the network for")
	runCmd.Flags().StringP("log", "l", "", "Also write logs to this file")
	runCmd.Flags().String("debug-addr", "", "Serve /debug/metrics and /debug/vars on this address, e.g. localhost:6060")
	runCmd.Flags().SortFlags = false
}
