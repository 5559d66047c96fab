package cmd

import (
	"fmt"

	"github.com/encodeous/lsr/state"
	"github.com/spf13/cobra"
)

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Prints an example scenario",
	Long:  `Prints a small scenario with three routers and two hosts, where one link fails partway through. Save it to a file and pass it to run.`,
	Run: func(cmd *cobra.Command, args []string) {
		out, err := state.SampleNetwork().Marshal()
		if err != nil {
			panic(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	},
	GroupID: "scenario",
}

func init() {
	rootCmd.AddCommand(exampleCmd)
}
