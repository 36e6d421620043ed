package cmd

import (
	"fmt"
	"os"

	"github.com/hoxchess/hoxnet/cmd/lobby"
	"github.com/hoxchess/hoxnet/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "hoxc",
		Short: "command line client for hox chess match servers",
		Long: fmt.Sprintf(`hoxc (v%s)

A command line client for Chinese chess (xiangqi) match servers speaking
the hox line protocol over tcp, unix sockets or websockets.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of hoxc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hoxc v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(lobby.LobbyCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix, ws)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("level at which logs will be output (debug, info, warn, error)"))
	key = "log-format"
	RootCmd.PersistentFlags().String(key, "console", util.WrapString("format of the log output (console, json)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
