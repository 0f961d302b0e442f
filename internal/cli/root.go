package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/maiaiia/pseudocronic/internal/ui"
	"github.com/maiaiia/pseudocronic/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pseudocronic",
	Short: "Live pseudocode sessions: host a room or watch one",
	Long: `Pseudocronic runs interactive pseudocode/C++ translation sessions that
any number of spectators can watch live. The host's edits, translations,
fixes and step-by-step runs are broadcast to everyone in the room; share
the room code out loud and they follow along.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
