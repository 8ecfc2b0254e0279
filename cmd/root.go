// Package cmd implements the tectonic CLI: the generate/resume/verify/convert
// subcommand tree, built on cobra and viper.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rybkr/tectonic/internal/config"
	"github.com/rybkr/tectonic/internal/logging"
)

var (
	cfgDir  string
	quiet   bool
	logLvl  string
	fs      = afero.NewOsFs()
	log     zerolog.Logger
	cliOpts config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "tectonic",
	Short: "Enumerate every valid completed grid of a Tectonic-style puzzle base",
	Long: `tectonic drives the staged grid generator described in the project's
design notes: a depth-first enumerator that grows grids one cell at a time,
persisting every validated completed grid to a segmented binary container.

Examples:
  tectonic generate -h 5 -l 5 -m 5 ./data
  tectonic resume ./data -h 5 -l 5 -m 5
  tectonic verify ./data/h05l05m05.tect
  tectonic convert ./data/h05l05m05.tect ./data/h05l05m05.txt`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(cfgDir)
		if err != nil {
			return err
		}
		if logLvl != "" {
			s.LogLevel = logLvl
		}
		if cmd.Flags().Changed("quiet") {
			s.Quiet = quiet
		}
		cliOpts = s
		log = logging.New(os.Stderr, logging.ParseLevel(s.LogLevel), logging.IsTerminal(os.Stderr) && !s.Quiet)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "directory containing tectonic.yaml (defaults to none)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress spinner and interactive output")
	rootCmd.PersistentFlags().StringVar(&logLvl, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

// Execute runs the root command, printing any returned error to stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
