// Package cmd wires the treedump CLI: config discovery via viper, the
// fragment and plan subcommands, and exit-code propagation back to main.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/3leaps/treedump/internal/exitcode"
	"github.com/3leaps/treedump/internal/observability"
)

var (
	cfgFile string
	verbose bool
)

// versionInfo is populated by main via SetVersionInfo at build time.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{Version: "dev", Commit: "HEAD", BuildDate: "unknown"}

// SetVersionInfo records build metadata injected via -ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
}

var rootCmd = &cobra.Command{
	Use:   "treedump",
	Short: "Fragment an RDF member dump into a TREE-navigable set of files",
	Long: `treedump reads a dump of RDF member descriptions and partitions them
into fragment files addressable as a TREE hypermedia collection, using a
date field to route each member and one of three fragmentation topologies
(oneAryTree, linkedList, tree).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code the
// caller (main) should use.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "treedump:", err)
		return exitcode.CodeOf(err)
	}
	return exitcode.OK
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-path", "./config.json", "path to config.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("config_path", rootCmd.PersistentFlags().Lookup("config-path"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetEnvPrefix("TREEDUMP")
	viper.AutomaticEnv()
}

func initLogging() {
	if err := observability.Init(viper.GetBool("verbose")); err != nil {
		fmt.Fprintln(os.Stderr, "treedump: logger init:", err)
	}
}
