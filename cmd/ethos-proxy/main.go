// Command ethos-proxy serves integration API resources over HTTP, paging
// through them on the caller's behalf.
package main

import (
	"fmt"
	"os"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCommand() *cobra.Command {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:   "ethos-proxy",
		Short: "Paging proxy for the Ethos integration API",
		Long: `ethos-proxy exchanges an API key for bearer tokens and serves integration
API resources as flat JSON arrays, fetching every page the request needs.

Configuration comes from an optional YAML file, ETHOS_* environment variables
and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable console logs")

	// Bind flags to viper
	v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("logging.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	rootCmd.AddCommand(newServeCommand(v))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ethos-proxy %s (%s)\n", version, commit)
		},
	}
}

// loadConfig reads the --config file into v and returns the validated configuration.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return config.FromViper(v)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
