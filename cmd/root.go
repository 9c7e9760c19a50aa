package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tankadesign/iis-site-manager/internal/config"
	"github.com/tankadesign/iis-site-manager/internal/site"
	"github.com/tankadesign/iis-site-manager/internal/store"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "iis-site-manager",
		Short: "A CLI tool for provisioning IIS-style sites and application pools",
		Long: `iis-site-manager provisions sites and dedicated application pools in the
local web server's configuration store. It provides commands to create sites
(with optional site-specific pools and hosts-file entries), delete sites or
pools, and list sites this tool created.`,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.iis-site-manager.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", defaultDataDir(), "Directory holding the configuration store")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("dry-run", "n", false, "Stage operations against an in-memory store instead of the host store")
	rootCmd.PersistentFlags().String("database", "", "Path to the store database file (default: data-dir/sites.db)")
	rootCmd.PersistentFlags().String("hosts-file", "", "Path to the system hosts file")

	// Bind flags to viper
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("dry-run", rootCmd.PersistentFlags().Lookup("dry-run"))
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("hosts-file", rootCmd.PersistentFlags().Lookup("hosts-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".iis-site-manager")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".iis-site-manager")
}

// loadConfig assembles the tool configuration from viper-bound flags.
func loadConfig() *config.ToolConfig {
	cfg := config.NewToolConfig(viper.GetString("data-dir"))
	if db := viper.GetString("database"); db != "" {
		cfg.StorePath = db
	}
	if hf := viper.GetString("hosts-file"); hf != "" {
		cfg.HostsFile = hf
	}
	cfg.DryRun = viper.GetBool("dry-run")
	cfg.Verbose = viper.GetBool("verbose")
	return cfg
}

func newLogger(cfg *config.ToolConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildController wires the lifecycle controller to the configured store.
// Dry-run swaps in an empty in-memory store so nothing touches the host.
// The returned func releases the store.
func buildController(cfg *config.ToolConfig, logger *slog.Logger) (*site.Controller, func(), error) {
	if cfg.DryRun {
		return site.NewController(store.NewMemoryStore(logger), logger), func() {}, nil
	}

	st, err := store.NewSQLiteStore(cfg.StorePath, logger)
	if err != nil {
		return nil, nil, err
	}
	return site.NewController(st, logger), func() { st.Close() }, nil
}
