// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the recalllens CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the recalllens CLI.
var rootCmd = &cobra.Command{
	Use:   "recalllens",
	Short: "Check scanned products against official recall data",
	Long: `recalllens matches product scans (barcode, brand, product, lot code,
expiry date) against a local catalog of normalized government recall records
and classifies each scan GREEN, YELLOW, or RED with auditable reasons.

Each stage is a subcommand: catalog manages the local recall catalog, check
evaluates a scan, parse debugs lot/expiry extraction, and serve exposes the
checker over a local HTTP API.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./recalllens.yaml or ~/.config/recalllens/config.yaml)")
	rootCmd.PersistentFlags().String("catalog-dir", "catalog", "base directory for catalog data (contains feeds/, index/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("recalllens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "recalllens"))
		}
	}

	viper.SetEnvPrefix("RECALLLENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
