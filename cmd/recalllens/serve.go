// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/felixleeca/recalllens/internal/httpapi"
	"github.com/felixleeca/recalllens/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recall checker over a local HTTP API",
	Long: `Serve starts a local HTTP server exposing the recall checker to the
scanner frontend: POST /v1/check evaluates a scan, GET /v1/recalls/:source/:id
returns one record, GET /healthz reports catalog status.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := serverConfigFromViper(cmd)

	handler := httpapi.NewHandler(store, matchConfigFromViper(cmd), version)
	router := httpapi.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		ReadTimeout: cfg.ReadTimeout,
	}

	fmt.Printf("recalllens listening on %s\n", cfg.Addr)
	return srv.ListenAndServe()
}

// serverConfigFromViper merges the --addr flag over config-file values and
// applies defaults.
func serverConfigFromViper(cmd *cobra.Command) types.ServerConfig {
	cfg := types.ServerConfig{
		Addr:           viper.GetString("server.addr"),
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		RateLimit:      viper.GetFloat64("server.rate_limit"),
		RateBurst:      viper.GetInt("server.rate_burst"),
		ReadTimeout:    viper.GetDuration("server.read_timeout"),
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8377"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 20
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 40
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	return cfg
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8377)")

	rootCmd.AddCommand(serveCmd)
}
