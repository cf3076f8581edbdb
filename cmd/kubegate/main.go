// Command kubegate serves a restricted kubectl surface as MCP tools.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/victoralfred/kubegate/config"
	"github.com/victoralfred/kubegate/executor"
	"github.com/victoralfred/kubegate/gateway"
	"github.com/victoralfred/kubegate/logging"
	"github.com/victoralfred/kubegate/observability"
	"github.com/victoralfred/kubegate/resilience"
	"github.com/victoralfred/kubegate/server"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "kubegate",
		Short: "Mediated kubectl gateway for MCP clients",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	root.AddCommand(serveCmd())
	root.AddCommand(policyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var transport string
	var addr string
	var kubectlBinary string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Transport = transport
			}
			if addr != "" {
				cfg.Addr = addr
			}

			// Stdout belongs to the stdio transport; logs always go
			// to stderr.
			logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			pol := cfg.Policy.ToPolicy()
			logger.Info("policy loaded",
				"allowed_commands", pol.AllowedCommands(),
				"dangerous_flags", pol.DangerousFlags(),
				"timeout_seconds", int(pol.Timeout().Seconds()),
				"allowed_images", pol.AllowedImages(),
				"run_image_enabled", pol.RunImageEnabled(),
			)

			telemetry, err := observability.NewTelemetry(observability.DefaultTelemetryConfig())
			if err != nil {
				return fmt.Errorf("initializing telemetry: %w", err)
			}

			audit := observability.NopAuditLogger()
			if cfg.Audit.Enabled {
				audit, err = observability.NewFileAuditLogger(cfg.Audit)
				if err != nil {
					return fmt.Errorf("initializing audit log: %w", err)
				}
			}
			defer audit.Close()

			exec, err := executor.NewBuilder().
				WithPolicy(pol).
				WithBinary(kubectlBinary).
				WithLimiter(resilience.NewLimiter(cfg.RateLimit)).
				WithLogger(logger).
				WithMaxConcurrent(cfg.MaxConcurrent).
				Build()
			if err != nil {
				return fmt.Errorf("building executor: %w", err)
			}

			gw := gateway.New(pol, exec,
				gateway.WithTelemetry(telemetry),
				gateway.WithAudit(audit),
				gateway.WithLogger(logger),
			)
			srv := server.NewServer(gw, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				logger.Info("shutdown signal received")
				cancel()
			}()

			switch cfg.Transport {
			case config.TransportHTTP:
				return srv.ServeHTTP(ctx, cfg.Addr)
			default:
				logger.Info("stdio transport ready")
				return srv.ServeStdio(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport")
	cmd.Flags().StringVar(&kubectlBinary, "kubectl", "kubectl", "kubectl binary to execute")
	return cmd
}

func policyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the effective security policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			snap := cfg.Policy.ToPolicy().Snapshot()
			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
