package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamersarena/arenabot/core/buildinfo"
	corecmd "github.com/gamersarena/arenabot/core/cmd"
	coredatabase "github.com/gamersarena/arenabot/core/database"
	"github.com/gamersarena/arenabot/core/logger"
	"github.com/gamersarena/arenabot/internal/app"
	"github.com/gamersarena/arenabot/internal/config"
	"github.com/gamersarena/arenabot/internal/registration"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "arenabot",
		Short:         "Telegram tournament registration bot",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(checkConfigCmd(&configPath))
	root.AddCommand(migrateCmd(&configPath))
	return root
}

func run(configPath string) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configPath,
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(appCfg)
		},
	})
}

func loadConfig(configPath string) (*config.Config, error) {
	path, err := corecmd.ResolveConfigPath(corecmd.Options{
		ConfigPath:        configPath,
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: defaultConfigPath,
	})
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func checkConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "arena:        %s\n", cfg.Arena.Name)
			fmt.Fprintf(out, "run mode:     %s\n", cfg.Telegram.RunMode)
			fmt.Fprintf(out, "backend:      %s\n", cfg.Registration.Backend)
			fmt.Fprintf(out, "currency:     %s\n", cfg.Payment.Currency)
			fmt.Fprintf(out, "games:        %d\n", len(cfg.Catalog.Games))
			fmt.Fprintf(out, "tournaments:  %d\n", len(cfg.Catalog.Tournaments))
			return nil
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres registration backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Registration.Backend != registration.BackendPostgres {
				return fmt.Errorf("registration.backend is %q; migrations only apply to postgres", cfg.Registration.Backend)
			}
			if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
				return err
			}
			defer func() { _ = logger.Shutdown() }()
			return coredatabase.RunMigrations(cfg.Database)
		},
	}
}
