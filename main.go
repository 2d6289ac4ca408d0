package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nixxel-company-limited/ecr-task-server/adapter"
	"github.com/nixxel-company-limited/ecr-task-server/config"
	"github.com/nixxel-company-limited/ecr-task-server/device"
	"github.com/nixxel-company-limited/ecr-task-server/ecr"
	"github.com/nixxel-company-limited/ecr-task-server/logging"
	"github.com/nixxel-company-limited/ecr-task-server/metrics"
	"github.com/nixxel-company-limited/ecr-task-server/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "ecr-task-server",
		Short:         "Executes equipment task batches on a fiscal register",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Accept task batches over TCP",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(configPath)
			},
		},
		&cobra.Command{
			Use:   "settings",
			Short: "Print the driver's current settings string",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printSettings(cmd, configPath)
			},
		},
		newDevicesCmd(),
	)
	return root
}

func newDevicesCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List USB registers with a settings string for each",
		RunE: func(cmd *cobra.Command, _ []string) error {
			printers, err := adapter.ListPrinters()
			if err != nil {
				return err
			}
			if len(printers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no USB registers found")
				return nil
			}
			for _, p := range printers {
				settings, err := p.Settings(password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  settings: %s\n", p, settings)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "30", "user password to embed in settings")
	return cmd
}

func newDriver(c config.DeviceConfig) (device.Driver, error) {
	switch c.Driver {
	case "simulator":
		return device.NewSimulator(), nil
	default:
		return nil, fmt.Errorf("unsupported device driver %q", c.Driver)
	}
}

func openRegister(cfg *config.Config, opts ...ecr.Option) (*ecr.ECR, error) {
	drv, err := newDriver(cfg.Device)
	if err != nil {
		return nil, err
	}
	opts = append([]ecr.Option{ecr.WithMessages(cfg.Messages), ecr.WithLogger(zap.L().Named("ecr"))}, opts...)
	return ecr.New(drv, cfg.Device.Settings, opts...)
}

func printSettings(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	register, err := openRegister(cfg)
	if err != nil {
		return err
	}
	defer register.Finish()

	fmt.Fprintln(cmd.OutOrStdout(), register.DefaultSettings())
	return nil
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("ecr-task-server starting",
		zap.String("driver", cfg.Device.Driver),
		zap.String("address", cfg.Server.Address),
	)

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Address != "" {
		reg := prometheus.NewRegistry()
		prom, err := metrics.NewPrometheus(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		recorder = prom
		msrv := metrics.Serve(cfg.Metrics.Address, reg, logger.Named("metrics"))
		defer msrv.Close()
	}

	register, err := openRegister(cfg, ecr.WithRecorder(recorder))
	if err != nil {
		logger.Error("failed to initialise register", zap.Error(err))
		return err
	}
	defer register.Finish()

	svr := server.New(register, cfg.Server.Address)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		s := <-sig
		logger.Info("shutting down", zap.Stringer("signal", s))
		_ = svr.Stop()
	}()

	return svr.Start()
}
