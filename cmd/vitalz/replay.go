package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/vitalz"
	"github.com/zoobzio/vitalz/oteltrace"
)

func newReplayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a recorded session and print its spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := vitalz.LoadConfig(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), cmd.OutOrStdout(), cfg, args[0])
		},
	}
}

func runReplay(ctx context.Context, out io.Writer, cfg vitalz.Config, path string) error {
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rec, err := loadRecording(path)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics, err := vitalz.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	tracer := vitalz.NewTracer()
	defer tracer.Close()
	collector := vitalz.NewCollector("replay", 1024)
	collector.SetSyncMode(true)
	defer collector.Close()
	tracer.AddCollector(collector)

	opts := append(cfg.Options(), vitalz.WithLogger(logger), vitalz.WithMetrics(metrics))
	if err := vitalz.Replay(rec, tracer, opts...); err != nil {
		return fmt.Errorf("replaying %s: %w", path, err)
	}

	if cfg.OTLPEndpoint != "" {
		if err := exportOTLP(ctx, cfg, rec, logger); err != nil {
			return err
		}
	}

	logMetrics(logger, registry)
	return newWriter(out, cfg.Output).Print(collector.ExportSorted())
}

func loadRecording(path string) (*vitalz.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()

	rec, err := vitalz.LoadRecording(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return rec, nil
}

// exportOTLP replays rec a second time through the OpenTelemetry bridge.
func exportOTLP(ctx context.Context, cfg vitalz.Config, rec *vitalz.Recording, logger *zap.Logger) error {
	provider, err := oteltrace.Setup(ctx, oteltrace.Config{
		ServiceName:    vitalz.ApplicationName,
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("otlp shutdown failed", zap.Error(err))
		}
	}()

	opts := append(cfg.Options(), vitalz.WithLogger(logger))
	if err := vitalz.Replay(rec, provider.Tracer(vitalz.ApplicationName), opts...); err != nil {
		return fmt.Errorf("exporting to %s: %w", cfg.OTLPEndpoint, err)
	}
	logger.Info("exported spans", zap.String("endpoint", cfg.OTLPEndpoint))
	return nil
}

// logMetrics writes every counter at debug level.
func logMetrics(logger *zap.Logger, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		logger.Warn("gathering metrics failed", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			logger.Debug("counter",
				zap.String("name", mf.GetName()),
				zap.String("labels", strings.Join(labels, ",")),
				zap.Float64("value", m.GetCounter().GetValue()),
			)
		}
	}
}
