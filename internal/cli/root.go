// Package cli implements the fern command line: the HTTP service plus offline infer, recommend
// and merge over CSV or JSON files, and edits to mapping files.
package cli

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/app"
	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tabular"
)

type rootOptions struct {
	envFile     string
	recordsPath string
	quiet       bool

	cfg    *config.Config
	logger ectologger.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fern",
		Short:         "Reconcile a source dataset into a target schema",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.recordsPath, "records-path", "", "JMESPath expression selecting the record array in JSON inputs")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress logs")

	cmd.AddCommand(
		newServeCommand(opts),
		newInferCommand(opts),
		newRecommendCommand(opts),
		newMergeCommand(opts),
		newMappingCommand(),
	)

	return cmd
}

func (o *rootOptions) init() error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	if o.quiet {
		o.logger = logging.Nop()
		return nil
	}

	logger, _, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs,
		AppName: cfg.AppName,
		Version: cfg.Version,
	})
	if err != nil {
		return err
	}
	o.logger = logger
	return nil
}

func (o *rootOptions) readDataset(path string) (models.Dataset, error) {
	if path == "" {
		return models.Dataset{}, fmt.Errorf("a dataset path is required")
	}
	return tabular.ReadFile(path, tabular.Options{RecordsPath: o.recordsPath})
}

// service builds a reconcile service for one command. The returned func releases its connections.
func (o *rootOptions) service() (*reconcile.Service, func(), error) {
	rdb := app.NewRedisClient(o.cfg)

	embedder, err := app.NewEmbeddingProvider(o.cfg, o.logger, rdb)
	if err != nil {
		return nil, nil, err
	}

	producer, err := app.NewProducer(o.cfg, o.logger)
	if err != nil {
		_ = embedder.Close()
		return nil, nil, err
	}

	var publisher reconcile.EventPublisher
	if producer != nil {
		publisher = producer
	}

	cleanup := func() {
		if err := embedder.Close(); err != nil {
			o.logger.WithError(err).Warn("Failed to close embedding caches")
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				o.logger.WithError(err).Warn("Failed to close Kafka producer")
			}
		}
	}

	return app.NewReconcileService(o.cfg, o.logger, embedder, publisher), cleanup, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
