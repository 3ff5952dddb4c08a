// Command kiez runs the store catalog HTTP server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiezwerk/kiez/catalog"
	"github.com/kiezwerk/kiez/docstore"
	"github.com/kiezwerk/kiez/httpapi"
	"github.com/kiezwerk/kiez/internal/config"
	"github.com/kiezwerk/kiez/internal/logger"
)

const serveLongDesc = `Serve the store catalog over HTTP.

The catalog is one document of districts, stores, and products, persisted
whole on every change. The backend is chosen by the store driver: a local
JSON file (default), an in-memory store, SQLite, S3, or DynamoDB.

Examples:
  kiez serve
  kiez serve --listen :9090 --store-driver sqlite --store-path kiez.db
  kiez serve --config /etc/kiez/kiez.toml`

type serveOptions struct {
	configPath  string
	listen      string
	debug       bool
	storeDriver string
	storePath   string
}

func main() {
	root := &cobra.Command{
		Use:           "kiez",
		Short:         "Store catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.storeDriver, "store-driver", "", "Document store driver: file, memory, sqlite, s3, dynamo")
	cmd.Flags().StringVar(&opts.storePath, "store-path", "", "Document file or database path")

	return cmd
}

func (o *serveOptions) run(cmd *cobra.Command) error {
	path := o.configPath
	explicit := path != ""
	if path == "" {
		path = "kiez.toml"
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return err
	}
	if o.listen != "" {
		cfg.Listen = o.listen
	}
	if o.debug {
		cfg.Debug = true
	}
	if o.storeDriver != "" {
		cfg.Store.Driver = o.storeDriver
	}
	if o.storePath != "" {
		cfg.Store.Path = o.storePath
	}

	log := logger.New(cfg.Debug)
	defer log.Sync()

	ctx := cmd.Context()
	docs, err := docstore.Open(ctx, docstore.Config{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		S3: docstore.S3Config{
			Region:    cfg.Store.S3.Region,
			Bucket:    cfg.Store.S3.Bucket,
			Key:       cfg.Store.S3.Key,
			Endpoint:  cfg.Store.S3.Endpoint,
			PathStyle: cfg.Store.S3.PathStyle,
		},
		Dynamo: docstore.DynamoConfig{
			Region: cfg.Store.Dynamo.Region,
			Table:  cfg.Store.Dynamo.Table,
		},
	})
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	svc := catalog.NewService(docs, log)
	srv := httpapi.New(svc, log)

	log.Info("kiez starting",
		zap.String("listen", cfg.Listen),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("debug", cfg.Debug),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Listen)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		err := srv.Shutdown()
		if listenErr := <-errCh; listenErr != nil {
			log.Error("http server stopped with error", zap.Error(listenErr))
		}
		return err
	}
}
