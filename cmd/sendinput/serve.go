package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/sendinput/internal/dispatch"
	"github.com/breeze-rmm/sendinput/internal/logging"
	"github.com/breeze-rmm/sendinput/internal/pipeserver"
)

const drainTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inject payloads received on a local named pipe or unix socket",
	Long: `Listen on pipe_path and inject every newline-delimited JSON payload
received, in arrival order. Clients receive no response.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	tr := newTranslator(cfg)
	queue := dispatch.New(func(p []byte) {
		tr.Dispatch(string(p))
	}, 1, cfg.QueueSize)

	srv := pipeserver.New(pipeserver.Options{
		Path:            cfg.PipePath,
		MaxConnections:  cfg.MaxConnections,
		EventsPerSecond: cfg.EventsPerSecond,
	}, queue)

	stop := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		log.Info("shutting down", "signal", sig.String())
		close(stop)
	}()

	log.Info("starting sendinput server", "version", version, logging.KeyPath, cfg.PipePath)
	listenErr := srv.Listen(stop)

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	queue.Drain(ctx)

	stats := queue.Stats()
	log.Info("server stopped", "handled", stats.Handled, "rejected", stats.Rejected, "panicked", stats.Panicked)
	return listenErr
}
