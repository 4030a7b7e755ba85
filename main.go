package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"github.com/tobyward/chronoflux/internal/config"
	"github.com/tobyward/chronoflux/internal/handle"
	"github.com/tobyward/chronoflux/internal/inject"
	"github.com/tobyward/chronoflux/internal/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, cfg.Level())
	ctx := log.NewContext(context.Background(), logger)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(ctx, cfg)
	router := do.MustInvoke[*handle.Router](injector)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
		BaseContext: func(net.Listener) context.Context {
			return log.NewContext(context.Background(), logger)
		},
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		return errors.Join(err, injector.Shutdown())
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", log.Err(err))
		os.Exit(1)
	}
}
