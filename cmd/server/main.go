package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/dice-game-backend/internal/config"
	"github.com/DoyleJ11/dice-game-backend/internal/dice"
	"github.com/DoyleJ11/dice-game-backend/internal/httpapi"
	"github.com/DoyleJ11/dice-game-backend/internal/lobby"
	"github.com/DoyleJ11/dice-game-backend/internal/tcpserver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed, err := dice.NewSeed()
	if err != nil {
		logger.Fatal("seed die source", zap.Error(err))
	}

	// The lobby outlives ctx so shutdown can still save results through it.
	lb := lobby.New(context.Background(), dice.NewSource(seed), logger)

	tcpSrv := tcpserver.New(lb, logger)
	if err := tcpSrv.Listen(cfg.TCPAddr); err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(lb, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tcpSrv.Serve(gctx)
	})
	g.Go(func() error {
		logger.Info("http listener started", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	reply := make(chan error, 1)
	lb.Inbox() <- lobby.SaveResults{Path: cfg.ResultsFile, Reply: reply}
	if err := <-reply; err != nil {
		logger.Error("save results", zap.Error(err))
	}
	lb.Inbox() <- lobby.Shutdown{}
	logger.Info("shutdown complete")
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
