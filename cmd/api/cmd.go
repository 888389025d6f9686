package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/pitch-backend/internal/bootstrap"
	openwebuiclient "github.com/GregMSThompson/pitch-backend/internal/client/openwebui"
	"github.com/GregMSThompson/pitch-backend/internal/config"
	"github.com/GregMSThompson/pitch-backend/internal/crypto"
	"github.com/GregMSThompson/pitch-backend/internal/guard"
	"github.com/GregMSThompson/pitch-backend/internal/handlers"
	"github.com/GregMSThompson/pitch-backend/internal/middleware"
	"github.com/GregMSThompson/pitch-backend/internal/response"
	"github.com/GregMSThompson/pitch-backend/internal/router"
	"github.com/GregMSThompson/pitch-backend/internal/services"
	"github.com/GregMSThompson/pitch-backend/internal/store"
)

const (
	devUID          = "local-dev"
	guardPrefix     = "pitch:generation:"
	guardMargin     = 30 * time.Second
	requestMargin   = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// helpers
	var cipher services.BriefCipher
	if bs.KMS != nil {
		cipher = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	}
	var gen services.GenerationGuard = guard.NewLocal()
	if bs.Redis != nil {
		gen = guard.NewRedis(bs.Redis, guardPrefix, cfg.GenerationTimeout+guardMargin)
	}
	apiKey, err := bs.ResolveOpenWebUIKey(ctx, cfg)
	exitOnError("open webui key lookup failed", err, bs.Log)

	// stores
	dstore := store.NewDeckStore(bs.Firestore)

	// services
	dserv := services.NewDeckService(bs.VertexAdapter, dstore, cipher, gen, services.DeckOptions{
		Model:   cfg.VertexModel,
		Timeout: cfg.GenerationTimeout,
		TTL:     cfg.DeckTTL,
		Locale:  cfg.Locale,
	})
	cserv := services.NewChatService(openwebuiclient.New(cfg.OpenWebUIURL, apiKey), cfg.OpenWebUIModel)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.DeckSvc = dserv
	deps.ChatSvc = cserv

	auth := middleware.NewMiddleware(bs.Firebase)
	if cfg.AuthDisabled {
		bs.Log.Warn("authentication disabled", "uid", devUID)
		auth = middleware.NewDevMiddleware(devUID)
	}

	// router
	r := router.NewRouter(deps, auth, cfg.GenerationTimeout+requestMargin)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server starting", "port", cfg.Port)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		bs.Log.Info("server stopped")
		return
	}
	exitOnError("server start failed", err, bs.Log)
}
