// Package main é o ponto de entrada do sandbox da API Nymu
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magnani/nymu-app/client/internal/config"
	"github.com/magnani/nymu-app/client/internal/handlers"
	"github.com/magnani/nymu-app/client/internal/sandbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.NewLogger(config.LoggingConfig{}).WithError(err).Fatal("❌ Erro ao carregar configurações")
	}
	logger := config.NewLogger(cfg.Log)
	logger.Info("🧾 Iniciando sandbox Nymu...")
	logger.Infof("📦 Ambiente: %s", cfg.Env)

	store := sandbox.NewStore(logger)
	user := store.SeedUser(cfg.Sandbox.Email, cfg.Sandbox.Password, "Usuário Demonstração", "529.982.247-25")
	logger.Infof("👤 Usuário de teste: %s", user.Email)
	logger.Infof("🔑 Código de verificação: %s", sandbox.VerificationCode)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go store.Run(ctx, cfg.Sandbox.ProcessInterval)

	srv := &http.Server{
		Addr:         ":" + cfg.Sandbox.Port,
		Handler:      handlers.NewRouter(handlers.NewHandler(store, logger)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("🚀 Servidor rodando em http://localhost%s", srv.Addr)
		logger.Infof("🏥 Health check: http://localhost%s/health", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("❌ Erro ao iniciar servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Encerrando sandbox...")

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("erro ao encerrar servidor")
	}
	logger.Info("✅ Sandbox encerrado")
}
