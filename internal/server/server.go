package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/zhouzirui/talktonic/backend/internal/config"
	"github.com/zhouzirui/talktonic/backend/internal/handler"
	"github.com/zhouzirui/talktonic/backend/internal/middleware"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
	"github.com/zhouzirui/talktonic/backend/internal/service/chat"
)

// Run wires the services from cfg and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	themeStore := theme.NewMemoryStore(theme.Seed())
	completer := ai.NewCompleter(ctx, cfg)
	chatService := chat.NewService(completer)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute)

	router := handler.NewRouter(themeStore, chatService, handler.Options{
		CORSOrigin: cfg.Server.CORSOrigin,
		Limiter:    limiter,
	})

	go runJanitor(ctx, cfg.Server.SessionIdleTTL, map[string]sweeper{
		"session":      chatService,
		"rate limiter": limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("TalkTonic backend listening on %s", cfg.Server.Addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type sweeper interface {
	SweepIdle(cutoff time.Time) int
}

// runJanitor drops entries idle for longer than ttl until ctx is cancelled.
func runJanitor(ctx context.Context, ttl time.Duration, targets map[string]sweeper) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cutoff := now.Add(-ttl)
			for name, target := range targets {
				if n := target.SweepIdle(cutoff); n > 0 {
					log.Printf("[server] evicted %d idle %s entries", n, name)
				}
			}
		}
	}
}
