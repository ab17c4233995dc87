package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookdueapp/bookdue-server/internal/api"
	"github.com/bookdueapp/bookdue-server/internal/config"
	"github.com/bookdueapp/bookdue-server/internal/importer"
	"github.com/bookdueapp/bookdue-server/internal/logger"
	"github.com/bookdueapp/bookdue-server/internal/ratelimit"
	"github.com/bookdueapp/bookdue-server/internal/service"
)

// RateLimiterHandle wraps the rate limiter so its cleanup goroutine stops on shutdown.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client request rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	deadlineService := do.MustInvoke[*service.DeadlineService](i)
	paceService := do.MustInvoke[*service.PaceService](i)
	achievementService := do.MustInvoke[*service.AchievementService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	backupImporter := do.MustInvoke[*importer.Importer](i)

	handler := api.NewServer(api.Options{
		Store:              storeHandle.Store,
		AuthService:        authService,
		DeadlineService:    deadlineService,
		PaceService:        paceService,
		AchievementService: achievementService,
		SearchService:      searchService,
		Importer:           backupImporter,
		Limiter:            limiterHandle.KeyedRateLimiter,
		Logger:             log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
