// cmd/companion-client/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"companion-client/internal/common/auth"
	"companion-client/internal/common/config"
	"companion-client/internal/common/database"
	"companion-client/internal/common/logger"
	"companion-client/internal/common/observability"
	"companion-client/internal/prompt"
	"companion-client/internal/push"
	"companion-client/internal/settings"
	"companion-client/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// logDocument renders presentation markers to the log; a headless host
// has no document to decorate.
type logDocument struct{ log logger.Logger }

func (d logDocument) SetMarker(name string, on bool) {
	d.log.Debug("presentation marker", map[string]interface{}{"marker": name, "on": on})
}

// logSynth stands in for an audio device.
type logSynth struct{ log logger.Logger }

func (s logSynth) Tone(freqHz float64, d time.Duration) error {
	s.log.Debug("feedback tone", map[string]interface{}{"freqHz": freqHz, "duration": d.String()})
	return nil
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting companion client...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("companion-client")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis (durable client storage) with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	local := storage.NewLocal(redis)

	// --- Settings store ---
	settingsStore := settings.NewStore(ctx, local, logDocument{log: log}, logSynth{log: log}, log)
	zapLog.Info("Settings loaded",
		zap.String("theme", string(settingsStore.Settings().Theme)),
		zap.Bool("notifications", settingsStore.Settings().Notifications),
	)

	// --- Session ---
	authClient := auth.NewClient(cfg.Backend.BaseURL, cfg.Backend.TimeoutDuration())
	if cfg.Backend.Email != "" {
		err = retryWithBackoff(func() error {
			_, err := authClient.Login(ctx, cfg.Backend.Email, cfg.Backend.Password)
			return err
		}, 5, 2*time.Second, zapLog, "Backend login")
		if err != nil {
			zapLog.Warn("running anonymously, login failed", zap.Error(err))
		} else {
			zapLog.Info("Session established", zap.String("email", cfg.Backend.Email))
		}
	} else {
		zapLog.Info("No credentials configured, running anonymously")
	}

	// --- Push manager ---
	platform := push.NewLocalPlatform(cfg.Push.AutoGrantPermission, log)
	backend := push.NewClient(cfg.Backend.BaseURL, cfg.Backend.TimeoutDuration())
	manager := push.NewManager(cfg.Push, platform, backend, authClient, log)
	manager.SetObservability(obs)
	manager.Start(ctx)
	zapLog.Info("Push manager started", zap.String("phase", manager.State().Phase.String()))

	// --- Heartbeat ---
	heartbeat := push.NewHeartbeat(cfg.Push.HeartbeatIntervalDuration(), manager, authClient, log)
	if _, authed := authClient.Token(); authed {
		heartbeat.Start(ctx)
	}

	// --- Notification opt-in prompt ---
	coordinator := prompt.NewCoordinator(cfg.Push.PromptDelayDuration(), manager, local, log)
	go func() {
		time.Sleep(coordinator.Delay())
		if coordinator.ShouldShow(ctx) {
			zapLog.Info("Notification opt-in prompt is eligible")
		}
	}()

	// --- Metrics endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics endpoint listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := http.ListenAndServe(cfg.Metrics.ListenAddress, nil); err != nil {
			zapLog.Error("metrics endpoint failed", zap.Error(err))
		}
	}()

	zapLog.Info("Companion client running. Press Ctrl+C to exit.")

	// --- Graceful shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLog.Info("Shutting down...")
	heartbeat.Stop()
	authClient.Logout()
	zapLog.Info("Shutdown complete")
}
