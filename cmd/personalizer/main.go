package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/outreach-personalizer/internal/config"
	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/mikey/outreach-personalizer/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run reads one JSON personalization request per stdin line and writes the
// personalized content as JSON to stdout
func run(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.PersonalizationService,
	generator core.ContentGenerator,
) error {
	defer logger.Sync()

	requestTimeout, err := cfg.GetDuration("personalization.body_timeout")
	if err != nil {
		requestTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	encoder := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	logger.Info("Reading personalization requests from stdin")

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req core.PersonalizeRequest
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Error("Failed to parse request", zap.Error(err))
			continue
		}

		reqCtx, cancelReq := context.WithTimeout(ctx, requestTimeout)
		result, err := service.Personalize(reqCtx, req)
		cancelReq()
		if err != nil {
			logger.Error("Failed to personalize request",
				zap.String("business_id", req.BusinessID),
				zap.Error(err))
			continue
		}

		if err := encoder.Encode(result); err != nil {
			logger.Error("Failed to write result", zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Failed to read input", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close content generator", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
