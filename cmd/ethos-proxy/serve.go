package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/auth"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/client"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/config"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/logging"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/proxy"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/urls"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("region", "", "integration API region (us, ca, eu, ap, self_hosted)")
	cmd.Flags().String("base-url", "", "integration API base URL, overrides region")
	cmd.Flags().Bool("redis", false, "share bearer tokens through Redis")
	cmd.Flags().String("redis-addr", "", "Redis address")

	v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	v.BindPFlag("api.region", cmd.Flags().Lookup("region"))
	v.BindPFlag("api.base_url", cmd.Flags().Lookup("base-url"))
	v.BindPFlag("redis.enabled", cmd.Flags().Lookup("redis"))
	v.BindPFlag("redis.addr", cmd.Flags().Lookup("redis-addr"))

	return cmd
}

// serve runs the proxy until ctx is done.
func serve(ctx context.Context, cfg *config.Config) error {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("server")

	var redisClient *redis.Client
	clientCfg := client.Config{
		APIKey:        cfg.API.Key,
		Region:        urls.ParseRegion(cfg.API.Region),
		BaseURL:       cfg.API.BaseURL,
		UserAgent:     cfg.API.UserAgent,
		Timeout:       cfg.API.Timeout,
		TokenLifetime: cfg.API.TokenLifetime,
	}

	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		clientCfg.TokenStore = auth.NewRedisStore(redisClient)
	}

	ethosClient, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newMux(proxy.New(ethosClient, logger), redisClient, cfg.API.PageSize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("base_url", ethosClient.URLs().Base()).
			Bool("redis", cfg.Redis.Enabled).
			Msg("Starting ethos proxy server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
