package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/vxgo/approuter/pkg/bus"
	"github.com/vxgo/approuter/pkg/channel"
	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/correlation"
	"github.com/vxgo/approuter/pkg/engine"
	"github.com/vxgo/approuter/pkg/fsm"
	"github.com/vxgo/approuter/pkg/logger"
	"github.com/vxgo/approuter/pkg/metrics"
	"github.com/vxgo/approuter/pkg/session"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the application router worker",
		RunE:  runRouter,
	}
	cmd.Flags().String("config", "", "Path to the static config file")
	cmd.Flags().String("replies", "text",
		"Reply builder to use for router-authored messages (text, messenger)")
	return cmd
}

func runRouter(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	v := viper.New()
	v.SetEnvPrefix("APPROUTER")
	v.AutomaticEnv()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	static, err := config.LoadStatic(v)
	if err != nil {
		return err
	}

	provider, err := config.NewFileProvider(static.DynamicConfigPath)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         static.Redis.Addr,
		Username:     static.Redis.Username,
		Password:     static.Redis.Password,
		DB:           static.Redis.DB,
		DialTimeout:  session.DefaultDialTimeout,
		ReadTimeout:  session.DefaultReadTimeout,
		WriteTimeout: session.DefaultWriteTimeout,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	store := session.NewRedisStore(rdb, static.WorkerPrefix, static.SessionTTL())
	cache := correlation.NewRedisCache(rdb, static.MessageTTL())

	replies, err := replyBuilder(cmd)
	if err != nil {
		return err
	}

	amqpBus, err := bus.DialAMQP(static.AMQP.URL, static.AMQP.Exchange)
	if err != nil {
		return err
	}
	defer amqpBus.Close()

	registry := prometheus.NewRegistry()
	eng := engine.New(store, cache, fsm.NewMachine(replies), amqpBus,
		metrics.New(registry), logger.Get())
	worker := bus.NewWorker(amqpBus, eng, provider, static, logger.Get())

	admin := &http.Server{
		Addr:              static.AdminAddr,
		Handler:           adminMux(registry, rdb),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Infow("application router starting",
		"inbound_connectors", static.InboundConnectors,
		"outbound_connectors", static.OutboundConnectors,
		"admin_addr", static.AdminAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(ctx) })
	g.Go(func() error { return provider.Watch(ctx) })
	g.Go(func() error {
		if err := admin.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return admin.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func replyBuilder(cmd *cobra.Command) (channel.ReplyBuilder, error) {
	name, _ := cmd.Flags().GetString("replies")
	switch name {
	case "text":
		return channel.NewBase(), nil
	case "messenger":
		return channel.NewMessenger(), nil
	default:
		return nil, errors.New("unknown reply builder: " + name)
	}
}

func adminMux(registry *prometheus.Registry, rdb *redis.Client) http.Handler {
	mux := chi.NewRouter()
	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "session store unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}
