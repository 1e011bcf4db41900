package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/rostsocial/rost/app_setting"
	"github.com/rostsocial/rost/feed"
	"github.com/rostsocial/rost/realtime"
	"github.com/rostsocial/rost/realtime/modules"
	"github.com/rostsocial/rost/server"
	"github.com/rostsocial/rost/server/middlewares"
	"github.com/rostsocial/rost/server/resolver"
	. "github.com/rostsocial/rost/utils"
	Flag "github.com/rostsocial/rost/utils/flag"
	. "github.com/rostsocial/rost/utils/log"
)

const shutdownTimeout = 10 * time.Second

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func newStatsdClient(addr string) modules.Counter {
	if addr == "" {
		return &statsd.NoOpClient{}
	}
	client, err := statsd.New(addr)
	if err != nil {
		Log.Errorf("fail to create statsd client, metrics disabled: %v", err)
		return &statsd.NoOpClient{}
	}
	return client
}

func newRedisClient(ctx context.Context) *redis.Client {
	if !IsRedisConfigured() {
		Log.Info("redis not configured, post changes stay local to this instance")
		return nil
	}
	client, err := GetRedisClient(ctx)
	if err != nil {
		Log.Fatalf("fail to connect to redis: %v", err)
	}
	return client
}

func main() {
	flag.Parse()
	if err := InitLoggerFromEnvFiles(); err != nil {
		Log.Fatalf("fail to load env files: %v", err)
	}
	InitTracer()
	InitProfiler()
	defer cleanup()

	setting, err := app_setting.ParseRostAppSetting(*Flag.AppSettingPath)
	if err != nil {
		Log.Fatalf("invalid app setting: %v", err)
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatalf("fail to connect to database: %v", err)
	}
	if err := DatabaseSetupAndMigration(db); err != nil {
		Log.Fatalf("fail to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := newRedisClient(ctx)
	eventbus := realtime.NewBus(setting.EVENT_BUS_BUFFER)

	r := &resolver.Resolver{
		DB:          db,
		SignalChans: resolver.NewSignalChannels(),
		Notifier:    realtime.NewNotifier(redisClient, setting.REDIS_CHANNEL, eventbus),
	}
	sessions := feed.NewSessions(r.FeedBackend(), feed.NewRanker(setting.WEIGHTS), setting.FEED_LIMIT)

	// Initialize all engine modules here.
	ms := []realtime.Module{
		// FeedRefresher refreshes live sessions on every posts change and pushes
		// signals to the viewers.
		modules.NewFeedRefresher(modules.FeedRefresherConfig{Name: "feed_refresher"}, sessions, r.SignalChans, eventbus),
		// Reporter reports feed transitions to datadog for monitoring purpose.
		modules.NewReporter(modules.ReporterConfig{Name: "reporter"}, newStatsdClient(setting.STATSD_ADDR), eventbus),
	}
	if setting.PG_NOTIFY_CHANNEL != "" {
		ms = append(ms, modules.NewPGListener(modules.PGListenerConfig{
			Name:       "pg_listener",
			ConnString: ConnectionString(os.Getenv("DB_NAME")),
			Channel:    setting.PG_NOTIFY_CHANNEL,
		}, eventbus))
	}
	if redisClient != nil {
		ms = append(ms, modules.NewRedisRelay(modules.RedisRelayConfig{
			Name:    "redis_relay",
			Channel: setting.REDIS_CHANNEL,
		}, redisClient, eventbus))
	}
	engine := realtime.NewEngine(ms, eventbus)
	go engine.Run(ctx)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(gintrace.Middleware(*Flag.ServiceName))
	if *Flag.ByPassAuth {
		Log.Warn("authentication bypassed, trusting the 'sub' header")
		router.Use(middlewares.ByPassAuth())
	} else {
		middlewares.Setup()
		router.Use(middlewares.JWT())
	}
	server.NewServer(ctx, r, sessions).AddRoutes(router)

	srv := &http.Server{
		Addr:    setting.LISTEN_ADDR,
		Handler: router,
	}
	go func() {
		Log.Infof("api server starts up on %s", setting.LISTEN_ADDR)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Log.Fatalf("api server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Log.Errorf("api server shutdown: %v", err)
	}
	engine.Shutdown()
	if redisClient != nil {
		redisClient.Close()
	}
}
