package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/scienceol/chemtrack/docs" // swagger docs

	"github.com/gin-gonic/gin"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/core/notify"
	"github.com/scienceol/chemtrack/pkg/core/notify/events"
	chemgrpc "github.com/scienceol/chemtrack/pkg/grpc"
	"github.com/scienceol/chemtrack/pkg/middleware/auth"
	"github.com/scienceol/chemtrack/pkg/middleware/db"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/middleware/metrics"
	"github.com/scienceol/chemtrack/pkg/middleware/redis"
	"github.com/scienceol/chemtrack/pkg/middleware/trace"
	"github.com/scienceol/chemtrack/pkg/repo/migrate"
	"github.com/scienceol/chemtrack/pkg/repo/store"
	"github.com/scienceol/chemtrack/pkg/utils"
	"github.com/scienceol/chemtrack/pkg/web"
	"github.com/spf13/cobra"
)

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "apiserver",
		Long:         "Start the API server (HTTP + gRPC)",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         newRouter,
		PostRunE:     cleanWebResource,
	}
}

func NewMigrate() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Long:         "Run database migrations",
		SilenceUsage: true,
		PreRunE:      initMigrate,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Table(cmd.Root().Context())
		},
		PostRunE: func(cmd *cobra.Command, _ []string) error {
			db.ClosePostgres(cmd.Context())
			return nil
		},
	}
}

func dbConfig(conf *config.GlobalConfig) *db.Config {
	return &db.Config{
		Host: conf.Database.Host, Port: conf.Database.Port,
		User: conf.Database.User, PW: conf.Database.Password,
		DBName: conf.Database.Name, MaxOpenConns: conf.Database.MaxOpenConns,
		MaxIdleConns: conf.Database.MaxIdleConns, LogConf: db.LogConf{Level: conf.Log.LogLevel},
	}
}

func initMigrate(cmd *cobra.Command, _ []string) error {
	db.InitPostgres(cmd.Context(), dbConfig(config.Global()))
	return nil
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:    fmt.Sprintf("%s-%s", conf.Server.Service, conf.Server.Platform),
		Version:        conf.Trace.Version,
		Env:            conf.Server.Env,
		TraceEndpoint:  conf.Trace.TraceEndpoint,
		MetricEndpoint: conf.Trace.MetricEndpoint,
	})
	metrics.Init(conf.Metrics.Prefix)
	if conf.Store.Driver == config.StoreMemory {
		logger.Warnf(cmd.Context(), "STORE_DRIVER=memory, data is lost on exit and events stay in-process")
		return nil
	}
	db.InitPostgres(cmd.Context(), dbConfig(conf))
	redis.InitRedis(cmd.Context(), &redis.Redis{
		Host: conf.Redis.Host, Port: conf.Redis.Port,
		Password: conf.Redis.Password, DB: conf.Redis.DB,
	})
	return nil
}

func msgCenter() notify.MsgCenter {
	if config.Global().Store.Driver == config.StoreMemory {
		return events.NewLocal()
	}
	return events.NewEvents()
}

func newRouter(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Root().Context()
	conf := config.Global()
	st := store.New()
	provider := auth.NewIdentityProvider()
	center := msgCenter()

	router := gin.Default()
	closeHub, err := web.NewRouter(ctx, router, web.Deps{Store: st, MsgCenter: center, Identity: provider})
	if err != nil {
		return err
	}
	defer closeHub()

	port := conf.Server.Port
	httpServer := http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	fmt.Printf("API Server starting on http://0.0.0.0:%d\n", port)

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(cmd.Context(), "start server err: %v\n", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})

	grpcPort := conf.Server.GrpcPort
	grpcServer, err := chemgrpc.NewServer(ctx, grpcPort, provider, st.Users)
	if err != nil {
		logger.Errorf(cmd.Context(), "start gRPC server err: %+v", err)
	} else {
		fmt.Printf("gRPC Server starting on port %d\n", grpcPort)
	}

	fmt.Printf("Server started. Press Ctrl+C to shutdown.\n")
	<-cmd.Context().Done()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("shut down server err: %+v", err)
	}
	if err := center.Close(shutdownCtx); err != nil {
		logger.Warnf(shutdownCtx, "close msg center err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	redis.CloseRedis(cmd.Context())
	db.ClosePostgres(cmd.Context())
	trace.CloseTrace()
	return nil
}
