package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/cache"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/config"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/db"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/events"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/server"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/storage"
)

const dashboardTTL = 60 * time.Second

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := server.New(server.Deps{Config: config.Config{JWTSecret: "routes"}})
		routes := app.GetRoutes(true)
		sort.Slice(routes, func(i, j int) bool {
			if routes[i].Path != routes[j].Path {
				return routes[i].Path < routes[j].Path
			}
			return routes[i].Method < routes[j].Method
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH")
		for _, r := range routes {
			if r.Method == "HEAD" {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", r.Method, r.Path)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate tables on start")
}

func serve(ctx context.Context) error {
	cfg, log, gdb, err := boot()
	if err != nil {
		return err
	}
	if !skipMigrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
	}

	rdb, err := realtime.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("redis connected", "addr", cfg.RedisAddr)
	} else {
		log.Warn("REDIS_ADDR not set; notifications stay on this instance and dashboards are not cached")
	}

	pub, err := events.Connect(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return err
	}
	defer pub.Close()

	disk, err := storage.New(ctx, storage.Options{
		Driver:        cfg.StorageDriver,
		LocalRoot:     cfg.UploadDir,
		PublicBaseURL: cfg.PublicBaseURL,
		S3Bucket:      cfg.S3Bucket,
		S3Region:      cfg.S3Region,
		S3Endpoint:    cfg.S3Endpoint,
		S3Key:         cfg.S3Key,
		S3Secret:      cfg.S3Secret,
		S3URL:         cfg.S3URL,
	})
	if err != nil {
		return err
	}

	hub := realtime.NewHub(rdb, log)
	go hub.Run(ctx)

	app := server.New(server.Deps{
		Config:  cfg,
		DB:      gdb,
		Log:     log,
		Redis:   rdb,
		Cache:   cache.New(rdb, dashboardTTL),
		Events:  pub,
		Gateway: gateway.NewSimulator(cfg.GatewaySecret),
		Disk:    disk,
		Hub:     hub,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.AppPort, "env", cfg.AppEnv)
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
