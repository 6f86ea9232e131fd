package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goobert/stats-api/app"
	"goobert/stats-api/aws"
	"goobert/stats-api/config"
	"goobert/stats-api/db"
	"goobert/stats-api/internal"
	"goobert/stats-api/internal/service"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	makeLogger(viper.GetString("app.log_level"))
	defer zap.L().Sync()

	gdb, err := db.New(db.Options{
		Driver: viper.GetString("db.driver"),
		Path:   viper.GetString("db.path"),
		DSN:    viper.GetString("db.dsn"),
	})
	if err != nil {
		// Statistics are best effort, keep serving with empty data
		zap.L().Error("Failed to initialize stats database, statistics are disabled", zap.Error(err))
		gdb = nil
	}

	loop := service.NewLoop(stats.New(gdb, nil), viper.GetDuration("stats.flush_interval"))
	loop.Start()

	var uploader service.Uploader
	if viper.GetBool("export.s3.enabled") {
		s3, err := aws.NewS3(context.Background())
		if err != nil {
			panic(fmt.Errorf("failed to initialize S3 client, %w", err))
		}

		uploader = s3
	}

	d := &internal.Deps{
		Loop:    loop,
		Exports: service.NewScheduledExport(loop, viper.GetString("export.dir"), uploader),
	}

	if schedule := viper.GetString("export.schedule"); schedule != "" {
		if err := d.Exports.Start(schedule); err != nil {
			panic(err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           app.NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("Failed to shut down server gracefully", zap.Error(err))
	}

	d.Exports.Stop()

	// Finalizes every session still playing
	loop.Stop()
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
