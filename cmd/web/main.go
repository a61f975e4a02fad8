package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"payrexx-gateway/internal/config"
	apphttp "payrexx-gateway/internal/http"
	"payrexx-gateway/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	arch, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("failed to configure webhook archive: %v", err)
	}
	logger.Info("webhook archive configured", "driver", arch.Driver)

	r := apphttp.NewRouter(logger, cfg, db, arch.Archive)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
