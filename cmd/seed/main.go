package main

import (
	"context"
	"flag"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"arena-social/internal/app"
	"arena-social/internal/core/config"
	"arena-social/internal/core/logger"
	"arena-social/internal/seed"
)

func main() {
	extra := flag.Int("extra", 0, "random users to add on top of the fixed fixtures")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "dev password given to every fixture user")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	// the seeder needs the tables whatever db.autoMigrate says
	cfg.DB.AutoMigrate = true
	db, err := app.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := seed.New(db, log, seed.Options{Extra: *extra, Password: *password}).Run(ctx); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}
