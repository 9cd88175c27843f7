package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/internal/seed"
	"github.com/angelmondragon/parkinglot-manager/internal/users"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
	"github.com/angelmondragon/parkinglot-manager/pkg/migrate"
	"github.com/angelmondragon/parkinglot-manager/pkg/security"
)

const usage = "migration command: up|down|status|version|create|validate|seed"

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", usage)
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the migrations directory
	switch *cmd {
	case "create":
		if *name == "" {
			exitf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name, time.Now())
		if err != nil {
			exitf("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    *dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if *cmd == "seed" {
		requireResource(ctx, logg, "seeder", runSeed(ctx, cfg, logg, dbClient))
		logg.Info(ctx, "seed complete")
		return
	}

	if cfg.DB.IsSQLite() {
		// sqlite is schema-managed by gorm; goose files are postgres-only
		if *cmd != "up" {
			exitf("-cmd=%s is not supported for the sqlite driver", *cmd)
		}
		requireResource(ctx, logg, "automigrate", migrate.AutoMigrate(ctx, dbClient.DB()))
		logg.Info(ctx, "sqlite schema up to date")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			exitf("goose %s failed: %v", *cmd, err)
		}
	case "version":
		if *version == "" {
			exitf("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			exitf("goose version migrate failed: %v", err)
		}
	default:
		exitf("unknown -cmd value: %s (%s)", *cmd, usage)
	}
	logg.Info(ctx, "migrate complete")
}

// runSeed creates the bootstrap accounts and sample lots without starting the server.
func runSeed(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	seeder, err := seed.New(seed.Params{
		Config:    cfg.Seed,
		Users:     users.NewRepository(client.DB()),
		Lots:      parkinglots.NewRepository(client.DB()),
		Passwords: security.NewPasswordHasher(cfg.Password),
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	return seeder.Run(ctx)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
