package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"web-calendar/internal/config"
	"web-calendar/internal/database"
	"web-calendar/internal/database/migrations"
	"web-calendar/internal/logger"
)

const usage = "usage: calendar-migrate up | down | to <version> | version"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logger.NewLogger("", cfg.Log.Color)

	if len(os.Args) < 2 {
		logger.Fatal("MIGRATE", usage)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("CONFIG", err.Error())
	}

	bunDB, err := database.Open(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{Driver: cfg.Database.Driver}, logger)
	defer runner.Close()

	if err := run(runner, os.Args[1:]); err != nil {
		logger.Error("MIGRATE", err.Error())
		runner.Close()
		bunDB.Close()
		os.Exit(1)
	}
}

func run(runner *migrations.Runner, args []string) error {
	switch args[0] {
	case "up":
		if err := runner.MigrateUp(); err != nil {
			return err
		}
	case "down":
		if err := runner.MigrateDown(); err != nil {
			return err
		}
	case "to":
		if len(args) != 2 {
			return errors.New(usage)
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := runner.MigrateTo(uint(version)); err != nil {
			return err
		}
	case "version":
	default:
		return errors.New(usage)
	}

	version, dirty, ok, err := runner.Version()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no migrations applied")
		return nil
	}
	fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}
