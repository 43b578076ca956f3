package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/demo"
)

func main() {
	defaults := demo.DefaultSeedOptions()
	direction := flag.String("direction", "up", "migration direction: up|down")
	steps := flag.Int("steps", 0, "number of migration steps; 0 means all")
	skipData := flag.Bool("schema-only", false, "apply migrations without inserting sample rows")
	users := flag.Int("users", defaults.Users, "number of users to generate")
	products := flag.Int("products", defaults.Products, "number of products to generate")
	orders := flag.Int("orders", defaults.Orders, "number of orders to generate")
	seed := flag.Int64("seed", defaults.Seed, "random seed for generated rows")
	flag.Parse()

	cfg, err := config.LoadFromEnv("askdb-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	dialect, err := database.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if dialect != database.SQLite {
		fmt.Fprintf(os.Stderr, "the demo database is only available for sqlite, got %s\n", dialect)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	db, err := database.NewOpener(dialect, cfg.Database.DSN)(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database open error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	migrator := demo.NewMigrator()
	switch *direction {
	case "up":
		applied, err := migrator.Up(ctx, db, *steps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migration up failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("applied %d migration(s) to %s\n", applied, cfg.Database.DSN)
		if *skipData || applied == 0 {
			return
		}
		stats, err := demo.Seed(ctx, db, demo.SeedOptions{Users: *users, Products: *products, Orders: *orders, Seed: *seed})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("inserted %d users, %d products, %d orders, %d order items\n", stats.Users, stats.Products, stats.Orders, stats.OrderItems)
	case "down":
		rolledBack, err := migrator.Down(ctx, db, *steps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migration down failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("rolled back %d migration(s)\n", rolledBack)
	default:
		fmt.Fprintf(os.Stderr, "invalid direction: %s\n", *direction)
		os.Exit(1)
	}
}
