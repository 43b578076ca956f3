package demo

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedOptions struct {
	Users    int
	Products int
	Orders   int
	Seed     int64
}

type SeedStats struct {
	Users      int
	Products   int
	Orders     int
	OrderItems int
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Users: 50, Products: 24, Orders: 300, Seed: 42}
}

// Seed inserts generated rows in a single transaction. The schema must be
// migrated first.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) (SeedStats, error) {
	if opts.Users <= 0 || opts.Products <= 0 {
		return SeedStats{}, fmt.Errorf("users and products must be positive")
	}
	if opts.Orders < 0 {
		return SeedStats{}, fmt.Errorf("orders must not be negative")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return SeedStats{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	g := NewGenerator(opts.Seed)
	var stats SeedStats
	for i := 0; i < opts.Users; i++ {
		user := g.NextUser()
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, name, email, country, created_at) VALUES (?, ?, ?, ?, ?)`,
			user.ID, user.Name, user.Email, user.Country, user.CreatedAt.Format(time.RFC3339)); err != nil {
			return SeedStats{}, fmt.Errorf("insert user %d: %w", user.ID, err)
		}
		stats.Users++
	}

	products := make([]Product, 0, opts.Products)
	for i := 0; i < opts.Products; i++ {
		product := g.NextProduct()
		if _, err := tx.ExecContext(ctx, `INSERT INTO products (id, name, category, price) VALUES (?, ?, ?, ?)`,
			product.ID, product.Name, product.Category, product.Price); err != nil {
			return SeedStats{}, fmt.Errorf("insert product %d: %w", product.ID, err)
		}
		products = append(products, product)
		stats.Products++
	}

	for i := 0; i < opts.Orders; i++ {
		order := g.NextOrder(opts.Users, products)
		if _, err := tx.ExecContext(ctx, `INSERT INTO orders (id, user_id, status, ordered_at, total) VALUES (?, ?, ?, ?, ?)`,
			order.ID, order.UserID, order.Status, order.OrderedAt.Format(time.RFC3339), order.Total); err != nil {
			return SeedStats{}, fmt.Errorf("insert order %d: %w", order.ID, err)
		}
		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, `INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
				order.ID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
				return SeedStats{}, fmt.Errorf("insert order item %d/%d: %w", order.ID, item.ProductID, err)
			}
			stats.OrderItems++
		}
		stats.Orders++
	}

	if err := tx.Commit(); err != nil {
		return SeedStats{}, fmt.Errorf("commit seed: %w", err)
	}
	return stats, nil
}
