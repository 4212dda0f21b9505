package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seeds a small fashion catalog plus a demo promotion and vouchers so the
// storefront is browsable on a fresh database. Idempotent: rerunning keeps
// slugs and codes stable.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	seedLookups(ctx, pool)
	seedProducts(ctx, pool)
	seedPromotions(ctx, pool)
	seedVouchers(ctx, pool)

	log.Println("seeding completed")
}

func seedLookups(ctx context.Context, pool *pgxpool.Pool) {
	brands := [][2]string{
		{"Moda Basics", "moda-basics"},
		{"Saigon Street", "saigon-street"},
		{"Lam Studio", "lam-studio"},
	}
	for _, b := range brands {
		exec(ctx, pool, `INSERT INTO brands (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`, b[0], b[1])
	}

	categories := [][2]string{
		{"Áo thun", "ao-thun"},
		{"Áo sơ mi", "ao-so-mi"},
		{"Quần jeans", "quan-jeans"},
		{"Váy", "vay"},
	}
	for _, c := range categories {
		exec(ctx, pool, `INSERT INTO categories (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`, c[0], c[1])
	}

	for i, s := range []string{"XS", "S", "M", "L", "XL"} {
		exec(ctx, pool, `INSERT INTO sizes (name, sort_order) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, s, i)
	}

	colors := [][2]string{
		{"Đen", "#000000"},
		{"Trắng", "#ffffff"},
		{"Xanh navy", "#001f4d"},
		{"Be", "#d9c7a7"},
	}
	for _, c := range colors {
		exec(ctx, pool, `INSERT INTO colors (name, hex) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, c[0], c[1])
	}
}

type seedProduct struct {
	title    string
	slug     string
	category string
	brand    string
	price    int64
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	products := []seedProduct{
		{"Áo thun cotton basic", "ao-thun-cotton-basic", "ao-thun", "moda-basics", 199_000},
		{"Áo thun oversize graphic", "ao-thun-oversize-graphic", "ao-thun", "saigon-street", 249_000},
		{"Áo sơ mi linen trắng", "ao-so-mi-linen-trang", "ao-so-mi", "lam-studio", 399_000},
		{"Quần jeans slim fit", "quan-jeans-slim-fit", "quan-jeans", "saigon-street", 549_000},
		{"Váy hoa mùa hè", "vay-hoa-mua-he", "vay", "lam-studio", 459_000},
	}

	for _, p := range products {
		var productID string
		err := pool.QueryRow(ctx, `
			INSERT INTO products (title, slug, description, brand_id, category_id)
			VALUES ($1, $2, '',
				(SELECT id FROM brands WHERE slug = $3),
				(SELECT id FROM categories WHERE slug = $4))
			ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title
			RETURNING id`,
			p.title, p.slug, p.brand, p.category,
		).Scan(&productID)
		if err != nil {
			log.Fatalf("seed product %s: %v", p.slug, err)
		}

		for i, size := range []string{"S", "M", "L"} {
			sku := fmt.Sprintf("%s-%s", p.slug, size)
			exec(ctx, pool, `
				INSERT INTO product_variants (product_id, color_id, size_id, sku, price, stock, position)
				VALUES ($1,
					(SELECT id FROM colors WHERE name = 'Đen'),
					(SELECT id FROM sizes WHERE name = $2),
					$3, $4, 25, $5)
				ON CONFLICT (sku) DO UPDATE SET price = EXCLUDED.price`,
				productID, size, sku, p.price, i)
		}
	}
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool) {
	exec(ctx, pool, `
		INSERT INTO promotions (name, product_ids, discount_percent, start_date, end_date, status)
		SELECT 'Summer sale', '{}', 15, $1, $2, 'ACTIVE'
		WHERE NOT EXISTS (SELECT 1 FROM promotions WHERE name = 'Summer sale')`,
		time.Now().Add(-24*time.Hour), time.Now().Add(14*24*time.Hour))
}

func seedVouchers(ctx context.Context, pool *pgxpool.Pool) {
	exec(ctx, pool, `
		INSERT INTO vouchers (code, discount_type, discount_value, max_discount, min_order_value, usage_limit)
		VALUES ('WELCOME10', 'PERCENTAGE', 10, 50000, 200000, 1000)
		ON CONFLICT (code) DO NOTHING`)
	exec(ctx, pool, `
		INSERT INTO vouchers (code, discount_type, discount_value, min_order_value)
		VALUES ('FREESHIP30', 'FIXED_AMOUNT', 30000, 300000)
		ON CONFLICT (code) DO NOTHING`)
}

func exec(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) {
	if _, err := pool.Exec(ctx, sql, args...); err != nil {
		log.Fatalf("seed: %v", err)
	}
}
