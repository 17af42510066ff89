// Command seed populates the catalog database with deterministic demo
// products so search and cache behavior can be exercised locally.
//
// Run: go run ./cmd/seed
package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/t-simwa/swiftcart-catalog/internal/config"
	"github.com/t-simwa/swiftcart-catalog/pkg/database"
	"github.com/t-simwa/swiftcart-catalog/pkg/logger"
	"github.com/t-simwa/swiftcart-catalog/pkg/slug"
)

const (
	totalProducts = 500
	batchSize     = 100
)

var brands = []string{"Apple", "Samsung", "Sony", "Logitech", "Anker", "Dell", "Lenovo"}

var categories = []struct {
	name  string
	nouns []string
}{
	{"Phones", []string{"Phone", "Smartphone"}},
	{"Computers", []string{"Laptop", "Ultrabook", "Desktop"}},
	{"Audio", []string{"Headphones", "Earbuds", "Speaker"}},
	{"Accessories", []string{"Keyboard", "Mouse", "Hub", "Charger", "Cable"}},
	{"Displays", []string{"Monitor", "Projector"}},
}

// deterministicUUID derives a stable UUID-shaped ID from an index so
// re-runs always produce the same rows.
func deterministicUUID(index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("swiftcart-catalog:%d", index)))
	hex := fmt.Sprintf("%x", h[:16])
	return fmt.Sprintf("%s-%s-4%s-%x%s-%s",
		hex[0:8], hex[8:12], hex[13:16],
		0x8|(h[8]&0x3), hex[17:20], hex[20:32],
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("catalog-seed", cfg.LogLevel)
	ctx := context.Background()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		log.Error("connect postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	rng := rand.New(rand.NewSource(42))
	start := time.Now()
	inserted := 0

	for offset := 0; offset < totalProducts; offset += batchSize {
		end := offset + batchSize
		if end > totalProducts {
			end = totalProducts
		}

		batch := 0
		for i := offset; i < end; i++ {
			cat := categories[i%len(categories)]
			brand := brands[i%len(brands)]
			noun := cat.nouns[i%len(cat.nouns)]
			name := fmt.Sprintf("%s %s %d", brand, noun, 100+i)

			price := int64(990 + rng.Intn(200000))
			original := price
			if rng.Intn(4) == 0 {
				original = price + int64(rng.Intn(10000))
			}
			created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)

			_, err := pool.Exec(ctx, `
				INSERT INTO products (
					id, name, slug, sku, description, category,
					price, original_price, rating, review_count, stock,
					featured, created_at, updated_at
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
				ON CONFLICT (id) DO NOTHING`,
				deterministicUUID(i),
				name,
				slug.Generate(name),
				fmt.Sprintf("SKU-%05d", i),
				fmt.Sprintf("The %s is a dependable %s for everyday use.", name, noun),
				cat.name,
				price,
				original,
				float64(rng.Intn(21))/4.0,
				rng.Intn(500),
				rng.Intn(100),
				i%10 == 0,
				created,
			)
			if err != nil {
				log.Error("insert product",
					slog.Int("index", i),
					slog.String("error", err.Error()),
				)
				os.Exit(1)
			}
			batch++
		}

		inserted += batch
		log.Info("seeded batch", slog.Int("inserted", inserted), slog.Int("total", totalProducts))
	}

	log.Info("seed complete",
		slog.Int("products", inserted),
		slog.Duration("elapsed", time.Since(start)),
	)
}
