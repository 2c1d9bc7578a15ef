package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"vendebot/internal/config"
	"vendebot/internal/db"
	"vendebot/internal/importer"
	"vendebot/internal/repository/business"
	"vendebot/internal/repository/product"
)

func main() {
	var (
		filePath   string
		businessID string
	)
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV (columns: ref,nombre,descripcion,precio,stock,emoji,imagen)")
	flag.StringVar(&businessID, "business", "", "Business ID to import into")
	flag.Parse()

	if filePath == "" || businessID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags)
	if _, err := business.NewPostgres(pool, logger).GetByID(ctx, businessID); err != nil {
		log.Fatalf("business %q: %v", businessID, err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), businessID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products into business %s in %s\n", count, businessID, time.Since(start).Truncate(time.Millisecond))
}
