package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/config"
	"prepwise/internal/excel"
	"prepwise/internal/repository"
)

func main() {
	importCfg := excel.DefaultImportConfig()
	flag.StringVar(&importCfg.FilePath, "file", "", "path to the catalog xlsx file")
	flag.StringVar(&importCfg.SheetName, "sheet", importCfg.SheetName, "sheet name")
	flag.IntVar(&importCfg.StartRow, "start-row", importCfg.StartRow, "first data row (1-based)")
	flag.Parse()

	if importCfg.FilePath == "" {
		log.Fatal("missing -file argument")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	questionRepo := repository.NewQuestionRepo(client.Database(cfg.MongoDB))

	result, err := excel.ImportCatalog(ctx, questionRepo, importCfg)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Processed %d rows, upserted %d questions", result.TotalProcessed, result.Upserted)
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
	if len(result.Errors) > 0 {
		log.Printf("%d rows failed", len(result.Errors))
	}
}
