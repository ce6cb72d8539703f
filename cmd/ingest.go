package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"signal-desk/internal/repository"
	"signal-desk/internal/service"
	"signal-desk/pkg/neo4jdb"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed *.txt case files and upsert them into Neo4j",
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.ValidateIngest(); err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return err
	}

	db, err := neo4jdb.NewDB(ctx, cfg.Neo4j, log)
	if err != nil {
		log.Error("Failed to connect to neo4j", zap.Error(err))
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()

	embeddingRepo, err := repository.NewGeminiEmbeddingRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	caseGraphRepo := repository.NewNeo4jCaseGraphRepository(db)
	if err := caseGraphRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	result, err := service.NewIngestService(cfg, log, embeddingRepo, caseGraphRepo).Ingest(ctx, ingestDir)
	log.Info("Ingestion summary",
		zap.Int("files", result.Files),
		zap.Int("ingested", result.Ingested),
		zap.Int("failed", result.Failed),
		zap.Int("batches", result.Batches),
		zap.Int("write_failures", result.WriteFailures),
	)
	return err
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "directory of *.txt files (defaults to ingest.dir)")
}
