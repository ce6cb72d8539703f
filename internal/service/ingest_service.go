package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"signal-desk/config"
	"signal-desk/internal/dto"
	"signal-desk/internal/model"
	"signal-desk/internal/repository"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/utils"
)

type IngestService interface {
	Ingest(ctx context.Context, dir string) (dto.IngestResult, error)
}

type ingestService struct {
	cfg           config.Ingest
	log           *logger.Logger
	embeddingRepo repository.EmbeddingRepository
	caseGraphRepo repository.CaseGraphRepository
}

func NewIngestService(
	cfg *config.Config,
	log *logger.Logger,
	embeddingRepo repository.EmbeddingRepository,
	caseGraphRepo repository.CaseGraphRepository,
) IngestService {
	return &ingestService{
		cfg:           cfg.Ingest,
		log:           log,
		embeddingRepo: embeddingRepo,
		caseGraphRepo: caseGraphRepo,
	}
}

// Ingest embeds every *.txt file in dir and upserts it as a case node. Files
// that cannot be read or embedded are skipped. A batch that fails to write is
// kept and retried together with the next one; only a failed final flush is
// returned as an error.
func (s *ingestService) Ingest(ctx context.Context, dir string) (dto.IngestResult, error) {
	if dir == "" {
		dir = s.cfg.Dir
	}
	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return dto.IngestResult{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	result := dto.IngestResult{Files: len(files)}
	s.log.InfoContext(ctx, "Starting ingestion",
		logger.StringField("dir", dir),
		logger.IntField("files", len(files)),
		logger.IntField("batch_size", batchSize),
	)

	batch := make([]model.CaseRecord, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.caseGraphRepo.UpsertCases(ctx, batch); err != nil {
			return err
		}
		result.Batches++
		result.Ingested += len(batch)
		s.log.InfoContext(ctx, "Batch written",
			logger.IntField("batch", result.Batches),
			logger.IntField("size", len(batch)),
		)
		batch = batch[:0]
		return nil
	}

	for _, path := range files {
		if !utils.ShouldContinue(ctx, s.log) {
			return result, ctx.Err()
		}

		record, err := s.buildRecord(ctx, path)
		if err != nil {
			result.Failed++
			s.log.WarnContext(ctx, "Skipping file", logger.StringField("path", path), logger.ErrorField(err))
			continue
		}
		batch = append(batch, record)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				result.WriteFailures++
				s.log.ErrorContextWithAlert(ctx, "Failed to write batch, keeping it for the next write",
					logger.IntField("pending", len(batch)),
					logger.ErrorField(err),
				)
			}
		}
	}
	if err := flush(); err != nil {
		result.WriteFailures++
		return result, fmt.Errorf("failed to write final batch of %d cases: %w", len(batch), err)
	}

	s.log.InfoContext(ctx, "Ingestion completed",
		logger.IntField("ingested", result.Ingested),
		logger.IntField("failed", result.Failed),
		logger.IntField("batches", result.Batches),
		logger.IntField("write_failures", result.WriteFailures),
	)
	return result, nil
}

func (s *ingestService) buildRecord(ctx context.Context, path string) (model.CaseRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.CaseRecord{}, fmt.Errorf("failed to read file: %w", err)
	}
	text := string(raw)

	embedding, err := s.embeddingRepo.Embed(ctx, text)
	if err != nil {
		return model.CaseRecord{}, err
	}

	return model.CaseRecord{
		ID:        strings.TrimSuffix(filepath.Base(path), ".txt"),
		Text:      text,
		Embedding: embedding,
	}, nil
}
