package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// Service turns a role's document paths into the ordered chunk sequence the
// indices are built from. Chunk indices are global across all files of one
// role, in path order, so they line up with sparse and term-weight document
// positions.
type Service struct {
	splitter *Splitter
	logger   *slog.Logger
}

func NewService(splitter *Splitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{splitter: splitter, logger: logger}
}

// Load extracts and splits every readable file. A file that fails extraction
// is skipped and logged; the corpus is built from whatever remains.
func (s *Service) Load(ctx context.Context, paths []string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	index := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := extract(path)
		if err != nil {
			s.logger.Warn("document_skipped", "path", path, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			s.logger.Warn("document_empty", "path", path)
			continue
		}

		for i, piece := range s.splitter.Split(text) {
			chunks = append(chunks, domain.Chunk{
				Index: index,
				Text:  piece,
				Metadata: map[string]string{
					"source": filepath.Base(path),
					"chunk":  fmt.Sprintf("%d", i),
				},
			})
			index++
		}
	}
	return chunks, nil
}

func extract(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".xlsx", ".xlsm":
		return extractXLSX(path)
	default:
		return extractPlaintext(path)
	}
}
