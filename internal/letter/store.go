package letter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmz/legal-intake/internal/models"
	"go.uber.org/zap"
)

// TemplateStore resolves the template archive for a case type.
type TemplateStore interface {
	Load(ctx context.Context, caseType models.CaseType) ([]byte, error)
}

// LocalTemplateStore reads template archives from a directory, one file per
// case type.
type LocalTemplateStore struct {
	dir    string
	logger *zap.Logger
}

// NewLocalTemplateStore creates a template store over the given directory.
func NewLocalTemplateStore(dir string, logger *zap.Logger) *LocalTemplateStore {
	return &LocalTemplateStore{dir: dir, logger: logger}
}

// Load reads the template for the case type. A missing file is a deployment
// defect, reported as ErrTemplateNotFound.
func (s *LocalTemplateStore) Load(ctx context.Context, caseType models.CaseType) ([]byte, error) {
	path := filepath.Join(s.dir, caseType.TemplateName())

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("Template file missing", zap.String("path", path))
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	s.logger.Debug("Template loaded",
		zap.String("case_type", string(caseType)),
		zap.Int("size", len(content)))

	return content, nil
}

var _ TemplateStore = (*LocalTemplateStore)(nil)
