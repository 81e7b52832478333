package letter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmz/legal-intake/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalTemplateStoreLoad(t *testing.T) {
	dir := t.TempDir()
	content := buildTemplate(t, "Hola {nombre}")
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, models.CaseTypeDamage.TemplateName()), content, 0644))

	store := NewLocalTemplateStore(dir, zap.NewNop())

	got, err := store.Load(context.Background(), models.CaseTypeDamage)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLocalTemplateStoreMissingFile(t *testing.T) {
	store := NewLocalTemplateStore(t.TempDir(), zap.NewNop())

	_, err := store.Load(context.Background(), models.CaseTypeTheft)
	require.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), models.CaseTypeTheft.TemplateName())
}
