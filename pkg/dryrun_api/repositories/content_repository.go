package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// ErrContentNotFound signals a missing content id, distinct from other
// storage errors so the orchestrator can fail the run as an input error.
var ErrContentNotFound = errors.New("content not found")

// ContentRepository is the read-only content store the engine consumes.
type ContentRepository interface {
	GetContentByID(ctx context.Context, id string) (*models.Content, error)
	SaveContent(ctx context.Context, content *models.Content) error
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetContentByID(ctx context.Context, id string) (*models.Content, error) {
	var content models.Content
	if err := r.db.WithContext(ctx).First(&content, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrContentNotFound, id)
		}
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) SaveContent(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Save(content).Error
}
