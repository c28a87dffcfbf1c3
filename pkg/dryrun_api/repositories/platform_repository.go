package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// MissingPlatformsError reports which requested platform ids the registry
// could not return; a stale or deleted id fails the run as an input error.
type MissingPlatformsError struct {
	Ids []string
}

func (e *MissingPlatformsError) Error() string {
	return fmt.Sprintf("unknown platform ids: %s", strings.Join(e.Ids, ", "))
}

// PlatformRepository is the read-only platform registry.
type PlatformRepository interface {
	// GetPlatformsByIDs returns exactly the requested platforms, in the
	// requested order, or *MissingPlatformsError naming the absent ids.
	GetPlatformsByIDs(ctx context.Context, ids []string) ([]models.Platform, error)
	ListPlatforms(ctx context.Context, projectId *string) ([]models.Platform, error)
	AllConnected(ctx context.Context) ([]models.Platform, error)
	SavePlatform(ctx context.Context, platform *models.Platform) error
}

type platformRepository struct {
	db *gorm.DB
}

func NewPlatformRepository(db *gorm.DB) PlatformRepository {
	return &platformRepository{db: db}
}

func (r *platformRepository) GetPlatformsByIDs(ctx context.Context, ids []string) ([]models.Platform, error) {
	var found []models.Platform
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byId := make(map[string]models.Platform, len(found))
	for _, p := range found {
		byId[p.Id] = p
	}

	ordered := make([]models.Platform, 0, len(ids))
	var missing []string
	for _, id := range ids {
		p, ok := byId[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, p)
	}
	if len(missing) > 0 {
		return nil, &MissingPlatformsError{Ids: missing}
	}
	return ordered, nil
}

func (r *platformRepository) ListPlatforms(ctx context.Context, projectId *string) ([]models.Platform, error) {
	q := r.db.WithContext(ctx).Order("name")
	if projectId != nil && *projectId != "" {
		q = q.Where("project_id = ?", *projectId)
	}
	var platforms []models.Platform
	if err := q.Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}

func (r *platformRepository) AllConnected(ctx context.Context) ([]models.Platform, error) {
	var platforms []models.Platform
	if err := r.db.WithContext(ctx).Where("connected = ?", true).Order("project_id, name").Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}

func (r *platformRepository) SavePlatform(ctx context.Context, platform *models.Platform) error {
	return r.db.WithContext(ctx).Save(platform).Error
}
