package repositories

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

// TestRunRepository is the append-only persistence store for dry-run
// evidence: create TestRun / ValidationResult / MockPublication rows, one
// finalize update per TestRun.
type TestRunRepository interface {
	CreateTestRun(ctx context.Context, run *models.TestRun) error
	MarkRunning(ctx context.Context, id string, startedAt time.Time) error
	FinalizeTestRun(ctx context.Context, run *models.TestRun) error
	SaveValidationResult(ctx context.Context, result *models.ValidationResult) error
	SaveMockPublication(ctx context.Context, pub *models.MockPublication) error
	GetTestRunByID(ctx context.Context, id string) (*models.TestRun, error)
	GetTestRuns(ctx context.Context, projectId *string, page, perPage int) ([]models.TestRun, models.Pagination, error)
	DeleteTestRun(ctx context.Context, id string) error
}

type testRunRepository struct {
	db *gorm.DB
}

func NewTestRunRepository(db *gorm.DB) TestRunRepository {
	return &testRunRepository{db: db}
}

func (r *testRunRepository) CreateTestRun(ctx context.Context, run *models.TestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *testRunRepository) MarkRunning(ctx context.Context, id string, startedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.TestRun{}).
		Where("id = ? AND status = ?", id, models.TestRunPending).
		Updates(map[string]interface{}{
			"status":     models.TestRunRunning,
			"started_at": startedAt,
		}).Error
}

// FinalizeTestRun writes the one terminal update; the record is immutable
// afterwards.
func (r *testRunRepository) FinalizeTestRun(ctx context.Context, run *models.TestRun) error {
	return r.db.WithContext(ctx).Model(&models.TestRun{}).
		Where("id = ?", run.Id).
		Updates(map[string]interface{}{
			"status":          run.Status,
			"completed_at":    run.CompletedAt,
			"duration_ms":     run.DurationMs,
			"passed":          run.Passed,
			"passed_checks":   run.PassedChecks,
			"failed_checks":   run.FailedChecks,
			"warning_count":   run.WarningCount,
			"summary":         run.Summary,
			"recommendations": run.Recommendations,
			"error":           run.Error,
			"error_details":   run.ErrorDetails,
		}).Error
}

func (r *testRunRepository) SaveValidationResult(ctx context.Context, result *models.ValidationResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *testRunRepository) SaveMockPublication(ctx context.Context, pub *models.MockPublication) error {
	return r.db.WithContext(ctx).Create(pub).Error
}

func (r *testRunRepository) GetTestRunByID(ctx context.Context, id string) (*models.TestRun, error) {
	var run models.TestRun
	err := r.db.WithContext(ctx).
		Preload("ValidationResults").
		Preload("MockPublications").
		First(&run, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *testRunRepository) GetTestRuns(ctx context.Context, projectId *string, page, perPage int) ([]models.TestRun, models.Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.TestRun{})
	if projectId != nil && *projectId != "" {
		q = q.Where("project_id = ?", *projectId)
	}

	var totalRecords int64
	if err := q.Count(&totalRecords).Error; err != nil {
		return nil, models.Pagination{}, err
	}

	var runs []models.TestRun
	offset := (page - 1) * perPage
	if err := q.Order("created_at DESC").Limit(perPage).Offset(offset).Find(&runs).Error; err != nil {
		return nil, models.Pagination{}, err
	}

	totalPages := int(math.Ceil(float64(totalRecords) / float64(perPage)))
	pagination := models.Pagination{
		CurrentPage:    page,
		RecordsPerPage: perPage,
		TotalPages:     totalPages,
		TotalRecords:   int(totalRecords),
	}
	if page < totalPages {
		next := page + 1
		pagination.Next = &next
	}
	if page > 1 {
		prev := page - 1
		pagination.Previous = &prev
	}

	return runs, pagination, nil
}

// DeleteTestRun removes a run and cascades to its owned results.
func (r *testRunRepository) DeleteTestRun(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_run_id = ?", id).Delete(&models.ValidationResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_run_id = ?", id).Delete(&models.MockPublication{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TestRun{}, "id = ?", id).Error
	})
}
