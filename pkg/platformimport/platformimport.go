package platformimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/postpilot-hq/publish-engine/pkg/dryrun_api/models"
)

type Logger interface {
	Printf(format string, v ...any)
}

type Options struct {
	CSVPath string
	DryRun  bool
	Logger  Logger
}

type Result struct {
	Processed   int
	Inserted    int
	Updated     int
	ParseErrors int
}

type csvRow struct {
	ProjectID      string
	Type           models.PlatformType
	Name           string
	Connected      bool
	AccessToken    string
	TokenExpiresAt *time.Time
}

type headerIndex struct {
	projectID      int
	platformType   int
	name           int
	connected      int
	accessToken    int
	tokenExpiresAt int
}

// ImportCSV seeds platform connections from a CSV export. Rows are matched
// on (project_id, platform_type): existing connections are updated in
// place, unknown ones are created.
func ImportCSV(ctx context.Context, db *gorm.DB, opts Options) (Result, error) {
	if db == nil {
		return Result{}, errors.New("db is nil")
	}
	csvPath := strings.TrimSpace(opts.CSVPath)
	if csvPath == "" {
		return Result{}, errors.New("csv path is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read csv header: %w", err)
	}
	idx, err := mapHeaders(headers)
	if err != nil {
		return Result{}, fmt.Errorf("invalid csv header: %w", err)
	}

	result := Result{}
	line := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			logger.Printf("line %d: read error: %v", line, err)
			result.ParseErrors++
			continue
		}
		row, err := parseRow(record, idx)
		if err != nil {
			logger.Printf("line %d: %v", line, err)
			result.ParseErrors++
			continue
		}
		result.Processed++

		existing, err := findPlatform(db, row.ProjectID, row.Type)
		if err != nil {
			logger.Printf("line %d: %v", line, err)
			result.ParseErrors++
			continue
		}

		platform := buildPlatform(existing, row)
		if opts.DryRun {
			if existing != nil {
				result.Updated++
			} else {
				result.Inserted++
			}
			continue
		}
		if err := savePlatform(ctx, db, platform); err != nil {
			logger.Printf("line %d: save platform failed: %v", line, err)
			result.ParseErrors++
			continue
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Inserted++
		}
	}

	logger.Printf("done: processed=%d inserted=%d updated=%d parse_errors=%d", result.Processed, result.Inserted, result.Updated, result.ParseErrors)
	return result, nil
}

func mapHeaders(headers []string) (headerIndex, error) {
	idx := map[string]int{}
	for i, h := range headers {
		key := strings.TrimSpace(strings.ToLower(h))
		idx[key] = i
	}
	required := []string{"project_id", "platform_type", "connected"}
	for _, key := range required {
		if _, ok := idx[key]; !ok {
			return headerIndex{}, fmt.Errorf("missing column %q", key)
		}
	}
	optional := func(key string) int {
		if value, ok := idx[key]; ok {
			return value
		}
		return -1
	}
	return headerIndex{
		projectID:      idx["project_id"],
		platformType:   idx["platform_type"],
		name:           optional("name"),
		connected:      idx["connected"],
		accessToken:    optional("access_token"),
		tokenExpiresAt: optional("token_expires_at"),
	}, nil
}

func parseRow(record []string, idx headerIndex) (*csvRow, error) {
	projectID := ""
	if idx.projectID < len(record) {
		projectID = strings.TrimSpace(record[idx.projectID])
	}
	if projectID == "" {
		return nil, fmt.Errorf("missing project_id value")
	}

	rawType := ""
	if idx.platformType < len(record) {
		rawType = strings.ToUpper(strings.TrimSpace(record[idx.platformType]))
	}
	pt, err := parsePlatformType(rawType)
	if err != nil {
		return nil, err
	}

	name := ""
	if idx.name >= 0 && idx.name < len(record) {
		name = strings.TrimSpace(record[idx.name])
	}
	if name == "" {
		name = rawType
	}

	if idx.connected >= len(record) {
		return nil, fmt.Errorf("missing connected value")
	}
	connected, err := parseBool(record[idx.connected])
	if err != nil {
		return nil, fmt.Errorf("invalid connected %q: %w", record[idx.connected], err)
	}

	token := ""
	if idx.accessToken >= 0 && idx.accessToken < len(record) {
		token = strings.TrimSpace(record[idx.accessToken])
	}

	var expiresAt *time.Time
	if idx.tokenExpiresAt >= 0 && idx.tokenExpiresAt < len(record) {
		raw := strings.TrimSpace(record[idx.tokenExpiresAt])
		if raw != "" && !strings.EqualFold(raw, "null") {
			parsed, err := parseTimestamp(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid token_expires_at %q: %w", raw, err)
			}
			expiresAt = &parsed
		}
	}

	return &csvRow{
		ProjectID:      projectID,
		Type:           pt,
		Name:           name,
		Connected:      connected,
		AccessToken:    token,
		TokenExpiresAt: expiresAt,
	}, nil
}

func parsePlatformType(value string) (models.PlatformType, error) {
	for _, pt := range models.AllPlatformTypes {
		if string(pt) == value {
			return pt, nil
		}
	}
	return "", fmt.Errorf("unknown platform_type %q", value)
}

func parseBool(value string) (bool, error) {
	v := strings.TrimSpace(strings.ToLower(value))
	switch v {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

func parseTimestamp(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	layouts := []string{
		"2006-01-02 15:04:05.999999-07",
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05-07",
		"2006-01-02 15:04:05-07:00",
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

func buildPlatform(existing *models.Platform, row *csvRow) *models.Platform {
	platform := existing
	if platform == nil {
		platform = &models.Platform{
			Id:        uuid.NewString(),
			ProjectId: row.ProjectID,
			Type:      row.Type,
			CreatedAt: time.Now().UTC(),
		}
	}
	platform.Name = row.Name
	platform.Connected = row.Connected
	if row.AccessToken != "" {
		token := row.AccessToken
		platform.AccessToken = &token
	} else {
		platform.AccessToken = nil
	}
	platform.TokenExpiresAt = row.TokenExpiresAt
	platform.UpdatedAt = time.Now().UTC()
	return platform
}

func findPlatform(db *gorm.DB, projectID string, pt models.PlatformType) (*models.Platform, error) {
	var platform models.Platform
	err := db.Where("project_id = ? AND platform_type = ?", projectID, string(pt)).First(&platform).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &platform, nil
}

func savePlatform(ctx context.Context, db *gorm.DB, platform *models.Platform) error {
	return db.WithContext(ctx).Save(platform).Error
}
