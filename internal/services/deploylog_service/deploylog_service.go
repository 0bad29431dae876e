package deploylogservice

import (
	"context"
	"fmt"
	"strings"

	"site-panel/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NoLogsMessage is returned by FormatLines for an empty history.
const NoLogsMessage = "no logs available"

// TimestampLayout is how entry timestamps appear in formatted output.
const TimestampLayout = "2006-01-02 15:04:05"

// DeployLogService is the append-only deploy history.
type DeployLogService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewDeployLogService(db *gorm.DB, log *zap.SugaredLogger) *DeployLogService {
	return &DeployLogService{db: db, log: log}
}

// Append records a deploy attempt. Failures are logged and swallowed so a
// broken history never aborts the caller.
func (s *DeployLogService) Append(ctx context.Context, domain, status, message string) {
	entry := models.DeployLog{
		Domain:  domain,
		Status:  status,
		Message: message,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Errorw("deploy log append failed",
			"domain", domain,
			"status", status,
			"err", err,
		)
	}
}

// ListForDomain returns the entries for domain, most recent first.
func (s *DeployLogService) ListForDomain(ctx context.Context, domain string) ([]models.DeployLog, error) {
	entries := []models.DeployLog{}

	err := s.db.WithContext(ctx).
		Where("domain = ?", domain).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// FormatLines renders entries as "[ts] STATUS: status - message" lines.
func FormatLines(entries []models.DeployLog) string {
	if len(entries) == 0 {
		return NoLogsMessage
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("[%s] STATUS: %s", e.Timestamp.UTC().Format(TimestampLayout), e.Status)
		if e.Message != "" {
			line += " - " + e.Message
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
