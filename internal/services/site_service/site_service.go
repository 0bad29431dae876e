package siteservice

import (
	"context"
	"errors"

	"site-panel/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteService is the site registry: one row per deployed domain.
type SiteService struct {
	db *gorm.DB
}

func NewSiteService(db *gorm.DB) *SiteService {
	return &SiteService{db: db}
}

// Upsert inserts the domain or overwrites its status. created_at keeps the
// value from the first insert.
func (s *SiteService) Upsert(ctx context.Context, domain, status string) error {
	site := models.Site{
		Domain: domain,
		Status: status,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&site).Error
}

// List returns all sites, newest first.
func (s *SiteService) List(ctx context.Context) ([]models.Site, error) {
	sites := []models.Site{}

	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&sites).Error; err != nil {
		return nil, err
	}

	return sites, nil
}

// FindByDomain returns nil, nil when the domain was never deployed.
func (s *SiteService) FindByDomain(ctx context.Context, domain string) (*models.Site, error) {
	var site models.Site

	if err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &site, nil
}
