package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/models"
)

// DonationStats metrik papan pemuka admin. Dikira setiap permintaan;
// tiada polling latar belakang.
type DonationStats struct {
	TotalDonations  int64 `json:"total_donations"`
	PendingCount    int64 `json:"pending_count"`
	CompletedCount  int64 `json:"completed_count"`
	FailedCount     int64 `json:"failed_count"`
	ExpiredCount    int64 `json:"expired_count"`
	StalePending    int64 `json:"stale_pending"`
	TotalCollected  int64 `json:"total_collected"` // jumlah derma completed, dalam sen
	UnreadFormCount int64 `json:"unread_form_count"`
}

// ProjectStats jumlah terkumpul mengikut projek.
type ProjectStats struct {
	ProjectID uint   `json:"project_id"`
	Slug      string `json:"slug"`
	Collected int64  `json:"collected"`
	Count     int64  `json:"count"`
}

// StatsService mengira agregat derma untuk papan pemuka admin.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService membuat instance baru StatsService
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// GetDashboardStats mengembalikan metrik keseluruhan.
func (s *StatsService) GetDashboardStats(now time.Time) (*DonationStats, error) {
	stats := &DonationStats{}

	if err := s.db.Model(&models.Donation{}).Count(&stats.TotalDonations).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		status models.PaymentStatus
		dest   *int64
	}{
		{models.StatusPending, &stats.PendingCount},
		{models.StatusCompleted, &stats.CompletedCount},
		{models.StatusFailed, &stats.FailedCount},
		{models.StatusExpired, &stats.ExpiredCount},
	}
	for _, c := range counts {
		if err := s.db.Model(&models.Donation{}).
			Where("payment_status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	staleCutoff := now.Add(-models.StaleAfter)
	if err := s.db.Model(&models.Donation{}).
		Where("payment_status = ? AND created_at < ?", models.StatusPending, staleCutoff).
		Count(&stats.StalePending).Error; err != nil {
		return nil, err
	}

	var total struct{ Total int64 }
	if err := s.db.Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("payment_status = ?", models.StatusCompleted).
		Scan(&total).Error; err != nil {
		return nil, err
	}
	stats.TotalCollected = total.Total

	if err := s.db.Model(&models.FormSubmission{}).
		Where("`read` = ?", false).Count(&stats.UnreadFormCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// GetProjectStats mengembalikan jumlah terkumpul bagi setiap projek dari
// derma completed.
func (s *StatsService) GetProjectStats() ([]ProjectStats, error) {
	var rows []ProjectStats
	err := s.db.Model(&models.Donation{}).
		Select("donations.project_id AS project_id, projects.slug AS slug, "+
			"COALESCE(SUM(donations.amount), 0) AS collected, COUNT(donations.id) AS count").
		Joins("JOIN projects ON projects.id = donations.project_id").
		Where("donations.payment_status = ?", models.StatusCompleted).
		Group("donations.project_id, projects.slug").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
