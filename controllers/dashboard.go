package controllers

import (
	"net/http"
	"talenthub-api/config"
	"talenthub-api/models"
	"talenthub-api/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns dashboard statistics for the caller's role.
func GetDashboardStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	role, _ := c.Get("role")

	var stats map[string]interface{}
	if role == models.RoleCompany {
		stats = getCompanyDashboard(userID)
	} else {
		stats = getFreelancerDashboard(userID)
	}

	if stats == nil {
		stats = make(map[string]interface{})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// getCompanyDashboard summarizes the company's side of the marketplace.
func getCompanyDashboard(userID string) map[string]interface{} {
	stats := make(map[string]interface{})

	var projectCounts []struct {
		Status string `gorm:"column:status"`
		Total  int    `gorm:"column:total"`
	}
	if err := config.DB.Model(&models.Project{}).
		Select("status, COUNT(*) AS total").
		Where("company_id = ? AND deleted_at IS NULL", userID).
		Group("status").
		Scan(&projectCounts).Error; err == nil {
		projects := make(map[string]int)
		for _, row := range projectCounts {
			projects[row.Status] = row.Total
		}
		stats["projects"] = projects
	}

	var applicationCounts []struct {
		Status string `gorm:"column:status"`
		Total  int    `gorm:"column:total"`
	}
	if err := config.DB.Model(&models.Application{}).
		Select("applications.status, COUNT(*) AS total").
		Joins("JOIN projects ON projects.project_id = applications.project_id").
		Where("projects.company_id = ?", userID).
		Group("applications.status").
		Scan(&applicationCounts).Error; err == nil {
		applications := make(map[string]int)
		for _, row := range applicationCounts {
			applications[row.Status] = row.Total
		}
		stats["applications"] = applications
	}

	var compensationTotals []struct {
		Status string  `gorm:"column:status"`
		Total  float64 `gorm:"column:total"`
	}
	if err := config.DB.Model(&models.Compensation{}).
		Select("compensations.status, COALESCE(SUM(compensations.amount), 0) AS total").
		Joins("JOIN projects ON projects.project_id = compensations.project_id").
		Where("projects.company_id = ?", userID).
		Group("compensations.status").
		Scan(&compensationTotals).Error; err == nil {
		compensations := make(map[string]float64)
		for _, row := range compensationTotals {
			compensations[row.Status] = row.Total
		}
		stats["compensations"] = compensations
	}

	return stats
}

// getFreelancerDashboard summarizes the developer's applications,
// submissions, and earnings.
func getFreelancerDashboard(userID string) map[string]interface{} {
	stats := make(map[string]interface{})

	var applicationCounts []struct {
		Status string `gorm:"column:status"`
		Total  int    `gorm:"column:total"`
	}
	if err := config.DB.Model(&models.Application{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&applicationCounts).Error; err == nil {
		applications := make(map[string]int)
		for _, row := range applicationCounts {
			applications[row.Status] = row.Total
		}
		stats["applications"] = applications
	}

	var submissionCounts []struct {
		Status string `gorm:"column:status"`
		Total  int    `gorm:"column:total"`
	}
	if err := config.DB.Model(&models.Submission{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&submissionCounts).Error; err == nil {
		submissions := make(map[string]int)
		for _, row := range submissionCounts {
			submissions[row.Status] = row.Total
		}
		stats["submissions"] = submissions
	}

	var earnings []struct {
		Status string  `gorm:"column:status"`
		Total  float64 `gorm:"column:total"`
	}
	if err := config.DB.Model(&models.Compensation{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&earnings).Error; err == nil {
		totals := make(map[string]float64)
		for _, row := range earnings {
			totals[row.Status] = row.Total
		}
		stats["earnings"] = totals
	}

	return stats
}
