// controllers/profile.go - Freelancer public profile
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"talenthub-api/config"
	"talenthub-api/models"
	"talenthub-api/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var profileAvailabilities = map[string]bool{
	"available":         true,
	"available-limited": true,
	"unavailable":       true,
}

// GetFreelancerProfile returns the caller's freelancer profile.
func GetFreelancerProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var profile models.FreelancerProfile
	err := config.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not completed yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}

// UpsertFreelancerProfile creates or updates the caller's profile.
func UpsertFreelancerProfile(c *gin.Context) {
	type profileRequest struct {
		ProfessionalTitle string   `json:"professional_title" binding:"required"`
		About             string   `json:"about"`
		HourlyRate        float64  `json:"hourly_rate"`
		Availability      string   `json:"availability" binding:"required"`
		Skills            []string `json:"skills"`
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if !profileAvailabilities[req.Availability] {
		respondWorkflowError(c, utils.ValidationError("Invalid availability"))
		return
	}
	if req.HourlyRate < 0 {
		respondWorkflowError(c, utils.ValidationError("Hourly rate cannot be negative"))
		return
	}

	skills, err := json.Marshal(req.Skills)
	if err != nil {
		respondWorkflowError(c, utils.ValidationError("Invalid skills list"))
		return
	}

	now := time.Now()
	var profile models.FreelancerProfile
	err = config.DB.Where("user_id = ?", userID).First(&profile).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.FreelancerProfile{
			UserID:            userID,
			ProfessionalTitle: utils.SanitizeInput(req.ProfessionalTitle),
			About:             req.About,
			HourlyRate:        req.HourlyRate,
			Availability:      req.Availability,
			Skills:            datatypes.JSON(skills),
			CreatedAt:         now,
		}
		if err := config.DB.Create(&profile).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	default:
		updates := map[string]interface{}{
			"professional_title": utils.SanitizeInput(req.ProfessionalTitle),
			"about":              req.About,
			"hourly_rate":        req.HourlyRate,
			"availability":       req.Availability,
			"skills":             datatypes.JSON(skills),
			"updated_at":         now,
		}
		if err := config.DB.Model(&models.FreelancerProfile{}).
			Where("profile_id = ?", profile.ProfileID).
			Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}
		if err := config.DB.Where("profile_id = ?", profile.ProfileID).First(&profile).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}
