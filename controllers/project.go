// controllers/project.go - Project CRUD and lifecycle
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"talenthub-api/config"
	"talenthub-api/models"
	"talenthub-api/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type projectRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description" binding:"required"`
	Category        string     `json:"category" binding:"required"`
	Budget          float64    `json:"budget" binding:"required"`
	Duration        string     `json:"duration"`
	Deadline        *time.Time `json:"deadline"`
	ExperienceLevel string     `json:"experience_level"`
	Skills          []string   `json:"skills"`
}

// GetProjects returns open projects for browsing. Developers see every
// open project; a company gets its own projects regardless of status.
func GetProjects(c *gin.Context) {
	userID, _ := currentUserID(c)
	role, _ := c.Get("role")

	var projects []models.Project
	query := config.DB.Where("deleted_at IS NULL")

	if role == models.RoleCompany {
		query = query.Where("company_id = ?", userID)
	} else {
		query = query.Where("status = ?", models.ProjectStatusOpen)
	}

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if skill := c.Query("skill"); skill != "" {
		query = query.Where(datatypes.JSONArrayQuery("skills").Contains(skill))
	}

	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	// Applicant counts in one grouped query rather than per row.
	if len(projects) > 0 {
		ids := make([]int, len(projects))
		for i := range projects {
			ids[i] = projects[i].ProjectID
		}

		var counts []struct {
			ProjectID int `gorm:"column:project_id"`
			Total     int `gorm:"column:total"`
		}
		if err := config.DB.Model(&models.Application{}).
			Select("project_id, COUNT(*) AS total").
			Where("project_id IN ?", ids).
			Group("project_id").
			Scan(&counts).Error; err == nil {
			byProject := make(map[int]int, len(counts))
			for _, row := range counts {
				byProject[row.ProjectID] = row.Total
			}
			for i := range projects {
				projects[i].Applicants = byProject[projects[i].ProjectID]
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": projects,
		"total":    len(projects),
	})
}

// GetProject returns a single project by ID
func GetProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var project models.Project
	if err := config.DB.Preload("Company").
		Where("project_id = ? AND deleted_at IS NULL", projectID).
		First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// CreateProject creates a new project owned by the calling company.
func CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if err := utils.ValidateAmount(req.Budget); err != nil {
		respondWorkflowError(c, err)
		return
	}

	skills, err := json.Marshal(req.Skills)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skills list"})
		return
	}

	project := models.Project{
		CompanyID:       userID,
		Title:           utils.SanitizeInput(req.Title),
		Description:     req.Description,
		Category:        utils.SanitizeInput(req.Category),
		Budget:          req.Budget,
		Duration:        utils.SanitizeInput(req.Duration),
		Deadline:        req.Deadline,
		Status:          models.ProjectStatusOpen,
		ExperienceLevel: utils.SanitizeInput(req.ExperienceLevel),
		Skills:          datatypes.JSON(skills),
		Version:         1,
		CreatedAt:       time.Now(),
	}

	if err := config.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"project": project,
	})
}

// UpdateProject updates project fields. Status changes go through
// UpdateProjectStatus so the lifecycle table stays authoritative.
func UpdateProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	project, wfErr := findProjectOwnedBy(config.DB, projectID, userID)
	if wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	if err := utils.ValidateAmount(req.Budget); err != nil {
		respondWorkflowError(c, err)
		return
	}

	skills, err := json.Marshal(req.Skills)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skills list"})
		return
	}

	updates := map[string]interface{}{
		"title":            utils.SanitizeInput(req.Title),
		"description":      req.Description,
		"category":         utils.SanitizeInput(req.Category),
		"budget":           req.Budget,
		"duration":         utils.SanitizeInput(req.Duration),
		"deadline":         req.Deadline,
		"experience_level": utils.SanitizeInput(req.ExperienceLevel),
		"skills":           datatypes.JSON(skills),
		"version":          project.Version + 1,
		"updated_at":       time.Now(),
	}

	result := config.DB.Model(&models.Project{}).
		Where("project_id = ? AND version = ?", project.ProjectID, project.Version).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	if result.RowsAffected == 0 {
		respondWorkflowError(c, utils.ConflictError("Project was modified concurrently, please retry"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project updated",
	})
}

// UpdateProjectStatus advances the project lifecycle.
func UpdateProjectStatus(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	type statusRequest struct {
		Status string `json:"status" binding:"required"`
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	project, wfErr := findProjectOwnedBy(config.DB, projectID, userID)
	if wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	if err := utils.EnsureProjectTransition(project.Status, req.Status); err != nil {
		respondWorkflowError(c, err)
		return
	}

	result := config.DB.Model(&models.Project{}).
		Where("project_id = ? AND version = ?", project.ProjectID, project.Version).
		Updates(map[string]interface{}{
			"status":     req.Status,
			"version":    project.Version + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	if result.RowsAffected == 0 {
		respondWorkflowError(c, utils.ConflictError("Project was modified concurrently, please retry"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Status updated",
	})
}

// DeleteProject soft-deletes a project the caller owns.
func DeleteProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	project, wfErr := findProjectOwnedBy(config.DB, projectID, userID)
	if wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	if err := config.DB.Model(&models.Project{}).
		Where("project_id = ?", project.ProjectID).
		Update("deleted_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted",
	})
}

// GetProjectSettings returns per-project compensation settings, creating
// the default row on first read.
func GetProjectSettings(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if _, wfErr := findProjectOwnedBy(config.DB, projectID, userID); wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	settings, wfErr := getOrCreateProjectSettings(config.DB, projectID)
	if wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

// UpdateProjectSettings adjusts compensation amounts before a winner is
// selected.
func UpdateProjectSettings(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	type settingsRequest struct {
		ParticipationCompensation *float64 `json:"participation_compensation"`
		WinnerCompensation        *float64 `json:"winner_compensation"`
		AutoApproveParticipation  *bool    `json:"auto_approve_participation"`
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if _, wfErr := findProjectOwnedBy(config.DB, projectID, userID); wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	settings, wfErr := getOrCreateProjectSettings(config.DB, projectID)
	if wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.ParticipationCompensation != nil {
		if *req.ParticipationCompensation < 0 {
			respondWorkflowError(c, utils.ValidationError("Participation compensation cannot be negative"))
			return
		}
		updates["participation_compensation"] = *req.ParticipationCompensation
	}
	if req.WinnerCompensation != nil {
		if *req.WinnerCompensation < 0 {
			respondWorkflowError(c, utils.ValidationError("Winner compensation cannot be negative"))
			return
		}
		updates["winner_compensation"] = *req.WinnerCompensation
	}
	if req.AutoApproveParticipation != nil {
		updates["auto_approve_participation"] = *req.AutoApproveParticipation
	}

	if err := config.DB.Model(&models.ProjectSettings{}).
		Where("settings_id = ?", settings.SettingsID).
		Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	var updated models.ProjectSettings
	if err := config.DB.Where("settings_id = ?", settings.SettingsID).First(&updated).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Settings not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": updated,
	})
}
