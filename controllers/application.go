// controllers/application.go - Application lifecycle transitions
//
// State machine: submitted -> {shortlisted, rejected},
// shortlisted -> {awarded, rejected}. awarded is only ever set by winner
// selection (submission.go). rejected and awarded are terminal.
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"talenthub-api/config"
	"talenthub-api/models"
	"talenthub-api/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplyToProject creates an application for an open project. One
// application per (user, project); the unique index backs the in-flow
// duplicate check against races.
func ApplyToProject(c *gin.Context) {
	type applyRequest struct {
		ProjectID int    `json:"project_id" binding:"required"`
		Proposal  string `json:"proposal" binding:"required"`
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var project models.Project
	if err := config.DB.Where("project_id = ? AND deleted_at IS NULL", req.ProjectID).
		First(&project).Error; err != nil {
		respondWorkflowError(c, utils.NotFoundError("Project"))
		return
	}

	if project.Status != models.ProjectStatusOpen {
		respondWorkflowError(c, utils.InvalidStateError("Project is not accepting applications"))
		return
	}
	if project.CompanyID == userID {
		respondWorkflowError(c, utils.ValidationError("Cannot apply to your own project"))
		return
	}

	var existing models.Application
	err := config.DB.Where("project_id = ? AND user_id = ?", req.ProjectID, userID).
		First(&existing).Error
	if err == nil {
		respondWorkflowError(c, utils.ConflictError("You already applied to this project"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondWorkflowError(c, utils.WrapStoreError(err))
		return
	}

	application := models.Application{
		ProjectID: req.ProjectID,
		UserID:    userID,
		Proposal:  req.Proposal,
		Status:    models.ApplicationStatusSubmitted,
		Version:   1,
		CreatedAt: time.Now(),
	}

	if err := config.DB.Create(&application).Error; err != nil {
		// Unique index turns the racing duplicate into an error here.
		respondWorkflowError(c, utils.ConflictError("You already applied to this project"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"application": application,
	})
}

// GetApplicationsByProject returns a project's applications to its owner.
func GetApplicationsByProject(c *gin.Context) {
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

	var applications []models.Application
	if err := config.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": applications,
		"total":        len(applications),
	})
}

// GetMyApplications returns the calling developer's applications.
func GetMyApplications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var applications []models.Application
	query := config.DB.Preload("Project").Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": applications,
		"total":        len(applications),
	})
}

// transitionApplication applies a guarded single-row status change with
// an optimistic version check. A stale version loses with Conflict
// instead of silently overwriting a concurrent transition.
func transitionApplication(c *gin.Context, newStatus string, deadline *time.Time) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || applicationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	application, wfErr := findApplicationForCompany(config.DB, applicationID, userID)
	if wfErr != nil {
		respondWorkflowError(c, wfErr)
		return
	}

	if utils.IsApplicationSelfLoop(application.Status, newStatus) && deadline == nil {
		// Idempotent re-issue, nothing to write.
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"application": application,
		})
		return
	}

	if err := utils.EnsureApplicationTransition(application.Status, newStatus); err != nil {
		respondWorkflowError(c, err)
		return
	}

	updates := map[string]interface{}{
		"status":     newStatus,
		"version":    application.Version + 1,
		"updated_at": time.Now(),
	}
	if deadline != nil {
		updates["submission_deadline"] = *deadline
	}

	result := config.DB.Model(&models.Application{}).
		Where("application_id = ? AND version = ?", application.ApplicationID, application.Version).
		Updates(updates)
	if result.Error != nil {
		respondWorkflowError(c, utils.WrapStoreError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondWorkflowError(c, utils.ConflictError("Application was modified concurrently, please retry"))
		return
	}

	application.Status = newStatus
	application.Version++
	if deadline != nil {
		application.SubmissionDeadline = deadline
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": application,
	})
}

// ShortlistApplication invites an applicant to submit work, optionally
// setting a submission deadline.
func ShortlistApplication(c *gin.Context) {
	type shortlistRequest struct {
		SubmissionDeadline *time.Time `json:"submission_deadline"`
	}

	var req shortlistRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	transitionApplication(c, models.ApplicationStatusShortlisted, req.SubmissionDeadline)
}

// RejectApplication turns an applicant down.
func RejectApplication(c *gin.Context) {
	transitionApplication(c, models.ApplicationStatusRejected, nil)
}

// bulkTransitionApplications applies a transition to many applications.
// Ownership is verified per row: only applications whose parent project
// belongs to the caller are touched, and rows in a state that forbids
// the transition are skipped rather than silently overwritten.
func bulkTransitionApplications(c *gin.Context, newStatus string, deadline *time.Time, ids []int) {
	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if len(ids) == 0 {
		respondWorkflowError(c, utils.ValidationError("No application IDs supplied"))
		return
	}

	var applications []models.Application
	if err := config.DB.
		Joins("JOIN projects ON projects.project_id = applications.project_id").
		Where("applications.application_id IN ? AND projects.company_id = ?", ids, userID).
		Find(&applications).Error; err != nil {
		respondWorkflowError(c, utils.WrapStoreError(err))
		return
	}

	updated := make([]int, 0, len(applications))
	skipped := make([]int, 0)
	now := time.Now()

	for i := range applications {
		app := &applications[i]

		if utils.IsApplicationSelfLoop(app.Status, newStatus) && deadline == nil {
			updated = append(updated, app.ApplicationID)
			continue
		}
		if err := utils.EnsureApplicationTransition(app.Status, newStatus); err != nil {
			skipped = append(skipped, app.ApplicationID)
			continue
		}

		updates := map[string]interface{}{
			"status":     newStatus,
			"version":    app.Version + 1,
			"updated_at": now,
		}
		if deadline != nil {
			updates["submission_deadline"] = *deadline
		}

		result := config.DB.Model(&models.Application{}).
			Where("application_id = ? AND version = ?", app.ApplicationID, app.Version).
			Updates(updates)
		if result.Error != nil {
			respondWorkflowError(c, utils.WrapStoreError(result.Error))
			return
		}
		if result.RowsAffected == 0 {
			skipped = append(skipped, app.ApplicationID)
			continue
		}
		updated = append(updated, app.ApplicationID)
	}

	// IDs the ownership join filtered out count as skipped too.
	seen := make(map[int]bool, len(applications))
	for i := range applications {
		seen[applications[i].ApplicationID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			skipped = append(skipped, id)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": updated,
		"skipped": skipped,
	})
}

// BulkShortlistApplications shortlists a batch of applications.
func BulkShortlistApplications(c *gin.Context) {
	type bulkRequest struct {
		ApplicationIDs     []int      `json:"application_ids" binding:"required"`
		SubmissionDeadline *time.Time `json:"submission_deadline"`
	}

	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bulkTransitionApplications(c, models.ApplicationStatusShortlisted, req.SubmissionDeadline, req.ApplicationIDs)
}

// BulkRejectApplications rejects a batch of applications.
func BulkRejectApplications(c *gin.Context) {
	type bulkRequest struct {
		ApplicationIDs []int `json:"application_ids" binding:"required"`
	}

	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bulkTransitionApplications(c, models.ApplicationStatusRejected, nil, req.ApplicationIDs)
}

// CheckDeadline reports whether the submission window of an application
// is still open.
func CheckDeadline(c *gin.Context) {
	applicationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || applicationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var application models.Application
	if err := config.DB.Where("application_id = ?", applicationID).
		First(&application).Error; err != nil {
		respondWorkflowError(c, utils.NotFoundError("Application"))
		return
	}

	if application.SubmissionDeadline == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"deadline_passed": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"deadline_passed": application.SubmissionDeadline.Before(time.Now()),
		"deadline":        application.SubmissionDeadline,
	})
}
