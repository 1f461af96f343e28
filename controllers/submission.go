// controllers/submission.go - Submission lifecycle and winner selection
//
// State machine: submitted -> {selected, rejected}; both terminal.
// SelectWinner is the one multi-entity transition in the system and runs
// as a single transaction; the project row is locked first and acts as
// the critical section for the whole entity group.
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
	"gorm.io/gorm/clause"
)

type createSubmissionRequest struct {
	ApplicationID int                     `json:"application_id" binding:"required"`
	ProjectID     int                     `json:"project_id" binding:"required"`
	Title         string                  `json:"title" binding:"required"`
	Description   string                  `json:"description"`
	Links         []models.SubmissionLink `json:"submission_links" binding:"required"`
	Deadline      *time.Time              `json:"deadline"`
}

type updateSubmissionRequest struct {
	Title       *string                  `json:"title"`
	Description *string                  `json:"description"`
	Links       *[]models.SubmissionLink `json:"submission_links"`
}

// CreateSubmission records a deliverable against a shortlisted
// application. The application row is locked for the duration so the
// one-submission-per-application invariant holds under concurrent calls.
func CreateSubmission(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if err := utils.ValidateSubmissionLinks(req.Links); err != nil {
		respondWorkflowError(c, err)
		return
	}

	linksJSON, err := json.Marshal(req.Links)
	if err != nil {
		respondWorkflowError(c, utils.ValidationError("Invalid submission links"))
		return
	}

	now := time.Now()
	var submission models.Submission

	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		var application models.Application
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", req.ApplicationID).
			First(&application).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("Application")
		}
		if err != nil {
			return utils.WrapStoreError(err)
		}

		if application.UserID != userID {
			return utils.ErrUnauthorized
		}
		if application.ProjectID != req.ProjectID {
			return utils.ValidationError("Application does not belong to this project")
		}
		if application.Status != models.ApplicationStatusShortlisted {
			return utils.InvalidStateError("Only shortlisted applications can submit work")
		}
		if application.SubmissionDeadline != nil && application.SubmissionDeadline.Before(now) {
			return utils.DeadlinePassedError("Submission deadline has passed")
		}

		var existing models.Submission
		err = tx.Where("application_id = ?", req.ApplicationID).First(&existing).Error
		if err == nil {
			return utils.ConflictError("Submission already exists for this application")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.WrapStoreError(err)
		}

		deadline := req.Deadline
		if deadline == nil {
			deadline = application.SubmissionDeadline
		}

		submission = models.Submission{
			ApplicationID:   req.ApplicationID,
			ProjectID:       req.ProjectID,
			UserID:          userID,
			Title:           utils.SanitizeInput(req.Title),
			Description:     req.Description,
			SubmissionLinks: datatypes.JSON(linksJSON),
			Status:          models.SubmissionStatusSubmitted,
			Deadline:        deadline,
			Version:         1,
			SubmittedAt:     now,
		}

		if err := tx.Create(&submission).Error; err != nil {
			return utils.WrapStoreError(err)
		}
		return nil
	})
	if txErr != nil {
		respondWorkflowError(c, txErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// UpdateSubmission applies a partial patch before the deadline.
// Unspecified fields are left untouched.
func UpdateSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req updateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND user_id = ?", submissionID, userID).
		First(&submission).Error; err != nil {
		respondWorkflowError(c, utils.NotFoundError("Submission"))
		return
	}

	now := time.Now()
	if submission.DeadlinePassed(now) {
		respondWorkflowError(c, utils.DeadlinePassedError("Submission deadline has passed"))
		return
	}
	if submission.Status != models.SubmissionStatusSubmitted {
		respondWorkflowError(c, utils.InvalidStateError("Cannot edit a judged submission"))
		return
	}

	updates := map[string]interface{}{
		"version":    submission.Version + 1,
		"updated_at": now,
	}
	if req.Title != nil {
		updates["title"] = utils.SanitizeInput(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Links != nil {
		if err := utils.ValidateSubmissionLinks(*req.Links); err != nil {
			respondWorkflowError(c, err)
			return
		}
		linksJSON, err := json.Marshal(*req.Links)
		if err != nil {
			respondWorkflowError(c, utils.ValidationError("Invalid submission links"))
			return
		}
		updates["submission_links"] = datatypes.JSON(linksJSON)
	}

	if len(updates) == 2 {
		respondWorkflowError(c, utils.ValidationError("No fields to update"))
		return
	}

	result := config.DB.Model(&models.Submission{}).
		Where("submission_id = ? AND version = ?", submission.SubmissionID, submission.Version).
		Updates(updates)
	if result.Error != nil {
		respondWorkflowError(c, utils.WrapStoreError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondWorkflowError(c, utils.ConflictError("Submission was modified concurrently, please retry"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission updated",
	})
}

// DeleteSubmission removes a submission before the deadline.
func DeleteSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ? AND user_id = ?", submissionID, userID).
		First(&submission).Error; err != nil {
		respondWorkflowError(c, utils.NotFoundError("Submission"))
		return
	}

	if submission.DeadlinePassed(time.Now()) {
		respondWorkflowError(c, utils.DeadlinePassedError("Cannot delete submission after deadline"))
		return
	}
	if submission.Status != models.SubmissionStatusSubmitted {
		respondWorkflowError(c, utils.InvalidStateError("Cannot delete a judged submission"))
		return
	}

	result := config.DB.
		Where("submission_id = ? AND version = ?", submission.SubmissionID, submission.Version).
		Delete(&models.Submission{})
	if result.Error != nil {
		respondWorkflowError(c, utils.WrapStoreError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondWorkflowError(c, utils.ConflictError("Submission was modified concurrently, please retry"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission deleted",
	})
}

// RateSubmission records a one-time rating from the project's company.
func RateSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	type rateRequest struct {
		Rating   int     `json:"rating" binding:"required"`
		Feedback *string `json:"feedback"`
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if err := utils.ValidateRating(req.Rating); err != nil {
		respondWorkflowError(c, err)
		return
	}

	var submission models.Submission
	if err := config.DB.Preload("Project").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		respondWorkflowError(c, utils.NotFoundError("Submission"))
		return
	}

	if submission.Project == nil || submission.Project.CompanyID != userID {
		respondWorkflowError(c, utils.ErrUnauthorized)
		return
	}

	if submission.Rating != nil {
		respondWorkflowError(c, utils.ConflictError("Submission has already been rated"))
		return
	}

	updates := map[string]interface{}{
		"rating":     req.Rating,
		"version":    submission.Version + 1,
		"updated_at": time.Now(),
	}
	if req.Feedback != nil {
		updates["feedback"] = *req.Feedback
	}

	result := config.DB.Model(&models.Submission{}).
		Where("submission_id = ? AND version = ?", submission.SubmissionID, submission.Version).
		Updates(updates)
	if result.Error != nil {
		respondWorkflowError(c, utils.WrapStoreError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		respondWorkflowError(c, utils.ConflictError("Submission was modified concurrently, please retry"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission rated",
	})
}

// SelectWinner closes a project's submission phase: the target
// submission wins, its application is awarded, every sibling submission
// is rejected and compensated for participation. All of it commits or
// none of it does; re-invoking on a judged submission fails with an
// invalid-state error instead of re-running side effects.
func SelectWinner(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	now := time.Now()
	var winner models.Submission

	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		err := tx.Where("submission_id = ?", submissionID).
			First(&submission).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("Submission")
		}
		if err != nil {
			return utils.WrapStoreError(err)
		}

		// Lock the project row before any submission row: it is the
		// critical section for the whole entity group, so two concurrent
		// winner selections serialize here instead of deadlocking on each
		// other's submission locks.
		var project models.Project
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ? AND deleted_at IS NULL", submission.ProjectID).
			First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("Project")
		}
		if err != nil {
			return utils.WrapStoreError(err)
		}

		if project.CompanyID != userID {
			return utils.ErrUnauthorized
		}

		// Re-read under the project lock; a winner selection that
		// committed while we waited may have judged this submission.
		var locked models.Submission
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ?", submissionID).
			First(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("Submission")
		}
		if err != nil {
			return utils.WrapStoreError(err)
		}
		submission = locked

		if err := utils.EnsureSubmissionTransition(submission.Status, models.SubmissionStatusSelected); err != nil {
			return err
		}

		settings, wfErr := getOrCreateProjectSettings(tx, submission.ProjectID)
		if wfErr != nil {
			return wfErr
		}
		winnerAmount := settings.WinnerCompensation
		participationAmount := settings.ParticipationCompensation

		participationStatus := models.CompensationStatusPending
		if settings.AutoApproveParticipation {
			participationStatus = models.CompensationStatusApproved
		}

		// Winner submission, with its compensation mirror.
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submission.SubmissionID).
			Updates(map[string]interface{}{
				"status":              models.SubmissionStatusSelected,
				"compensation_amount": winnerAmount,
				"compensation_type":   models.CompensationTypeWinner,
				"compensation_status": models.CompensationStatusApproved,
				"version":             submission.Version + 1,
				"updated_at":          now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		if winnerAmount > 0 {
			compensation := models.Compensation{
				SubmissionID: submission.SubmissionID,
				UserID:       submission.UserID,
				ProjectID:    submission.ProjectID,
				Amount:       winnerAmount,
				Type:         models.CompensationTypeWinner,
				Status:       models.CompensationStatusApproved,
				ApprovedBy:   &userID,
				ApprovedAt:   &now,
				Version:      1,
				CreatedAt:    now,
			}
			if err := tx.Create(&compensation).Error; err != nil {
				return utils.WrapStoreError(err)
			}
		}

		// Award the application behind the winning submission.
		var application models.Application
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ?", submission.ApplicationID).
			First(&application).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("Application")
		}
		if err != nil {
			return utils.WrapStoreError(err)
		}
		if err := utils.EnsureApplicationTransition(application.Status, models.ApplicationStatusAwarded); err != nil {
			return err
		}
		if err := tx.Model(&models.Application{}).
			Where("application_id = ?", application.ApplicationID).
			Updates(map[string]interface{}{
				"status":     models.ApplicationStatusAwarded,
				"version":    application.Version + 1,
				"updated_at": now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		// Reject every sibling submission. With selected/rejected being
		// terminal, siblings can only be in submitted state, so a project
		// with zero siblings makes this a clean no-op.
		if err := tx.Model(&models.Submission{}).
			Where("project_id = ? AND submission_id <> ?", submission.ProjectID, submission.SubmissionID).
			Updates(map[string]interface{}{
				"status":              models.SubmissionStatusRejected,
				"compensation_amount": participationAmount,
				"compensation_type":   models.CompensationTypeParticipation,
				"compensation_status": participationStatus,
				"version":             gorm.Expr("version + 1"),
				"updated_at":          now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		if participationAmount > 0 {
			var losers []models.Submission
			if err := tx.
				Where("project_id = ? AND status = ? AND submission_id <> ?",
					submission.ProjectID, models.SubmissionStatusRejected, submission.SubmissionID).
				Find(&losers).Error; err != nil {
				return utils.WrapStoreError(err)
			}

			if len(losers) > 0 {
				compensations := make([]models.Compensation, 0, len(losers))
				for i := range losers {
					compensation := models.Compensation{
						SubmissionID: losers[i].SubmissionID,
						UserID:       losers[i].UserID,
						ProjectID:    submission.ProjectID,
						Amount:       participationAmount,
						Type:         models.CompensationTypeParticipation,
						Status:       participationStatus,
						Version:      1,
						CreatedAt:    now,
					}
					if settings.AutoApproveParticipation {
						compensation.ApprovedBy = &userID
						compensation.ApprovedAt = &now
					}
					compensations = append(compensations, compensation)
				}
				if err := tx.Create(&compensations).Error; err != nil {
					return utils.WrapStoreError(err)
				}
			}
		}

		winner = submission
		winner.Status = models.SubmissionStatusSelected
		winner.Version++
		winner.CompensationAmount = &winnerAmount
		winnerType := models.CompensationTypeWinner
		winner.CompensationType = &winnerType
		approved := models.CompensationStatusApproved
		winner.CompensationStatus = &approved
		return nil
	})
	if txErr != nil {
		respondWorkflowError(c, txErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": winner,
	})
}

// GetSubmissionsByProject returns a project's submissions to its owner.
func GetSubmissionsByProject(c *gin.Context) {
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

	var submissions []models.Submission
	if err := config.DB.Preload("User").Preload("Application").
		Where("project_id = ?", projectID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetMySubmissions returns the calling developer's submissions.
func GetMySubmissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var submissions []models.Submission
	query := config.DB.Preload("Project").Preload("Application").
		Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}
