// controllers/compensation.go - Compensation lifecycle
//
// State machine: pending -> approved -> paid, terminal at paid. The
// winner path creates rows directly at approved. The compensation_*
// mirror on submissions is only written inside the same transaction as
// the source-of-truth compensation row.
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"talenthub-api/config"
	"talenthub-api/models"
	"talenthub-api/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApproveCompensations approves a batch of pending compensations owned
// by the caller's projects. The batch is atomic: one row in the wrong
// state rolls the whole thing back.
func ApproveCompensations(c *gin.Context) {
	type approveRequest struct {
		CompensationIDs []int `json:"compensation_ids" binding:"required"`
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	if len(req.CompensationIDs) == 0 {
		respondWorkflowError(c, utils.ValidationError("No compensation IDs supplied"))
		return
	}

	now := time.Now()
	var approved []models.Compensation

	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		var compensations []models.Compensation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("compensation_id IN ?", req.CompensationIDs).
			Find(&compensations).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		if len(compensations) != len(req.CompensationIDs) {
			return utils.NotFoundError("Compensation")
		}

		// Per-row ownership check against the parent project.
		projectIDs := make([]int, 0, len(compensations))
		for i := range compensations {
			projectIDs = append(projectIDs, compensations[i].ProjectID)
		}
		ownedProjects := make(map[int]bool, len(projectIDs))
		var projects []models.Project
		if err := tx.Where("project_id IN ? AND company_id = ?", projectIDs, userID).
			Find(&projects).Error; err != nil {
			return utils.WrapStoreError(err)
		}
		for i := range projects {
			ownedProjects[projects[i].ProjectID] = true
		}

		submissionIDs := make([]int, 0, len(compensations))
		for i := range compensations {
			comp := &compensations[i]
			if !ownedProjects[comp.ProjectID] {
				return utils.ErrUnauthorized
			}
			if err := utils.EnsureCompensationTransition(comp.Status, models.CompensationStatusApproved); err != nil {
				return utils.InvalidStateError(
					fmt.Sprintf("Compensation %d is %s, only pending compensations can be approved",
						comp.CompensationID, comp.Status))
			}
			submissionIDs = append(submissionIDs, comp.SubmissionID)
		}

		if err := tx.Model(&models.Compensation{}).
			Where("compensation_id IN ?", req.CompensationIDs).
			Updates(map[string]interface{}{
				"status":      models.CompensationStatusApproved,
				"approved_by": userID,
				"approved_at": now,
				"version":     gorm.Expr("version + 1"),
				"updated_at":  now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		// Mirror into the submissions read-model in the same transaction.
		if err := tx.Model(&models.Submission{}).
			Where("submission_id IN ?", submissionIDs).
			Updates(map[string]interface{}{
				"compensation_status": models.CompensationStatusApproved,
				"version":             gorm.Expr("version + 1"),
				"updated_at":          now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		for i := range compensations {
			compensations[i].Status = models.CompensationStatusApproved
			compensations[i].ApprovedBy = &userID
			compensations[i].ApprovedAt = &now
			compensations[i].Version++
		}
		approved = compensations
		return nil
	})
	if txErr != nil {
		respondWorkflowError(c, txErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"compensations": approved,
	})
}

// MarkCompensationPaid marks an approved compensation as paid.
func MarkCompensationPaid(c *gin.Context) {
	compensationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || compensationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid compensation ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	now := time.Now()
	var paid models.Compensation

	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		var compensation models.Compensation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("compensation_id = ?", compensationID).
			First(&compensation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("Compensation")
		}
		if err != nil {
			return utils.WrapStoreError(err)
		}

		if _, wfErr := findProjectOwnedBy(tx, compensation.ProjectID, userID); wfErr != nil {
			return wfErr
		}

		if err := utils.EnsureCompensationTransition(compensation.Status, models.CompensationStatusPaid); err != nil {
			return err
		}

		if err := tx.Model(&models.Compensation{}).
			Where("compensation_id = ?", compensation.CompensationID).
			Updates(map[string]interface{}{
				"status":     models.CompensationStatusPaid,
				"paid_at":    now,
				"version":    compensation.Version + 1,
				"updated_at": now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", compensation.SubmissionID).
			Updates(map[string]interface{}{
				"compensation_status": models.CompensationStatusPaid,
				"version":             gorm.Expr("version + 1"),
				"updated_at":          now,
			}).Error; err != nil {
			return utils.WrapStoreError(err)
		}

		paid = compensation
		paid.Status = models.CompensationStatusPaid
		paid.PaidAt = &now
		paid.Version++
		return nil
	})
	if txErr != nil {
		respondWorkflowError(c, txErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"compensation": paid,
	})
}

// GetCompensationsByProject returns a project's compensations to its owner.
func GetCompensationsByProject(c *gin.Context) {
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

	var compensations []models.Compensation
	if err := config.DB.Preload("Submission").Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&compensations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch compensations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"compensations": compensations,
		"total":         len(compensations),
	})
}

// GetMyCompensations returns the calling developer's earnings with
// per-status totals.
func GetMyCompensations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondWorkflowError(c, utils.ErrNotAuthenticated)
		return
	}

	var compensations []models.Compensation
	if err := config.DB.Preload("Submission").Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&compensations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch compensations"})
		return
	}

	totals := map[string]float64{
		models.CompensationStatusPending:  0,
		models.CompensationStatusApproved: 0,
		models.CompensationStatusPaid:     0,
	}
	for i := range compensations {
		totals[compensations[i].Status] += compensations[i].Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"compensations": compensations,
		"totals":        totals,
		"total":         len(compensations),
	})
}
