// controllers/helpers.go - shared authorization and response plumbing
package controllers

import (
	"errors"
	"net/http"
	"talenthub-api/models"
	"talenthub-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

var workflowErrorStatus = map[utils.ErrorKind]int{
	utils.KindNotAuthenticated: http.StatusUnauthorized,
	utils.KindNotFound:         http.StatusNotFound,
	utils.KindUnauthorized:     http.StatusForbidden,
	utils.KindInvalidState:     http.StatusConflict,
	utils.KindConflict:         http.StatusConflict,
	utils.KindValidation:       http.StatusBadRequest,
	utils.KindDeadlinePassed:   http.StatusUnprocessableEntity,
	utils.KindStore:            http.StatusInternalServerError,
}

// respondWorkflowError terminates the request with the uniform failure
// envelope. Unknown errors are treated as store failures so no raw
// driver error leaks to the client.
func respondWorkflowError(c *gin.Context, err error) {
	wfErr, ok := utils.AsWorkflowError(err)
	if !ok {
		wfErr = utils.WrapStoreError(err)
	}

	status, known := workflowErrorStatus[wfErr.Kind]
	if !known {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   wfErr.Error(),
		"kind":    string(wfErr.Kind),
	})
}

// findApplicationForCompany loads an application together with the owning
// project's company id and verifies the caller owns it.
func findApplicationForCompany(db *gorm.DB, applicationID int, companyID string) (*models.Application, error) {
	var application models.Application
	err := db.Preload("Project").
		Where("application_id = ?", applicationID).
		First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("Application")
	}
	if err != nil {
		return nil, utils.WrapStoreError(err)
	}
	if application.Project == nil || application.Project.CompanyID != companyID {
		return nil, utils.ErrUnauthorized
	}
	return &application, nil
}

// findProjectOwnedBy loads a live project and verifies company ownership.
func findProjectOwnedBy(db *gorm.DB, projectID int, companyID string) (*models.Project, error) {
	var project models.Project
	err := db.Where("project_id = ? AND deleted_at IS NULL", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("Project")
	}
	if err != nil {
		return nil, utils.WrapStoreError(err)
	}
	if project.CompanyID != companyID {
		return nil, utils.ErrUnauthorized
	}
	return &project, nil
}

// getOrCreateProjectSettings reads per-project compensation settings,
// creating the default row on first access.
func getOrCreateProjectSettings(db *gorm.DB, projectID int) (*models.ProjectSettings, error) {
	var settings models.ProjectSettings
	err := db.Where("project_id = ?", projectID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.WrapStoreError(err)
	}

	settings = models.ProjectSettings{
		ProjectID:                 projectID,
		ParticipationCompensation: models.DefaultParticipationCompensation,
	}
	if err := db.Create(&settings).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return &settings, nil
}
