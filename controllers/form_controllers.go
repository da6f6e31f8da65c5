package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/utils"
)

// FormController menangani borang hubungi kami di laman awam dan
// pengurusan mesej di dashboard admin.
type FormController struct {
	DB *gorm.DB
}

// NewFormController membuat instance baru FormController
func NewFormController(db *gorm.DB) *FormController {
	return &FormController{DB: db}
}

// SubmitForm menerima mesej dari borang hubungi awam.
func (fc *FormController) SubmitForm(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Phone   string `json:"phone"`
		Subject string `json:"subject"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	submission := models.FormSubmission{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Subject: input.Subject,
		Message: input.Message,
	}
	if err := fc.DB.Create(&submission).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Message received", gin.H{"id": submission.ID})
}

// ListSubmissions senarai mesej untuk admin, belum dibaca dahulu.
func (fc *FormController) ListSubmissions(c *gin.Context) {
	var submissions []models.FormSubmission
	if err := fc.DB.Order("`read` ASC, created_at DESC").Find(&submissions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "OK", submissions)
}

// MarkSubmissionRead menandakan mesej sebagai sudah dibaca.
func (fc *FormController) MarkSubmissionRead(c *gin.Context) {
	var submission models.FormSubmission
	if err := fc.DB.First(&submission, c.Param("submission_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("submission not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := fc.DB.Model(&submission).Update("read", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Marked as read", nil)
}
