package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amanahfoundation/charity-backend/services"
	"github.com/amanahfoundation/charity-backend/utils"
)

// respondServiceError memetakan ralat sentinel dari lapisan service ke
// status HTTP yang sesuai.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrState), errors.Is(err, services.ErrStateConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrGateway), errors.Is(err, services.ErrDelivery):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
