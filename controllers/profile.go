package controllers

import (
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// UpdateProfileInput defines the expected JSON structure for the business profile
type UpdateProfileInput struct {
	Name                   *string `json:"name"`
	Phone                  *string `json:"phone"`
	BusinessName           *string `json:"businessName"`
	HasCompletedOnboarding *bool   `json:"hasCompletedOnboarding"`
}

// GetProfile returns the authenticated user's business profile
func GetProfile(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                     user.ID,
		"email":                  user.Email,
		"name":                   user.Name,
		"phone":                  user.Phone,
		"businessName":           user.BusinessName,
		"hasCompletedOnboarding": user.HasCompletedOnboarding,
	})
}

// UpdateProfile updates the business profile
func UpdateProfile(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		user.Phone = *input.Phone
	}
	if input.BusinessName != nil {
		user.BusinessName = *input.BusinessName
	}
	if input.HasCompletedOnboarding != nil {
		user.HasCompletedOnboarding = *input.HasCompletedOnboarding
	}

	if err := config.DB.Save(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                     user.ID,
		"email":                  user.Email,
		"name":                   user.Name,
		"phone":                  user.Phone,
		"businessName":           user.BusinessName,
		"hasCompletedOnboarding": user.HasCompletedOnboarding,
	})
}
