package handlers

import (
	"errors"
	"net/http"

	"mycodash/internal/models"
	"mycodash/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileRequest is an exported model for Swagger docs of the profile payload.
type ProfileRequest struct {
	Name             string  `json:"name" example:"Oyster"`
	Icon             string  `json:"icon" example:"🍄"`
	MinHumidity      float64 `json:"minHumidity" example:"85"`
	MaxHumidity      float64 `json:"maxHumidity" example:"95"`
	MinTemperature   float64 `json:"minTemperature" example:"18"`
	MaxTemperature   float64 `json:"maxTemperature" example:"24"`
	FreshAirInterval int     `json:"freshAirInterval" example:"60"`
	FreshAirDuration int     `json:"freshAirDuration" example:"120"`
	FoggerMaxOnTime  int     `json:"foggerMaxOnTime" example:"300"`
}

// profileListResponse bundles the profile set with its reconciliation state.
type profileListResponse struct {
	Profiles        []models.Profile `json:"profiles"`
	ActiveProfileID string           `json:"activeProfileId"`
	Degraded        bool             `json:"degraded"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// @Summary      List grow profiles
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  profileListResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profiles [get]
func (h *Handler) listProfiles(c *gin.Context) {
	uid := userID(c)
	profiles, activeID, err := h.services.Profiles.List(c.Request.Context(), uid)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load profiles", "profiles_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, profileListResponse{
		Profiles:        profiles,
		ActiveProfileID: activeID,
		Degraded:        h.services.Profiles.Degraded(uid),
		Warnings:        h.services.Profiles.Warnings(uid),
	})
}

// @Summary      Create a grow profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        body  body  ProfileRequest  true  "profile settings"
// @Success      200  {object}  models.Profile
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profiles [post]
func (h *Handler) createProfile(c *gin.Context) {
	var input models.Profile
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	created, err := h.services.Profiles.Create(c.Request.Context(), userID(c), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, created)
}

// @Summary      Update a grow profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "profile id"
// @Param        body  body  ProfileRequest  true  "profile settings"
// @Success      200  {object}  models.Profile
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profiles/{id} [put]
func (h *Handler) updateProfile(c *gin.Context) {
	var input models.Profile
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	input.ID = c.Param("id")

	updated, err := h.services.Profiles.Update(c.Request.Context(), userID(c), input)
	if err != nil {
		h.profileError(c, err, "profile_update_failed")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// @Summary      Delete a grow profile
// @Tags         profiles
// @Produce      json
// @Param        id  path  string  true  "profile id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profiles/{id} [delete]
func (h *Handler) deleteProfile(c *gin.Context) {
	if err := h.services.Profiles.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.profileError(c, err, "profile_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Activate a grow profile
// @Tags         profiles
// @Produce      json
// @Param        id  path  string  true  "profile id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profiles/{id}/activate [post]
func (h *Handler) activateProfile(c *gin.Context) {
	if err := h.services.Profiles.Activate(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.profileError(c, err, "profile_activate_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// profileError maps profile domain errors onto HTTP codes.
func (h *Handler) profileError(c *gin.Context, err error, logKey string) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, service.ErrBuiltinProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "profile operation failed", logKey, err)
	}
}
