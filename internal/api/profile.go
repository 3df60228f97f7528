package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/internal/types"
)

const messageProfileFailed = "Impossible de charger le profil"

// ProfileHandler serves the user's preferences, plan and usage
type ProfileHandler struct {
	preferences   service.IPreferenceService
	subscriptions service.ISubscriptionService
	usage         service.UsageReader
	auth          middleware.TokenValidator
	logger        *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(
	preferences service.IPreferenceService,
	subscriptions service.ISubscriptionService,
	usage service.UsageReader,
	auth middleware.TokenValidator,
	logger *zap.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		preferences:   preferences,
		subscriptions: subscriptions,
		usage:         usage,
		auth:          auth,
		logger:        logger.Named("api.profile"),
	}
}

// RegisterRoutes registers the /me routes
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me", middleware.AuthMiddleware(h.auth))
	{
		me.GET("/preferences", h.GetPreferences)
		me.PUT("/preferences", h.UpdatePreferences)
		me.GET("/subscription", h.GetSubscription)
		me.POST("/subscription/upgrade", h.UpgradeSubscription)
		me.GET("/usage", h.GetUsage)
	}
}

// GetPreferences returns the user's dietary restrictions and allergies
func (h *ProfileHandler) GetPreferences(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	prefs, err := h.preferences.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, messageProfileFailed)
		return
	}
	c.JSON(http.StatusOK, withEmptyLists(prefs))
}

// UpdatePreferences replaces the user's dietary restrictions and allergies
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	prefs, err := h.preferences.Save(c.Request.Context(), userID, req.DietaryRestrictions, req.Allergies)
	if err != nil {
		respondError(c, h.logger, err, messageProfileFailed)
		return
	}
	c.JSON(http.StatusOK, withEmptyLists(prefs))
}

// GetSubscription returns the user's plan
func (h *ProfileHandler) GetSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sub, err := h.subscriptions.GetSubscription(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, messageProfileFailed)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpgradeSubscription moves the user to the pro plan
func (h *ProfileHandler) UpgradeSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	sub, err := h.subscriptions.Upgrade(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Impossible de mettre à jour l'abonnement")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GetUsage reports this month's generations
func (h *ProfileHandler) GetUsage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	record, err := h.usage.Usage(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, messageProfileFailed)
		return
	}
	c.JSON(http.StatusOK, types.UsageResponse{
		Month:           record.Month,
		GenerationCount: record.GenerationCount,
		MonthlyLimit:    record.MonthlyLimit,
		Remaining:       record.Remaining(),
		Unlimited:       record.MonthlyLimit >= models.ProMonthlyLimit,
	})
}

// withEmptyLists makes absent lists encode as [] rather than null
func withEmptyLists(p *service.Preferences) service.Preferences {
	out := *p
	if out.Restrictions == nil {
		out.Restrictions = []string{}
	}
	if out.Allergies == nil {
		out.Allergies = []string{}
	}
	return out
}
