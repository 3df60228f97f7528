package types

// GenerateRecipeRequest represents the request body for generating a recipe
type GenerateRecipeRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"userId"`
}

// UpdatePreferencesRequest represents the onboarding / preferences body
type UpdatePreferencesRequest struct {
	DietaryRestrictions []string `json:"dietary_restrictions" binding:"max=50,dive,max=100"`
	Allergies           []string `json:"allergies" binding:"max=50,dive,max=100"`
}

// UpdateVisibilityRequest toggles whether a recipe is in the public feed
type UpdateVisibilityRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

// CreateCommentRequest represents the request body for commenting on a recipe
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=1000"`
}

// ListQuery holds the paging and search parameters of list endpoints
type ListQuery struct {
	Query  string `form:"q"`
	Limit  int    `form:"limit,default=20" binding:"min=0"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}
