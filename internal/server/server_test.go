package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/server"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/internal/testhelpers"
	"github.com/pageza/culina-ai/backend/internal/types"
)

const jwtSecret = "test-secret"

const fencedRecipe = "```json\n" + `{
  "title": "Blanquette de veau",
  "description": "Un plat familial",
  "prep_time_minutes": "20 minutes",
  "cook_time_minutes": 90,
  "servings": 6,
  "difficulty": "moyen",
  "cuisine_type": "Française",
  "chef_tip": "Ne pas faire bouillir la sauce",
  "nutritional_info": {"calories": 450, "protein": 35, "carbs": 12, "fat": 28},
  "ingredients": [
    {"name": "Veau", "quantity": 1.2, "unit": "kg", "order_index": 0},
    {"name": "Carottes", "quantity": 3, "unit": "pièces", "order_index": 1},
    {"name": "Crème fraîche", "quantity": "20", "unit": "cl", "order_index": 2}
  ],
  "steps": [
    {"step_number": 1, "instruction": "Blanchir la viande."},
    {"step_number": 2, "instruction": "Ajouter les légumes et couvrir d'eau."},
    {"step_number": 3, "instruction": "Laisser mijoter 1h30."},
    {"step_number": 4, "instruction": "Lier la sauce à la crème."}
  ]
}` + "\n```"

type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
	auth    *service.AuthService
	reply   string
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		t:     t,
		db:    testhelpers.NewSQLiteDB(t),
		auth:  service.NewAuthService(jwtSecret),
		reply: fencedRecipe,
	}

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": env.reply}},
			},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(gateway.Close)

	cfg := &config.Config{
		ServerHost:            "127.0.0.1",
		ServerPort:            "0",
		CORSAllowedOrigins:    []string{"*"},
		JWTSecret:             jwtSecret,
		LLMAPIURL:             gateway.URL,
		LLMAPIKey:             "test-key",
		LLMModel:              "google/gemini-2.5-flash",
		LLMTimeout:            5 * time.Second,
		LLMMaxRetries:         0,
		QuotaMode:             mode,
		GenerationRatePerHour: 20,
	}
	srv := server.New(cfg, server.Dependencies{
		DB:       env.db,
		Registry: prometheus.NewRegistry(),
		Logger:   zap.NewNop(),
	})
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) token(userID uuid.UUID) string {
	token, err := e.auth.GenerateToken(userID, time.Hour)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) usageCount(userID uuid.UUID) int {
	var record models.UsageRecord
	err := e.db.Where("user_id = ? AND month = ?", userID, service.MonthKey(time.Now())).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(e.t, err)
	return record.GenerationCount
}

func (e *testEnv) recipeCount(userID uuid.UUID) int64 {
	var n int64
	require.NoError(e.t, e.db.Model(&models.Recipe{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func (e *testEnv) childCounts(recipeID uuid.UUID) (int64, int64) {
	var ingredients, steps int64
	require.NoError(e.t, e.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipeID).Count(&ingredients).Error)
	require.NoError(e.t, e.db.Model(&models.RecipeStep{}).Where("recipe_id = ?", recipeID).Count(&steps).Error)
	return ingredients, steps
}

var quotaModes = []string{config.QuotaModeAtomic, config.QuotaModeBaseline}

func TestGenerateRecipeFirstOfMonth(t *testing.T) {
	for _, mode := range quotaModes {
		t.Run(mode, func(t *testing.T) {
			env := newTestEnv(t, mode)
			userID := uuid.New()

			w := env.do(http.MethodPost, "/api/v1/generate-recipe", userID, map[string]string{
				"prompt": "une blanquette pour six",
				"userId": userID.String(),
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp types.GenerateRecipeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.False(t, resp.Degraded)
			require.NotEqual(t, uuid.Nil, resp.RecipeID)

			var recipe models.Recipe
			require.NoError(t, env.db.First(&recipe, "id = ?", resp.RecipeID).Error)
			assert.False(t, recipe.IsPublic)
			assert.Equal(t, userID, recipe.UserID)
			assert.Equal(t, 20, recipe.PrepTimeMinutes)
			assert.Equal(t, models.DifficultyMedium, recipe.Difficulty)

			ingredients, steps := env.childCounts(resp.RecipeID)
			assert.Equal(t, int64(3), ingredients)
			assert.Equal(t, int64(4), steps)
			assert.Equal(t, 1, env.usageCount(userID))
		})
	}
}

func TestGenerateRecipeQuotaExhausted(t *testing.T) {
	for _, mode := range quotaModes {
		t.Run(mode, func(t *testing.T) {
			env := newTestEnv(t, mode)
			userID := uuid.New()
			require.NoError(t, env.db.Create(&models.UsageRecord{
				UserID:          userID,
				Month:           service.MonthKey(time.Now()),
				GenerationCount: models.FreeMonthlyLimit,
				MonthlyLimit:    models.FreeMonthlyLimit,
			}).Error)

			w := env.do(http.MethodPost, "/api/v1/generate-recipe", userID, map[string]string{"prompt": "une tarte"})
			require.Equal(t, http.StatusForbidden, w.Code)

			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, service.MessageQuotaExceeded, resp.Error)
			assert.Equal(t, string(service.CodeQuotaExceeded), resp.Code)

			assert.Zero(t, env.recipeCount(userID))
			assert.Equal(t, models.FreeMonthlyLimit, env.usageCount(userID))
		})
	}
}

func TestGenerateRecipeProseOutput(t *testing.T) {
	for _, mode := range quotaModes {
		t.Run(mode, func(t *testing.T) {
			env := newTestEnv(t, mode)
			env.reply = "Voici une délicieuse recette de tarte : mélangez la farine et le beurre..."
			userID := uuid.New()

			w := env.do(http.MethodPost, "/api/v1/generate-recipe", userID, map[string]string{"prompt": "une tarte"})
			require.Equal(t, http.StatusInternalServerError, w.Code)

			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, service.MessageGenerationFailed, resp.Error)
			assert.Equal(t, string(service.CodeMalformedOutput), resp.Code)
			assert.NotContains(t, w.Body.String(), "délicieuse")

			assert.Zero(t, env.recipeCount(userID))
			assert.Zero(t, env.usageCount(userID))
		})
	}
}

func TestGenerateRecipeIngredientInsertFails(t *testing.T) {
	env := newTestEnv(t, config.QuotaModeAtomic)
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:fail_ingredients", func(tx *gorm.DB) {
		if tx.Statement.Table == "recipe_ingredients" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}))
	userID := uuid.New()

	w := env.do(http.MethodPost, "/api/v1/generate-recipe", userID, map[string]string{"prompt": "une blanquette"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.GenerateRecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Degraded)
	assert.Equal(t, "failed", resp.Ingredients)
	assert.Equal(t, "ok", resp.Steps)

	assert.Equal(t, int64(1), env.recipeCount(userID))
	ingredients, steps := env.childCounts(resp.RecipeID)
	assert.Zero(t, ingredients)
	assert.Equal(t, int64(4), steps)
	assert.Equal(t, 1, env.usageCount(userID))
}

func TestGenerateRecipeRequestChecks(t *testing.T) {
	env := newTestEnv(t, config.QuotaModeAtomic)
	userID := uuid.New()

	w := env.do(http.MethodPost, "/api/v1/generate-recipe", uuid.Nil, map[string]string{"prompt": "une tarte"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/generate-recipe", userID, map[string]string{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(service.CodeInvalidInput))

	w = env.do(http.MethodPost, "/api/v1/generate-recipe", userID, map[string]string{
		"prompt": "une tarte",
		"userId": uuid.NewString(),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Zero(t, env.usageCount(userID))
}

func TestRecipeLifecycle(t *testing.T) {
	env := newTestEnv(t, config.QuotaModeAtomic)
	owner := uuid.New()
	reader := uuid.New()

	w := env.do(http.MethodPost, "/api/v1/generate-recipe", owner, map[string]string{"prompt": "une blanquette"})
	require.Equal(t, http.StatusOK, w.Code)
	var generated types.GenerateRecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	recipePath := "/api/v1/recipes/" + generated.RecipeID.String()

	// private until published
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, recipePath, reader, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, recipePath, owner, nil).Code)

	w = env.do(http.MethodPatch, recipePath+"/visibility", reader, map[string]bool{"is_public": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(http.MethodPatch, recipePath+"/visibility", owner, map[string]bool{"is_public": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/recipes?q=blanquette", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed types.ListResponse[models.Recipe]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Items, 1)
	assert.Equal(t, generated.RecipeID, feed.Items[0].ID)
	assert.Equal(t, service.DefaultPageSize, feed.Limit)

	w = env.do(http.MethodGet, recipePath+"/cooking", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cooking types.CookingMode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cooking))
	assert.Equal(t, 4, cooking.TotalSteps)
	assert.Equal(t, "Blanchir la viande.", cooking.Steps[0].Instruction)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, recipePath+"/favorite", reader, nil).Code)
	w = env.do(http.MethodGet, recipePath, reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail types.RecipeDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.True(t, detail.IsFavorite)
	assert.Len(t, detail.Ingredients, 3)

	w = env.do(http.MethodGet, "/api/v1/me/favorites", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), generated.RecipeID.String())

	w = env.do(http.MethodPost, recipePath+"/comments", reader, map[string]string{"body": "Excellent !"})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))

	w = env.do(http.MethodGet, recipePath+"/comments", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Excellent !")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, "/api/v1/comments/"+comment.ID.String(), owner, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/v1/comments/"+comment.ID.String(), reader, nil).Code)

	w = env.do(http.MethodGet, "/api/v1/me/recipes", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), generated.RecipeID.String())

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/recipes/not-a-uuid", owner, nil).Code)
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t, config.QuotaModeAtomic)
	userID := uuid.New()

	w := env.do(http.MethodGet, "/api/v1/me/preferences", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dietary_restrictions":[],"allergies":[]}`, w.Body.String())

	w = env.do(http.MethodPut, "/api/v1/me/preferences", userID, map[string][]string{
		"dietary_restrictions": {"végétarien"},
		"allergies":            {"noix", " "},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dietary_restrictions":["végétarien"],"allergies":["noix"]}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/me/usage", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage types.UsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, service.MonthKey(time.Now()), usage.Month)
	assert.Equal(t, models.FreeMonthlyLimit, usage.Remaining)
	assert.False(t, usage.Unlimited)

	w = env.do(http.MethodGet, "/api/v1/me/subscription", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscription_tier":"free"`)

	w = env.do(http.MethodPost, "/api/v1/me/subscription/upgrade", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscription_tier":"pro"`)

	w = env.do(http.MethodGet, "/api/v1/me/usage", userID, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.True(t, usage.Unlimited)
	assert.Equal(t, models.ProMonthlyLimit, usage.MonthlyLimit)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, config.QuotaModeAtomic)

	w := env.do(http.MethodGet, "/health", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	env.do(http.MethodGet, "/api/v1/recipes", uuid.Nil, nil)

	w = env.do(http.MethodGet, "/metrics", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "culina_http_requests_total"))
}

func TestImageUploadDisabledWithoutStorage(t *testing.T) {
	env := newTestEnv(t, config.QuotaModeAtomic)
	owner := uuid.New()
	recipe := testhelpers.CreateRecipe(t, env.db, owner, "Tarte Tatin", false)

	w := env.do(http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/image", owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
