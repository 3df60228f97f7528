package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/culina-ai/backend/internal/models"
)

// FlexInt decodes a JSON number or a numeric string such as "15" or "15 minutes"
type FlexInt int

// UnmarshalJSON accepts numbers, numeric strings and null
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	v, err := decodeFlexNumber(data)
	if err != nil {
		return err
	}
	v = math.Round(v)
	if v > math.MaxInt32 || v < math.MinInt32 {
		return fmt.Errorf("number %g out of range", v)
	}
	*f = FlexInt(v)
	return nil
}

// FlexFloat decodes a JSON number or a numeric string such as "1,5" or "1/2"
type FlexFloat float64

// UnmarshalJSON accepts numbers, numeric strings and null
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	v, err := decodeFlexNumber(data)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)\s*/\s*(\d+)|^\s*(\d+(?:[.,]\d+)?)`)

func decodeFlexNumber(data []byte) (float64, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		return num, nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return 0, fmt.Errorf("expected a number, got %s", string(data))
	}

	// free text such as "au goût" carries no quantity
	m := leadingNumber.FindStringSubmatch(str)
	if m == nil {
		return 0, nil
	}
	if m[1] != "" {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0, nil
		}
		return num / den, nil
	}
	return strconv.ParseFloat(strings.Replace(m[3], ",", ".", 1), 64)
}

// NutritionPayload is the nutrition block as the model writes it
type NutritionPayload struct {
	Calories FlexFloat `json:"calories"`
	Protein  FlexFloat `json:"protein"`
	Carbs    FlexFloat `json:"carbs"`
	Fat      FlexFloat `json:"fat"`
}

// IngredientPayload is one ingredient as the model writes it
type IngredientPayload struct {
	Name       string    `json:"name" validate:"required,max=255"`
	Quantity   FlexFloat `json:"quantity"`
	Unit       string    `json:"unit" validate:"max=50"`
	OrderIndex FlexInt   `json:"order_index"`
}

// StepPayload is one step as the model writes it
type StepPayload struct {
	StepNumber  FlexInt `json:"step_number" validate:"gte=1"`
	Instruction string  `json:"instruction" validate:"required"`
}

// RecipePayload is the structured recipe extracted from model output
type RecipePayload struct {
	Title           string              `json:"title" validate:"required,max=255"`
	Description     string              `json:"description"`
	PrepTimeMinutes FlexInt             `json:"prep_time_minutes" validate:"gte=0"`
	CookTimeMinutes FlexInt             `json:"cook_time_minutes" validate:"gte=0"`
	Servings        FlexInt             `json:"servings" validate:"gte=0"`
	Difficulty      string              `json:"difficulty"`
	CuisineType     string              `json:"cuisine_type" validate:"max=100"`
	ChefTip         string              `json:"chef_tip"`
	NutritionalInfo *NutritionPayload   `json:"nutritional_info"`
	Ingredients     []IngredientPayload `json:"ingredients" validate:"dive"`
	Steps           []StepPayload       `json:"steps" validate:"required,min=1,dive"`
}

// fenceRule removes one markdown fence form around the payload
type fenceRule struct {
	prefix string
	suffix string
}

// Applied in order, first matching prefix wins. "```json" must come before "```".
var fenceRules = []fenceRule{
	{prefix: "```json"},
	{prefix: "```"},
	{suffix: "```"},
}

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// Extract turns raw model text into a validated RecipePayload.
// Every failure is a *MalformedOutputError carrying the raw text.
func Extract(raw string) (*RecipePayload, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("empty output")}
	}
	if text[0] != '{' {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("output is not a JSON object")}
	}

	var payload RecipePayload
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&payload); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: fmt.Errorf("failed to decode recipe: %w", err)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedOutputError{Raw: raw, Err: errors.New("trailing content after JSON object")}
	}

	payload.normalize()
	if err := payloadValidator.Struct(&payload); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: fmt.Errorf("invalid recipe: %w", err)}
	}

	return &payload, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	prefixDone := false
	for _, rule := range fenceRules {
		if rule.prefix != "" && !prefixDone && strings.HasPrefix(text, rule.prefix) {
			text = strings.TrimPrefix(text, rule.prefix)
			prefixDone = true
		}
		if rule.suffix != "" && strings.HasSuffix(text, rule.suffix) {
			text = strings.TrimSuffix(text, rule.suffix)
		}
	}
	return strings.TrimSpace(text)
}

var difficultyAliases = map[string]string{
	"easy":      models.DifficultyEasy,
	"facile":    models.DifficultyEasy,
	"medium":    models.DifficultyMedium,
	"moyen":     models.DifficultyMedium,
	"moyenne":   models.DifficultyMedium,
	"hard":      models.DifficultyHard,
	"difficile": models.DifficultyHard,
}

func (p *RecipePayload) normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.CuisineType = strings.TrimSpace(p.CuisineType)

	d := strings.ToLower(strings.TrimSpace(p.Difficulty))
	if mapped, ok := difficultyAliases[d]; ok {
		d = mapped
	} else if d != "" {
		d = models.DifficultyMedium
	}
	p.Difficulty = d

	for i := range p.Ingredients {
		p.Ingredients[i].Name = strings.TrimSpace(p.Ingredients[i].Name)
		p.Ingredients[i].Unit = strings.TrimSpace(p.Ingredients[i].Unit)
	}
	for i := range p.Steps {
		p.Steps[i].Instruction = strings.TrimSpace(p.Steps[i].Instruction)
	}
}

// ToRecipe maps the payload onto a private recipe header owned by userID
func (p *RecipePayload) ToRecipe() *models.Recipe {
	recipe := &models.Recipe{
		Title:           p.Title,
		Description:     p.Description,
		PrepTimeMinutes: int(p.PrepTimeMinutes),
		CookTimeMinutes: int(p.CookTimeMinutes),
		Servings:        int(p.Servings),
		Difficulty:      p.Difficulty,
		CuisineType:     p.CuisineType,
		ChefTip:         p.ChefTip,
		IsPublic:        false,
	}
	if n := p.NutritionalInfo; n != nil {
		recipe.NutritionalInfo = &models.NutritionalInfo{
			Calories: float64(n.Calories),
			Protein:  float64(n.Protein),
			Carbs:    float64(n.Carbs),
			Fat:      float64(n.Fat),
		}
	}
	return recipe
}
