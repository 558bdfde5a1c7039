package memory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	domain "github.com/homechef/api/internal/domain"
)

// ErrInvalidSeed is returned when a recipe file cannot be decoded into catalogue entries.
var ErrInvalidSeed = errors.New("memory: invalid recipe seed")

// RecipeDocument is the YAML form of a recipe. A file holds either one recipe at the top level or a
// list under "recipes":
//
//	recipes:
//	  - id: ndole
//	    name: Ndolé
//	    servings: 4
//	    prep_time: 30
//	    cook_time: 60
//	    ingredients:
//	      - {name: bitter leaves, quantity: 500, unit: g}
type RecipeDocument struct {
	ID          string               `yaml:"id,omitempty"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	Region      string               `yaml:"region,omitempty"`
	Difficulty  string               `yaml:"difficulty,omitempty"`
	Servings    int                  `yaml:"servings"`
	PrepTime    int                  `yaml:"prep_time"`
	CookTime    int                  `yaml:"cook_time"`
	Ingredients []IngredientDocument `yaml:"ingredients"`
	ImageURL    string               `yaml:"image_url,omitempty"`
	VideoURL    string               `yaml:"video_url,omitempty"`
}

// IngredientDocument is one recipe line in YAML form.
type IngredientDocument struct {
	ID       string  `yaml:"id,omitempty"`
	Name     string  `yaml:"name"`
	Quantity float64 `yaml:"quantity"`
	Unit     string  `yaml:"unit"`
}

type seedFile struct {
	Recipes        []RecipeDocument `yaml:"recipes,omitempty"`
	RecipeDocument `yaml:",inline"`
}

// DecodeRecipes parses a recipe file. Recipes without an ID get one derived from their name.
func DecodeRecipes(r io.Reader) ([]domain.Recipe, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrInvalidSeed)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	docs := file.Recipes
	if len(docs) == 0 {
		if strings.TrimSpace(file.Name) == "" {
			return nil, fmt.Errorf("%w: no recipes found", ErrInvalidSeed)
		}
		docs = []RecipeDocument{file.RecipeDocument}
	} else if strings.TrimSpace(file.Name) != "" {
		return nil, fmt.Errorf("%w: top-level recipe mixed with a recipes list", ErrInvalidSeed)
	}

	recipes := make([]domain.Recipe, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		recipe, err := doc.Recipe()
		if err != nil {
			return nil, fmt.Errorf("%w: recipe %d: %v", ErrInvalidSeed, i, err)
		}
		if _, dup := seen[recipe.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate recipe id %q", ErrInvalidSeed, recipe.ID)
		}
		seen[recipe.ID] = struct{}{}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// LoadRecipesFile reads and decodes the recipe file at path.
func LoadRecipesFile(path string) ([]domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: read recipes %s: %w", path, err)
	}
	return DecodeRecipes(bytes.NewReader(data))
}

// Recipe converts the document to a catalogue recipe. Quantities and times are not range checked
// here; the estimator rejects unusable recipes when asked to scale them.
func (d RecipeDocument) Recipe() (domain.Recipe, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return domain.Recipe{}, errors.New("name is required")
	}
	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = Slug(name)
	}
	if id == "" || strings.Contains(id, "/") {
		return domain.Recipe{}, fmt.Errorf("invalid id %q", id)
	}

	difficulty := domain.Difficulty(strings.ToLower(strings.TrimSpace(d.Difficulty)))
	switch difficulty {
	case "", domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return domain.Recipe{}, fmt.Errorf("unknown difficulty %q", d.Difficulty)
	}

	ingredients := make([]domain.Ingredient, 0, len(d.Ingredients))
	for i, ing := range d.Ingredients {
		ingID := strings.TrimSpace(ing.ID)
		if ingID == "" {
			ingID = fmt.Sprintf("%s-%d", id, i+1)
		}
		ingredients = append(ingredients, domain.Ingredient{
			ID:       ingID,
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}

	return domain.Recipe{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		Region:      strings.TrimSpace(d.Region),
		Difficulty:  difficulty,
		Servings:    d.Servings,
		PrepTime:    d.PrepTime,
		CookTime:    d.CookTime,
		Ingredients: ingredients,
		ImageURL:    strings.TrimSpace(d.ImageURL),
		VideoURL:    strings.TrimSpace(d.VideoURL),
	}, nil
}

// Slug lowercases name and joins its letter and digit runs with dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
