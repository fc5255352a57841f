package generators

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"homedesign/internal/domain"
	"homedesign/internal/prompt"
	"homedesign/internal/providers/gemini"
)

// ShoppingListSchema is the response schema sent with the shopping list
// request: an array of objects with three required string fields.
func ShoppingListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":        {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"priceRange":  {Type: genai.TypeString},
			},
			Required: []string{"name", "description", "priceRange"},
		},
	}
}

// ShoppingList asks for furniture suggestions as JSON. A failed call is
// returned as an error, but an unparseable response only logs a warning and
// yields an empty list.
func (g *Generators) ShoppingList(ctx context.Context, brief string) ([]domain.ShoppingListItem, error) {
	raw, err := g.provider.GenerateText(ctx, gemini.TextRequest{
		Prompt: prompt.ShoppingList(brief),
		Schema: ShoppingListSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("shopping list: %w", err)
	}
	items, err := DecodeShoppingList(raw)
	if err != nil {
		g.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("shopping list response is not valid JSON; continuing with an empty list")
		return []domain.ShoppingListItem{}, nil
	}
	return items, nil
}

// EncodeShoppingList serialises items in the provider response shape.
func EncodeShoppingList(items []domain.ShoppingListItem) ([]byte, error) {
	if items == nil {
		items = []domain.ShoppingListItem{}
	}
	return json.Marshal(items)
}

// DecodeShoppingList parses a provider response, tolerating code fences and
// surrounding prose. Item order is preserved.
func DecodeShoppingList(raw string) ([]domain.ShoppingListItem, error) {
	fragment := prompt.ExtractJSONFragment(raw)
	if fragment == "" {
		return nil, fmt.Errorf("empty shopping list response")
	}
	var items []domain.ShoppingListItem
	if err := json.Unmarshal([]byte(fragment), &items); err != nil {
		return nil, fmt.Errorf("decode shopping list: %w", err)
	}
	if items == nil {
		items = []domain.ShoppingListItem{}
	}
	return items, nil
}
