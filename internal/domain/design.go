package domain

// Positions inside DesignPackage.Images.
const (
	ImageExterior = 0
	ImageInterior = 1
)

// ShoppingListItem is one suggested furniture or decor piece.
type ShoppingListItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceRange  string `json:"priceRange"`
}

// Plan pairs a floor plan description with its rendered image reference.
type Plan struct {
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// DesignPackage aggregates every asset produced by one successful run.
// VideoURL is empty when video generation was skipped.
type DesignPackage struct {
	Images            []string           `json:"images"`
	VideoURL          string             `json:"videoUrl,omitempty"`
	WalkthroughScript string             `json:"walkthroughScript"`
	ShoppingList      []ShoppingListItem `json:"shoppingList"`
	Plan2D            Plan               `json:"plan2D"`
	Plan3D            Plan               `json:"plan3D"`
}

func (p *DesignPackage) HasVideo() bool {
	return p != nil && p.VideoURL != ""
}

// GenerationStatus is the progress view shown while a run is in flight.
type GenerationStatus struct {
	Stage    string   `json:"stage"`
	Messages []string `json:"messages"`
}
