package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Catalog values offered by the design form.
var (
	Orientations    = []string{"North", "South", "East", "West"}
	Styles          = []string{"Modern", "Traditional", "Eco-Friendly", "Minimalist", "Luxury", "Scandinavian", "Bohemian"}
	OutdoorFeatures = []string{"Garden", "Swimming Pool", "Patio", "Rooftop Terrace", "Balcony", "Outdoor Kitchen"}
	SpecialRooms    = []string{"Home Office", "Gym", "Home Theatre", "Prayer Room", "Maid's Room", "Library", "Kids Playroom"}
)

const (
	catalogOrientation = "orientation"
	catalogStyle       = "style"
	catalogOutdoor     = "outdoor"
	catalogRoom        = "room"
)

var catalogs = map[string][]string{
	catalogOrientation: Orientations,
	catalogStyle:       Styles,
	catalogOutdoor:     OutdoorFeatures,
	catalogRoom:        SpecialRooms,
}

// Count is a positive room or floor count. The form submits these as
// strings, so both JSON numbers and numeric strings are accepted.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Count(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be a number: %w", err)
	}
	return c.parse(s)
}

func (c *Count) UnmarshalYAML(node *yaml.Node) error {
	return c.parse(node.Value)
}

func (c *Count) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("count %q is not an integer", s)
	}
	*c = Count(n)
	return nil
}

func (c Count) String() string {
	return strconv.Itoa(int(c))
}

// HouseSpec is the structured description submitted for a generation run.
type HouseSpec struct {
	PlotDimensions    string   `json:"plotDimensions" yaml:"plotDimensions" validate:"required,max=1000"`
	Orientation       string   `json:"orientation" yaml:"orientation" validate:"required,catalog=orientation"`
	Floors            Count    `json:"floors" yaml:"floors" validate:"min=1,max=200"`
	Bedrooms          Count    `json:"bedrooms" yaml:"bedrooms" validate:"min=1,max=200"`
	Bathrooms         Count    `json:"bathrooms" yaml:"bathrooms" validate:"min=1,max=200"`
	Style             string   `json:"style" yaml:"style" validate:"required,catalog=style"`
	OutdoorFeatures   []string `json:"outdoorFeatures" yaml:"outdoorFeatures" validate:"unique,dive,catalog=outdoor"`
	SpecialRooms      []string `json:"specialRooms" yaml:"specialRooms" validate:"unique,dive,catalog=room"`
	AdditionalDetails string   `json:"additionalDetails" yaml:"additionalDetails" validate:"max=20000"`
}

// DefaultHouseSpec mirrors the initial state of the design form.
func DefaultHouseSpec() HouseSpec {
	return HouseSpec{
		PlotDimensions:  "40x60 feet",
		Orientation:     "North",
		Floors:          2,
		Bedrooms:        3,
		Bathrooms:       3,
		Style:           "Modern",
		OutdoorFeatures: []string{"Garden", "Swimming Pool"},
		SpecialRooms:    []string{"Home Office"},
	}
}

var (
	validate    *validator.Validate
	validateErr error
	once        sync.Once
)

// Normalize canonicalises catalog values case-insensitively and drops
// duplicate set entries keeping the first occurrence. Free text is only
// trimmed.
func (h *HouseSpec) Normalize() {
	if h == nil {
		return
	}
	h.PlotDimensions = strings.TrimSpace(h.PlotDimensions)
	h.Orientation = canonical(catalogOrientation, h.Orientation)
	h.Style = canonical(catalogStyle, h.Style)
	h.OutdoorFeatures = canonicalSet(catalogOutdoor, h.OutdoorFeatures)
	h.SpecialRooms = canonicalSet(catalogRoom, h.SpecialRooms)
	h.AdditionalDetails = strings.TrimSpace(h.AdditionalDetails)
}

// Validate reports every violated field as a *ValidationError.
func (h HouseSpec) Validate() error {
	v, err := validatorInstance()
	if err != nil {
		return err
	}
	err = v.Struct(h)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidHouseSpec, err)
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

// Clone returns a copy that shares no slices with h.
func (h HouseSpec) Clone() HouseSpec {
	out := h
	out.OutdoorFeatures = append([]string(nil), h.OutdoorFeatures...)
	out.SpecialRooms = append([]string(nil), h.SpecialRooms...)
	return out
}

func validatorInstance() (*validator.Validate, error) {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("catalog", validateCatalog); err != nil {
			validateErr = fmt.Errorf("register catalog validation: %w", err)
			return
		}
		validate = v
	})
	return validate, validateErr
}

func validateCatalog(fl validator.FieldLevel) bool {
	values, ok := catalogs[fl.Param()]
	if !ok {
		return false
	}
	value := fl.Field().String()
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	case "catalog":
		return fmt.Sprintf("%q is not one of %s", fmt.Sprint(fe.Value()), strings.Join(catalogs[fe.Param()], ", "))
	default:
		return "failed " + fe.Tag()
	}
}

func canonical(catalog, value string) string {
	value = strings.TrimSpace(value)
	fold := cases.Fold()
	key := fold.String(value)
	for _, candidate := range catalogs[catalog] {
		if fold.String(candidate) == key {
			return candidate
		}
	}
	return value
}

func canonicalSet(catalog string, values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = canonical(catalog, v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
