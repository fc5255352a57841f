// Package prompt turns a HouseSpec into the natural-language brief shared by
// every generator, and wraps that brief in the per-asset instructions.
package prompt

import (
	"fmt"
	"strings"

	"homedesign/internal/domain"
)

const none = "None"

// Build renders the design brief for spec. It never fails and is
// deterministic for equal inputs.
func Build(spec domain.HouseSpec) string {
	lines := []string{
		"Design a home based on the following specifications:",
		fmt.Sprintf("- Plot Dimensions: %s", spec.PlotDimensions),
		fmt.Sprintf("- Plot Orientation (Facing): %s", spec.Orientation),
		fmt.Sprintf("- Number of Floors: %d", spec.Floors),
		fmt.Sprintf("- Bedrooms: %d", spec.Bedrooms),
		fmt.Sprintf("- Bathrooms: %d", spec.Bathrooms),
		fmt.Sprintf("- Architectural Style: %s", spec.Style),
		fmt.Sprintf("- Outdoor Features: %s", joinOrNone(spec.OutdoorFeatures)),
		fmt.Sprintf("- Special Rooms: %s", joinOrNone(spec.SpecialRooms)),
		fmt.Sprintf("- Additional Details: %s", orNone(spec.AdditionalDetails)),
		"",
		"The design should be cohesive, functional, and aesthetically pleasing, reflecting the specified style and considering the plot's orientation for optimal natural light.",
	}
	return strings.Join(lines, "\n")
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return none
	}
	return strings.Join(values, ", ")
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return none
	}
	return value
}
