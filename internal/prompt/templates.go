package prompt

import "fmt"

// ShoppingListSize is the number of items requested from the model.
const ShoppingListSize = 5

func ExteriorImage(brief string) string {
	return fmt.Sprintf("Photorealistic, ultra-detailed exterior view of a %s. Cinematic lighting, 8k resolution.", brief)
}

func InteriorImage(brief string) string {
	return fmt.Sprintf("Photorealistic, ultra-detailed interior view of the living room and kitchen area of a %s. Natural lighting, warm and inviting, 8k resolution.", brief)
}

func Video(brief string) string {
	return fmt.Sprintf("An aerial and cinematic 3D architectural walkthrough video tour of a %s. Show the exterior, then smoothly transition inside to showcase the main living areas. Hyperrealistic rendering.", brief)
}

func WalkthroughScript(brief string) string {
	return fmt.Sprintf("You are a professional and eloquent real estate agent. Write a compelling and descriptive voice-guided walkthrough script for a home with the following features: %s. The script should be around 150 words and highlight the key selling points in an engaging tone.", brief)
}

func ShoppingList(brief string) string {
	return fmt.Sprintf("Based on the following home design, suggest a list of %d key furniture and decor items that would fit the style perfectly. For each item, provide a name, a brief description, and a price range.\nHome Design: %s", ShoppingListSize, brief)
}

func Plan2DDescription(brief string) string {
	return fmt.Sprintf("Provide a detailed textual description of a 2D floor plan for the ground floor of a home with these features: %s. Describe the layout, room placement, approximate dimensions, and flow. Use clear, architectural language.", brief)
}

func Plan2DImage(brief string) string {
	return fmt.Sprintf("Create a detailed, black and white 2D architectural floor plan blueprint for a house with the following features: %s. Top-down view, clean lines, room labels, architectural style. Minimalist and clear.", brief)
}

func Plan3DDescription(brief string) string {
	return fmt.Sprintf("Provide a descriptive overview of a 3D floor plan for a home with these features: %s. Describe the furnished layout from a dollhouse perspective, highlighting the spatial relationships and interior design style.", brief)
}

func Plan3DImage(brief string) string {
	return fmt.Sprintf("Generate a photorealistic 3D floor plan of a house with the following features: %s. Dollhouse view, cutaway walls, furnished rooms, realistic lighting, 4K resolution.", brief)
}
