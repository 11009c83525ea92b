package catalog

import "github.com/avolkov/wardrobe/internal/server/models"

// defaultSections are the shared sections every account starts with. They
// are seeded once with a nil owner and cannot be deleted; their seed
// categories cannot be removed either.
var defaultSections = []models.Section{
	{Name: "Jewelry", Categories: []string{"Earrings", "Necklaces", "Bracelets", "Rings", "Anklets"}},
	{Name: "Dresses", Categories: []string{"Casual", "Party", "Traditional", "Formal", "Summer"}},
	{Name: "Accessories", Categories: []string{"Bags", "Belts", "Scarves", "Watches", "Hats"}},
	{Name: "Shoes", Categories: []string{"Sneakers", "Heels", "Flats", "Boots", "Sandals"}},
}

func isDefaultCategory(section, category string) bool {
	for _, s := range defaultSections {
		if s.Name != section {
			continue
		}
		for _, c := range s.Categories {
			if c == category {
				return true
			}
		}
	}
	return false
}
