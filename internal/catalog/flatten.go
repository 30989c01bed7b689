package catalog

// Listing is a product together with where it sits in the tree.
type Listing struct {
	Product
	BrandName     string `json:"brandName"`
	CategoryID    int64  `json:"categoryId"`
	SubCategoryID int64  `json:"subCategoryId,omitempty"`
}

// DirectBrands returns the category's own brands minus any brand that is
// also reachable through one of its subcategories.
func DirectBrands(c Category) []Brand {
	if len(c.Brands) == 0 {
		return nil
	}
	viaSub := make(map[int64]struct{})
	for _, sub := range c.SubCategories {
		for _, b := range sub.Brands {
			viaSub[b.ID] = struct{}{}
		}
	}
	out := make([]Brand, 0, len(c.Brands))
	for _, b := range c.Brands {
		if _, ok := viaSub[b.ID]; ok {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Flatten walks categories in order, visiting each category's direct brands
// before its subcategories' brands. A product met twice keeps its first
// position but takes the data of the last occurrence.
func Flatten(categories []Category) []Listing {
	var out []Listing
	index := make(map[int64]int)
	add := func(l Listing) {
		if i, ok := index[l.ID]; ok {
			out[i] = l
			return
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	for _, c := range categories {
		for _, b := range DirectBrands(c) {
			for _, p := range b.Products {
				add(Listing{Product: p, BrandName: b.Name, CategoryID: c.ID})
			}
		}
		for _, sub := range c.SubCategories {
			for _, b := range sub.Brands {
				for _, p := range b.Products {
					add(Listing{Product: p, BrandName: b.Name, CategoryID: c.ID, SubCategoryID: sub.ID})
				}
			}
		}
	}
	return out
}

// FindCategory returns the category with id.
func FindCategory(categories []Category, id int64) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
