package model

// TestStructure lists a product's expected sections. The completeness
// gate refuses diagnostic and practice insights until every listed
// section has a completed session.
type TestStructure struct {
	ProductType string
	Sections    []string
}

// productStructures is the static per-product table. Section names here
// must match the catalog exactly.
var productStructures = map[string]TestStructure{
	"vic_selective": {
		ProductType: "vic_selective",
		Sections: []string{
			"Reading Reasoning",
			"Mathematics Reasoning",
			"General Ability - Verbal",
			"General Ability - Quantitative",
			"Writing",
		},
	},
	"nsw_selective": {
		ProductType: "nsw_selective",
		Sections: []string{
			"Reading",
			"Mathematical Reasoning",
			"Thinking Skills",
			"Writing",
		},
	},
	"edutest_scholarship": {
		ProductType: "edutest_scholarship",
		Sections: []string{
			"Verbal Reasoning",
			"Numerical Reasoning",
			"Reading Comprehension",
			"Mathematics",
			"Written Expression",
		},
	},
	"acer_scholarship": {
		ProductType: "acer_scholarship",
		Sections: []string{
			"Humanities",
			"Mathematics",
			"Written Expression",
		},
	},
}

// StructureFor returns the expected section list for a product.
func StructureFor(productType string) (TestStructure, bool) {
	ts, ok := productStructures[productType]
	return ts, ok
}

// KnownProducts returns all configured product types.
func KnownProducts() []string {
	products := make([]string, 0, len(productStructures))
	for p := range productStructures {
		products = append(products, p)
	}
	return products
}
