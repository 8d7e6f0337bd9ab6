package pathfinder

import "slices"

// Category constants used by the templates.
const (
	CategoryGene    = "biolink:Gene"
	CategoryCell    = "biolink:Cell"
	CategoryDrug    = "biolink:Drug"
	CategoryDisease = "biolink:Disease"
)

type categoryPair struct {
	Subject string
	Object  string
}

// predicateTable lists, for an ordered pair of categories, the predicates a
// template edge between them is constrained to. Order is significant: it is
// the order rendered in template logs.
var predicateTable = map[categoryPair][]string{
	{CategoryDrug, CategoryGene}: {
		"biolink:affects",
		"biolink:interacts_with",
		"biolink:occurs_together_in_literature_with",
	},
	{CategoryGene, CategoryDrug}: {
		"biolink:affected_by",
		"biolink:interacts_with",
		"biolink:occurs_together_in_literature_with",
	},
	{CategoryGene, CategoryDisease}: {
		"biolink:gene_associated_with_condition",
		"biolink:biomarker_for",
		"biolink:affects",
		"biolink:contributes_to",
	},
	{CategoryDisease, CategoryGene}: {
		"biolink:condition_associated_with_gene",
		"biolink:has_biomarker",
		"biolink:affected_by",
		"biolink:has_contributor",
	},
	{CategoryGene, CategoryGene}: {
		"biolink:regulates",
		"biolink:regulated_by",
		"biolink:affects",
		"biolink:affected_by",
		"biolink:interacts_with",
		"biolink:occurs_together_in_literature_with",
	},
	{CategoryGene, CategoryCell}: {
		"biolink:affects",
		"biolink:produced_by",
		"biolink:located_in",
		"biolink:part_of",
		"biolink:interacts_with",
	},
	{CategoryCell, CategoryGene}: {
		"biolink:affected_by",
		"biolink:produces",
		"biolink:location_of",
		"biolink:has_part",
		"biolink:interacts_with",
	},
	{CategoryCell, CategoryDisease}: {
		"biolink:location_of",
		"biolink:affected_by",
		"biolink:interacts_with",
	},
	{CategoryDisease, CategoryCell}: {
		"biolink:located_in",
		"biolink:affects",
		"biolink:interacts_with",
	},
	{CategoryDrug, CategoryCell}: {
		"biolink:affects",
		"biolink:interacts_with",
	},
	{CategoryCell, CategoryDrug}: {
		"biolink:affected_by",
		"biolink:interacts_with",
	},
	{CategoryDrug, CategoryDisease}: {
		"biolink:treats_or_applied_or_studied_to_treat",
		"biolink:affects",
		"biolink:contributes_to",
	},
	{CategoryDisease, CategoryDrug}: {
		"biolink:treated_by",
		"biolink:affected_by",
		"biolink:has_contributor",
	},
}

// categoryAliases folds categories onto the table's row categories.
var categoryAliases = map[string]string{
	"biolink:SmallMolecule":              CategoryDrug,
	"biolink:ChemicalEntity":             CategoryDrug,
	"biolink:MolecularMixture":           CategoryDrug,
	"biolink:ComplexMolecularMixture":    CategoryDrug,
	"biolink:Protein":                    CategoryGene,
	"biolink:GeneOrGeneProduct":          CategoryGene,
	"biolink:DiseaseOrPhenotypicFeature": CategoryDisease,
	"biolink:PhenotypicFeature":          CategoryDisease,
}

func canonicalCategory(category string) string {
	if alias, ok := categoryAliases[category]; ok {
		return alias
	}
	return category
}

// LookupPredicates returns the predicates allowed between any subject
// category and any object category, in table order without duplicates.
// A nil result means no entry exists and the edge is unconstrained.
func LookupPredicates(subjectCategories, objectCategories []string) []string {
	var predicates []string
	for _, sc := range subjectCategories {
		for _, oc := range objectCategories {
			for _, p := range predicateTable[categoryPair{canonicalCategory(sc), canonicalCategory(oc)}] {
				if !slices.Contains(predicates, p) {
					predicates = append(predicates, p)
				}
			}
		}
	}
	return predicates
}
