package subclass

// NotProvided marks a subclass edge whose ontology has no known source.
const NotProvided = "error-not-provided"

var ontologySources = map[string]string{
	"GO":    "infores:go",
	"DOID":  "infores:disease-ontology",
	"MONDO": "infores:mondo",
	"CHEBI": "infores:chebi",
	"HP":    "infores:hpo",
	"UMLS":  "infores:umls",
}

// KnowledgeSource returns the infores id credited for subclass_of edges taken
// from the named ontology.
func KnowledgeSource(ontology string) string {
	if src, ok := ontologySources[ontology]; ok {
		return src
	}
	return NotProvided
}
