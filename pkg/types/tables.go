package types

// Collection names for the four persisted collections.
const (
	CollectionTags         = "tags"
	CollectionCategories   = "categories"
	CollectionSelectedTags = "selected_tags"
	CollectionTagWeights   = "tag_weights"
)

// StandardCollections lists all collection names in load order.
var StandardCollections = []string{
	CollectionTags,
	CollectionCategories,
	CollectionSelectedTags,
	CollectionTagWeights,
}

// IsCollection reports whether name is one of the standard collections.
func IsCollection(name string) bool {
	for _, c := range StandardCollections {
		if c == name {
			return true
		}
	}
	return false
}
