package domain

// UnknownTitle is the placeholder used when a document id cannot be resolved
// in the metadata store. A failed per-id lookup degrades to this value instead
// of failing the whole batch.
const UnknownTitle = "Unknown Title"

// Article is the document metadata record shared by the lexical index and the
// embedding store. The same logical article is retrievable by the same ID from
// both, which is what makes cross-store joins during enrichment possible.
type Article struct {
	ID                  string
	Headline            string
	ShortDescription    string
	Category            string
	KeywordsProperNouns string
	URL                 string
	PublishedAt         string
}

// Placeholder returns a degraded article record for an unresolvable id.
func Placeholder(id string) Article {
	return Article{ID: id, Headline: UnknownTitle}
}
