package store

import "github.com/google/uuid"

// These prefixes give every persisted entity's ID a readable, grep-friendly
// prefix (e.g. "concept_3f9a...") rather than a bare UUID.
const (
	prefixConcept     = "concept"
	prefixPattern     = "pattern"
	prefixInsight     = "insight"
	prefixSession     = "session"
	prefixDecision    = "decision"
	prefixADR         = "adr"
	prefixFileIntel   = "fileintel"
	prefixMetadata    = "projmeta"
	prefixFeatureMap  = "featuremap"
	prefixEntryPoint  = "entrypoint"
	prefixKeyDir      = "keydir"
)

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
