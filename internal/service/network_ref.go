package service

import (
	"strings"

	"github.com/vanshika/wormsim/internal/domain"
)

// StoredPrefix marks a network reference that lives in the graph database.
const StoredPrefix = "neo4j:"

// NetworkRef names where a network comes from. Exactly one field is set.
type NetworkRef struct {
	Path   string
	Stored string
	Edges  []domain.Edge
}

// ParseNetworkRef reads "neo4j:<name>" as a stored network and anything else
// as a CSV path.
func ParseNetworkRef(raw string) NetworkRef {
	raw = strings.TrimSpace(raw)
	if name, ok := strings.CutPrefix(raw, StoredPrefix); ok {
		return NetworkRef{Stored: name}
	}
	return NetworkRef{Path: raw}
}

// String renders the reference the way it is recorded in the ledger.
func (r NetworkRef) String() string {
	switch {
	case r.Stored != "":
		return StoredPrefix + r.Stored
	case r.Path != "":
		return r.Path
	case len(r.Edges) > 0:
		return "inline"
	default:
		return ""
	}
}
