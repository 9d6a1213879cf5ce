package domain

// Edge is an unordered pair of node identifiers.
type Edge struct {
	Source string
	Target string
}

// Reversed returns the edge with its endpoints swapped.
func (e Edge) Reversed() Edge {
	return Edge{Source: e.Target, Target: e.Source}
}

// IsLoop reports whether both endpoints are the same node.
func (e Edge) IsLoop() bool {
	return e.Source == e.Target
}
