package domain

import "strings"

// Mode selects the propagation rules for a run.
type Mode string

const (
	ModeSimple      Mode = "simple"
	ModeCompetitive Mode = "competitive"
)

// Outcome is the terminal classification of a run.
type Outcome string

const (
	OutcomeFullyInfected Outcome = "fully-infected"
	OutcomeEradicated    Outcome = "eradicated"
	// OutcomeIncomplete marks a run that stopped before a terminal state
	// (cancelled or over the round cap).
	OutcomeIncomplete Outcome = "incomplete"
)

// Terminal reports whether the outcome is one of the terminal states.
func (o Outcome) Terminal() bool {
	return o == OutcomeFullyInfected || o == OutcomeEradicated
}

// RandomNode is the literal that requests random node resolution.
const RandomNode = "random"

// IsRandomRequest reports whether ref asks for a randomly chosen node.
func IsRandomRequest(ref string) bool {
	return strings.EqualFold(strings.TrimSpace(ref), RandomNode)
}

// Progress is emitted after every round.
type Progress struct {
	Round           int  `json:"round"`
	InfectedCount   int  `json:"infectedCount"`
	InoculatedCount int  `json:"inoculatedCount"`
	NewInfections   int  `json:"newInfections"`
	NewInoculations int  `json:"newInoculations"`
	Terminal        bool `json:"terminal"`
}
