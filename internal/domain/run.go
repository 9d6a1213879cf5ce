package domain

import "time"

// RunRecord is the summary of one finished run kept in the run ledger.
// It never holds enough state to resume a run.
type RunRecord struct {
	ID              string        `json:"id"`
	Network         string        `json:"network"`
	Mode            Mode          `json:"mode"`
	InfectionProb   float64       `json:"infectionProbability"`
	InoculationProb float64       `json:"inoculationProbability"`
	PatientZero     string        `json:"patientZero"`
	Inoculator      string        `json:"inoculator,omitempty"`
	Seed            int64         `json:"seed"`
	Rounds          int           `json:"rounds"`
	Outcome         Outcome       `json:"outcome"`
	NodeCount       int           `json:"nodeCount"`
	InfectedCount   int           `json:"infectedCount"`
	InoculatedCount int           `json:"inoculatedCount"`
	Duration        time.Duration `json:"durationNanos"`
	CreatedAt       time.Time     `json:"createdAt"`
}
