package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStage is returned when a pipeline stage name is not recognised.
var ErrUnknownStage = errors.New("unknown pipeline stage")

// PipelineStage is a CRM pipeline position. The open stages have a total
// order from StageNew (1) to StageWon (9); StageLost is terminal and sits
// outside the order.
type PipelineStage int

const (
	StageNew PipelineStage = iota + 1
	StageContacted
	StageQualified
	StageQuoted
	StageNegotiating
	StageReserved
	StagePaid
	StageTraveling
	StageWon
	StageLost
)

// StageCount is the number of ordered stages.
const StageCount = 9

var stageNames = [...]string{
	StageNew:         "new",
	StageContacted:   "contacted",
	StageQualified:   "qualified",
	StageQuoted:      "quoted",
	StageNegotiating: "negotiating",
	StageReserved:    "reserved",
	StagePaid:        "paid",
	StageTraveling:   "traveling",
	StageWon:         "won",
	StageLost:        "lost",
}

// ClosedStages are the stages counted as a conversion when building a
// tenant's historical baseline.
var ClosedStages = []PipelineStage{StageWon, StageReserved, StagePaid}

// ParseStage maps a stored stage name to its enum value.
func ParseStage(s string) (PipelineStage, error) {
	for i := StageNew; i <= StageLost; i++ {
		if stageNames[i] == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Valid reports whether s is one of the defined stages.
func (s PipelineStage) Valid() bool { return s >= StageNew && s <= StageLost }

// Index returns the 1-based position in the ordered pipeline, or 0 for
// lost and invalid values.
func (s PipelineStage) Index() int {
	if s >= StageNew && s <= StageWon {
		return int(s)
	}
	return 0
}

// IsTerminal reports whether no further progression is possible.
func (s PipelineStage) IsTerminal() bool { return s == StageWon || s == StageLost }

func (s PipelineStage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("PipelineStage(%d)", int(s))
	}
	return stageNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s PipelineStage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStage, int(s))
	}
	return []byte(stageNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PipelineStage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
