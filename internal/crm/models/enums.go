package models

import (
	"encoding/json"
	"fmt"
)

// DealStage is the pipeline position of a deal. Any stage may follow any other.
type DealStage string

const (
	StageLead        DealStage = "lead"
	StageQualified   DealStage = "qualified"
	StageProposal    DealStage = "proposal"
	StageNegotiation DealStage = "negotiation"
	StageWon         DealStage = "won"
	StageLost        DealStage = "lost"
)

// DealStages lists every stage in pipeline order.
var DealStages = []DealStage{
	StageLead, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost,
}

// Valid reports whether s is one of the known stages.
func (s DealStage) Valid() bool {
	for _, stage := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ParseDealStage converts the canonical string form into a DealStage.
func ParseDealStage(v string) (DealStage, error) {
	s := DealStage(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown deal stage %q", v)
	}
	return s, nil
}

// UnmarshalJSON rejects unknown stages.
func (s *DealStage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDealStage(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ActivityType classifies an activity.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

// ActivityTypes lists every activity type.
var ActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote}

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseActivityType converts the canonical string form into an ActivityType.
func ParseActivityType(v string) (ActivityType, error) {
	t := ActivityType(v)
	if !t.Valid() {
		return "", fmt.Errorf("unknown activity type %q", v)
	}
	return t, nil
}

// UnmarshalJSON rejects unknown activity types.
func (t *ActivityType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseActivityType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
