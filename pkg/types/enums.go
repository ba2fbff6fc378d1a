// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Phase is a clinical trial phase as enumerated by the registry.
type Phase string

const (
	EarlyPhase1 Phase = "EARLY_PHASE1"
	Phase1      Phase = "PHASE1"
	Phase2      Phase = "PHASE2"
	Phase3      Phase = "PHASE3"
	Phase4      Phase = "PHASE4"
	PhaseNA     Phase = "NA"
)

// ParsePhase normalizes a phase string to the registry enumeration.
// It accepts the canonical form ("PHASE3") plus common spoken variants
// ("phase 3", "phase iii").
func ParsePhase(s string) (Phase, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch key {
	case "EARLYPHASE1", "EARLY_PHASE1":
		return EarlyPhase1, true
	case "PHASE1", "PHASEI", "1":
		return Phase1, true
	case "PHASE2", "PHASEII", "2":
		return Phase2, true
	case "PHASE3", "PHASEIII", "3":
		return Phase3, true
	case "PHASE4", "PHASEIV", "4":
		return Phase4, true
	case "NA", "N/A":
		return PhaseNA, true
	}
	return "", false
}

// OverallStatus is a study recruitment status as enumerated by the registry.
type OverallStatus string

const (
	StatusRecruiting            OverallStatus = "RECRUITING"
	StatusActiveNotRecruiting   OverallStatus = "ACTIVE_NOT_RECRUITING"
	StatusNotYetRecruiting      OverallStatus = "NOT_YET_RECRUITING"
	StatusEnrollingByInvitation OverallStatus = "ENROLLING_BY_INVITATION"
	StatusCompleted             OverallStatus = "COMPLETED"
	StatusSuspended             OverallStatus = "SUSPENDED"
	StatusTerminated            OverallStatus = "TERMINATED"
	StatusWithdrawn             OverallStatus = "WITHDRAWN"
	StatusUnknown               OverallStatus = "UNKNOWN"
)

// statusAliases maps spoken status words to the registry enumeration.
var statusAliases = map[string]OverallStatus{
	"RECRUITING":              StatusRecruiting,
	"ACTIVE":                  StatusActiveNotRecruiting,
	"ACTIVE_NOT_RECRUITING":   StatusActiveNotRecruiting,
	"ACTIVE NOT RECRUITING":   StatusActiveNotRecruiting,
	"NOT_YET_RECRUITING":      StatusNotYetRecruiting,
	"NOT YET RECRUITING":      StatusNotYetRecruiting,
	"ENROLLING_BY_INVITATION": StatusEnrollingByInvitation,
	"COMPLETED":               StatusCompleted,
	"SUSPENDED":               StatusSuspended,
	"TERMINATED":              StatusTerminated,
	"WITHDRAWN":               StatusWithdrawn,
	"UNKNOWN":                 StatusUnknown,
}

// ParseStatus normalizes a status string to the registry enumeration.
func ParseStatus(s string) (OverallStatus, bool) {
	v, ok := statusAliases[strings.ToUpper(strings.TrimSpace(s))]
	return v, ok
}

// StudyType is the registry's study-type enumeration.
type StudyType string

const (
	Interventional StudyType = "INTERVENTIONAL"
	Observational  StudyType = "OBSERVATIONAL"
	ExpandedAccess StudyType = "EXPANDED_ACCESS"
)

// ParseStudyType normalizes a study-type string to the registry enumeration.
func ParseStudyType(s string) (StudyType, bool) {
	switch StudyType(strings.ToUpper(strings.TrimSpace(s))) {
	case Interventional:
		return Interventional, true
	case Observational:
		return Observational, true
	case ExpandedAccess:
		return ExpandedAccess, true
	}
	return "", false
}

// SponsorClass is the registry's lead-sponsor organization class.
type SponsorClass string

const (
	SponsorNIH      SponsorClass = "NIH"
	SponsorFed      SponsorClass = "FED"
	SponsorIndustry SponsorClass = "INDUSTRY"
	SponsorIndiv    SponsorClass = "INDIV"
	SponsorNetwork  SponsorClass = "NETWORK"
	SponsorOther    SponsorClass = "OTHER"
)

// Sex is the registry's sex-eligibility enumeration.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
	SexAll    Sex = "ALL"
)

// ParseSex normalizes a sex string to the registry enumeration.
func ParseSex(s string) (Sex, bool) {
	switch Sex(strings.ToUpper(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, true
	case SexFemale:
		return SexFemale, true
	case SexAll:
		return SexAll, true
	}
	return "", false
}

// Maturity is the derived trial maturity stage.
type Maturity string

const (
	MaturityEarly Maturity = "EARLY"
	MaturityMid   Maturity = "MID"
	MaturityLate  Maturity = "LATE"
)
