// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trialscope
// pipeline: typed views of registry API responses, the flattened
// StudySummary the core operates on, and component configuration.
package types

import "strings"

// Study is the typed view of one registry study record. Only the
// modules the core consumes are modeled; the upstream document carries
// many more, which are ignored on decode.
type Study struct {
	ProtocolSection ProtocolSection `json:"protocolSection"`
	HasResults      bool            `json:"hasResults"`
}

// ProtocolSection groups the protocol modules of a study record.
type ProtocolSection struct {
	Identification       IdentificationModule `json:"identificationModule"`
	Status               StatusModule         `json:"statusModule"`
	Design               DesignModule         `json:"designModule"`
	SponsorCollaborators SponsorModule        `json:"sponsorCollaboratorsModule"`
	Conditions           ConditionsModule     `json:"conditionsModule"`
	ArmsInterventions    ArmsModule           `json:"armsInterventionsModule"`
	ContactsLocations    ContactsModule       `json:"contactsLocationsModule"`
	Eligibility          EligibilityModule    `json:"eligibilityModule"`
	Outcomes             OutcomesModule       `json:"outcomesModule"`
	References           ReferencesModule     `json:"referencesModule"`
}

// IdentificationModule carries study identifiers and titles.
type IdentificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

// StatusModule carries recruitment status and the study's date structs.
// Registry dates are partial: "2023-06-15", "2023-06", or "2023".
type StatusModule struct {
	OverallStatus         string     `json:"overallStatus"`
	StartDate             DateStruct `json:"startDateStruct"`
	CompletionDate        DateStruct `json:"completionDateStruct"`
	PrimaryCompletionDate DateStruct `json:"primaryCompletionDateStruct"`
}

// DateStruct is the registry's partial-date wrapper.
type DateStruct struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

// DesignModule carries phases, study type, and enrollment target.
type DesignModule struct {
	StudyType  string         `json:"studyType"`
	Phases     []string       `json:"phases"`
	Enrollment EnrollmentInfo `json:"enrollmentInfo"`
}

// EnrollmentInfo is the enrollment target or actual count.
// Type is "ESTIMATED" or "ACTUAL".
type EnrollmentInfo struct {
	Count int    `json:"count"`
	Type  string `json:"type"`
}

// SponsorModule carries the lead sponsor and collaborators.
type SponsorModule struct {
	LeadSponsor   Sponsor   `json:"leadSponsor"`
	Collaborators []Sponsor `json:"collaborators"`
}

// Sponsor is an organization reference.
type Sponsor struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// ConditionsModule lists the conditions studied.
type ConditionsModule struct {
	Conditions []string `json:"conditions"`
}

// ArmsModule lists interventions and arm groups.
type ArmsModule struct {
	Interventions []Intervention `json:"interventions"`
	ArmGroups     []ArmGroup     `json:"armGroups"`
}

// Intervention is one study intervention.
type Intervention struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ArmGroup is one study arm with its assigned interventions.
type ArmGroup struct {
	Label             string   `json:"label"`
	Type              string   `json:"type"`
	Description       string   `json:"description"`
	InterventionNames []string `json:"interventionNames"`
}

// ContactsModule carries site locations and central contacts.
type ContactsModule struct {
	CentralContacts []Contact  `json:"centralContacts"`
	Locations       []Location `json:"locations"`
}

// Contact is a study contact point.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Location is one study site.
type Location struct {
	Facility string `json:"facility"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Status   string `json:"status"`
}

// String renders the location as "City, State, Country", skipping
// empty components.
func (l Location) String() string {
	var parts []string
	for _, p := range []string{l.City, l.State, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// EligibilityModule carries the eligibility criteria block.
type EligibilityModule struct {
	Criteria          string `json:"eligibilityCriteria"`
	Sex               string `json:"sex"`
	MinimumAge        string `json:"minimumAge"`
	MaximumAge        string `json:"maximumAge"`
	HealthyVolunteers bool   `json:"healthyVolunteers"`
}

// OutcomesModule lists outcome measures by category.
type OutcomesModule struct {
	Primary   []Outcome `json:"primaryOutcomes"`
	Secondary []Outcome `json:"secondaryOutcomes"`
	Other     []Outcome `json:"otherOutcomes"`
}

// Outcome is one outcome measure.
type Outcome struct {
	Measure     string `json:"measure"`
	Description string `json:"description"`
	TimeFrame   string `json:"timeFrame"`
}

// ReferencesModule lists publication references.
type ReferencesModule struct {
	References []Reference `json:"references"`
}

// Reference is one publication reference.
type Reference struct {
	PMID     string `json:"pmid"`
	Type     string `json:"type"`
	Citation string `json:"citation"`
}

// StudySummary is the flattened record the core passes between the
// aggregation, metrics, matching, and rendering stages.
type StudySummary struct {
	NCTID          string   `json:"nct_id" yaml:"nct_id"`
	Title          string   `json:"title" yaml:"title"`
	Status         string   `json:"status" yaml:"status"`
	Phases         []string `json:"phases" yaml:"phases"`
	StudyType      string   `json:"study_type" yaml:"study_type"`
	Conditions     []string `json:"conditions" yaml:"conditions"`
	Interventions  []string `json:"interventions" yaml:"interventions"`
	Sponsor        string   `json:"sponsor" yaml:"sponsor"`
	SponsorClass   string   `json:"sponsor_class" yaml:"sponsor_class"`
	Enrollment     int      `json:"enrollment" yaml:"enrollment"`
	EnrollmentType string   `json:"enrollment_type" yaml:"enrollment_type"`
	StartDate      string   `json:"start_date" yaml:"start_date"`
	CompletionDate string   `json:"completion_date" yaml:"completion_date"`
	Locations      []string `json:"locations" yaml:"locations"`
	HasResults     bool     `json:"has_results" yaml:"has_results"`
}

// maxSummaryLocations bounds the location list carried on a summary;
// large trials list hundreds of sites.
const maxSummaryLocations = 5

// Summarize flattens a Study into a StudySummary.
func (s Study) Summarize() StudySummary {
	p := s.ProtocolSection

	var interventions []string
	for _, iv := range p.ArmsInterventions.Interventions {
		if iv.Name != "" {
			interventions = append(interventions, iv.Name)
		}
	}

	var locations []string
	for _, loc := range p.ContactsLocations.Locations {
		if len(locations) >= maxSummaryLocations {
			break
		}
		if rendered := loc.String(); rendered != "" {
			locations = append(locations, rendered)
		}
	}

	return StudySummary{
		NCTID:          p.Identification.NCTID,
		Title:          p.Identification.BriefTitle,
		Status:         p.Status.OverallStatus,
		Phases:         p.Design.Phases,
		StudyType:      p.Design.StudyType,
		Conditions:     p.Conditions.Conditions,
		Interventions:  interventions,
		Sponsor:        p.SponsorCollaborators.LeadSponsor.Name,
		SponsorClass:   p.SponsorCollaborators.LeadSponsor.Class,
		Enrollment:     p.Design.Enrollment.Count,
		EnrollmentType: p.Design.Enrollment.Type,
		StartDate:      p.Status.StartDate.Date,
		CompletionDate: completionDate(p.Status),
		Locations:      locations,
		HasResults:     s.HasResults,
	}
}

// completionDate prefers the overall completion date, falling back to
// the primary completion date.
func completionDate(m StatusModule) string {
	if m.CompletionDate.Date != "" {
		return m.CompletionDate.Date
	}
	return m.PrimaryCompletionDate.Date
}

// HasPhase reports whether the summary lists the given phase.
func (s StudySummary) HasPhase(p Phase) bool {
	for _, have := range s.Phases {
		if have == string(p) {
			return true
		}
	}
	return false
}

// IsActive reports whether the study is in an active (pre-completion)
// status.
func (s StudySummary) IsActive() bool {
	switch OverallStatus(s.Status) {
	case StatusRecruiting, StatusActiveNotRecruiting, StatusNotYetRecruiting, StatusEnrollingByInvitation:
		return true
	}
	return false
}
