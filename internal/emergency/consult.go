// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package emergency

import (
	"encoding/json"
	"log"
	"strings"
)

// =============================================================================
// CONSULT REQUEST
// =============================================================================

// ConsultRequest is the consult-doctor form. Every field is optional.
type ConsultRequest struct {
	// Personal
	FullName string `json:"fullName"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
	Contact  string `json:"contact"`
	Address  string `json:"address"`

	// Medical
	Symptoms           string `json:"symptoms"`
	SymptomDuration    string `json:"symptomDuration"`
	Severity           string `json:"severity"`
	ExistingConditions string `json:"existingConditions"`
	CurrentMeds        string `json:"currentMeds"`
	Allergies          string `json:"allergies"`
	PreviousTreatments string `json:"previousTreatments"`

	// Preferences
	Specialty          string `json:"specialty"`
	ConsultReason      string `json:"consultReason"`
	PreferredDoctor    string `json:"preferredDoctor"`
	ConsultMode        string `json:"consultMode"`
	PreferredLanguage  string `json:"preferredLanguage"`
	Availability       string `json:"availability"`
	LocationPreference string `json:"locationPreference"`
	Insurance          string `json:"insurance"`
}

// ConsultField describes one form field for prompts and overlays.
type ConsultField struct {
	Key         string
	Placeholder string
	Value       *string
}

// Fields returns the form fields in display order, bound to r.
func (r *ConsultRequest) Fields() []ConsultField {
	return []ConsultField{
		{"fullName", "Full Name", &r.FullName},
		{"dob", "Date of Birth", &r.DOB},
		{"gender", "Gender (female, male, other)", &r.Gender},
		{"contact", "Contact Details (Phone/Email)", &r.Contact},
		{"address", "Address", &r.Address},
		{"symptoms", "Symptoms (e.g., fever, headache, chest pain)", &r.Symptoms},
		{"symptomDuration", "Duration of Symptoms", &r.SymptomDuration},
		{"severity", "Severity (mild, moderate, severe)", &r.Severity},
		{"existingConditions", "Existing Medical Conditions", &r.ExistingConditions},
		{"currentMeds", "Current Medications", &r.CurrentMeds},
		{"allergies", "Allergies", &r.Allergies},
		{"previousTreatments", "Previous Diagnoses or Treatments", &r.PreviousTreatments},
		{"specialty", "Specialty", &r.Specialty},
		{"consultReason", "Reason for Consultation", &r.ConsultReason},
		{"preferredDoctor", "Preferred Doctor", &r.PreferredDoctor},
		{"consultMode", "Consultation Mode (in-person, video, phone)", &r.ConsultMode},
		{"preferredLanguage", "Preferred Language", &r.PreferredLanguage},
		{"availability", "Availability", &r.Availability},
		{"locationPreference", "Location Preference", &r.LocationPreference},
		{"insurance", "Insurance", &r.Insurance},
	}
}

// Empty reports whether no field was filled.
func (r *ConsultRequest) Empty() bool {
	for _, f := range r.Fields() {
		if strings.TrimSpace(*f.Value) != "" {
			return false
		}
	}
	return true
}

// Submit records the request. There is no consult endpoint, so the record
// goes to the log only.
func (r *ConsultRequest) Submit() {
	data, err := json.Marshal(r)
	if err != nil {
		log.Printf("CONSULT_REQUEST_ERROR | err=%v", err)
		return
	}
	log.Printf("CONSULT_REQUEST | %s", data)
}
