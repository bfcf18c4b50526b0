// Package types holds the structured records flowing through the
// extraction, matching and shortlisting pipeline, and the strict decoder
// that turns raw model output into them.
package types

import "github.com/google/uuid"

// Document kinds accepted by the extraction service.
const (
	KindResume = "resume"
	KindJob    = "job-description"
)

// Candidate statuses eligible for auto-shortlisting.
const (
	StatusSourcing  = "sourcing"
	StatusScreening = "screening"
)

// Recommendation verdicts produced by the matching engine.
const (
	RecommendationStrong  = "Strong Match"
	RecommendationGood    = "Good Match"
	RecommendationPartial = "Partial Match"
	RecommendationPoor    = "Poor Match"
)

// ParsedResume is the structured record extracted from résumé text.
// Produced once per distinct input (modulo cache hits) and never mutated.
type ParsedResume struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	YearsExperience int      `json:"yearsExperience" validate:"gte=0"`
	SapModules      []string `json:"sapModules"`
	OtherErp        []string `json:"otherErp"`
	Certifications  []string `json:"certifications"`
	Industries      []string `json:"industries"`
	VisaStatus      string   `json:"visaStatus"`
	Availability    string   `json:"availability"`
	RateExpectation string   `json:"rateExpectation"`
	EmploymentType  string   `json:"employmentType"`
	Summary         string   `json:"summary"`
}

// ParsedJob is the structured record extracted from job-description text.
type ParsedJob struct {
	Title            string   `json:"title"`
	Client           string   `json:"client"`
	Location         string   `json:"location"`
	Type             string   `json:"type" validate:"oneof=Contract Permanent ContractToHire"`
	Duration         string   `json:"duration"`
	DurationMonths   int      `json:"durationMonths" validate:"gte=0"`
	Rate             string   `json:"rate"`
	RateNumeric      float64  `json:"rateNumeric" validate:"gte=0"`
	RequiredModules  []string `json:"requiredModules"`
	PreferredModules []string `json:"preferredModules"`
	RequiredYears    int      `json:"requiredYears" validate:"gte=0"`
	RequiredCerts    []string `json:"requiredCerts"`
	Industries       []string `json:"industries"`
	VisaSponsorship  string   `json:"visaSponsorship"`
	Remote           string   `json:"remote"`
	Summary          string   `json:"summary"`
}

// MatchResult scores one candidate against one job. Created fresh for
// every pair; never cached, since scores are contextual per pair.
type MatchResult struct {
	OverallScore       int      `json:"overallScore" validate:"gte=0,lte=100"`
	ModuleScore        int      `json:"moduleScore" validate:"gte=0,lte=100"`
	ExperienceScore    int      `json:"experienceScore" validate:"gte=0,lte=100"`
	IndustryScore      int      `json:"industryScore" validate:"gte=0,lte=100"`
	CertificationScore int      `json:"certificationScore" validate:"gte=0,lte=100"`
	Strengths          []string `json:"strengths"`
	Gaps               []string `json:"gaps"`
	Recommendation     string   `json:"recommendation" validate:"oneof='Strong Match' 'Good Match' 'Partial Match' 'Poor Match'"`
	Summary            string   `json:"summary"`
	NextSteps          string   `json:"nextSteps"`
}

// CandidateFields is the validated candidate side of a scoring call, as
// read from the store. Pointer fields are unknown when nil and rendered
// with an explicit placeholder, never omitted.
type CandidateFields struct {
	ID              uuid.UUID `json:"id" mapstructure:"id"`
	Name            string    `json:"name" mapstructure:"name"`
	Status          string    `json:"status" mapstructure:"status"`
	YearsExperience *int      `json:"yearsExperience" mapstructure:"yearsExperience"`
	SapModules      []string  `json:"sapModules" mapstructure:"sapModules"`
	Certifications  []string  `json:"certifications" mapstructure:"certifications"`
	Industries      []string  `json:"industries" mapstructure:"industries"`
	VisaStatus      *string   `json:"visaStatus" mapstructure:"visaStatus"`
	Availability    *string   `json:"availability" mapstructure:"availability"`
	RateExpectation *string   `json:"rateExpectation" mapstructure:"rateExpectation"`
}

// JobFields is the validated job side of a scoring call.
type JobFields struct {
	ID               uuid.UUID `json:"id" mapstructure:"id"`
	Title            string    `json:"title" mapstructure:"title"`
	RequiredModules  []string  `json:"requiredModules" mapstructure:"requiredModules"`
	PreferredModules []string  `json:"preferredModules" mapstructure:"preferredModules"`
	RequiredYears    *int      `json:"requiredYears" mapstructure:"requiredYears"`
	RequiredCerts    []string  `json:"requiredCerts" mapstructure:"requiredCerts"`
	Industries       []string  `json:"industries" mapstructure:"industries"`
	VisaSponsorship  *string   `json:"visaSponsorship" mapstructure:"visaSponsorship"`
	Rate             *string   `json:"rate" mapstructure:"rate"`
	AutoShortlisted  bool      `json:"autoShortlisted" mapstructure:"autoShortlisted"`
}
