package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MatchReport is the validated result of comparing a resume against a job
// description. It is built once per request from the parsed model payload
// and immutable afterward.
type MatchReport struct {
	MatchScore       float64    `json:"match_score"`
	ATSScore         float64    `json:"ats_compatibility_score,omitempty"`
	ExecutiveSummary string     `json:"executive_summary"`
	Strengths        []Strength `json:"strengths"`
	CriticalGaps     []Gap      `json:"critical_gaps"`

	SkillAnalysis         *SkillAnalysis   `json:"skill_analysis,omitempty"`
	ExperienceFit         *ExperienceFit   `json:"experience_fit,omitempty"`
	EducationFit          *EducationFit    `json:"education_fit,omitempty"`
	RedFlags              []string         `json:"red_flags,omitempty"`
	CompetitiveAdvantages []string         `json:"competitive_advantages,omitempty"`
	InterviewQuestions    []string         `json:"interview_questions,omitempty"`
	ImprovementTips       []ImprovementTip `json:"cv_improvement_tips,omitempty"`
	SalaryPosition        string           `json:"salary_negotiation_position,omitempty"`

	FinalRecommendation string    `json:"final_recommendation"`
	DetailedNarrative   Narrative `json:"detailed_narrative"`
}

type Strength struct {
	Point    string `json:"point"`
	Evidence string `json:"evidence,omitempty"`
	Impact   string `json:"impact,omitempty"`
}

type Gap struct {
	Gap            string `json:"gap"`
	Importance     string `json:"importance,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

type SkillAnalysis struct {
	MatchedHardSkills  []string `json:"matched_hard_skills,omitempty"`
	MatchedSoftSkills  []string `json:"matched_soft_skills,omitempty"`
	MissingHardSkills  []string `json:"missing_hard_skills,omitempty"`
	MissingSoftSkills  []string `json:"missing_soft_skills,omitempty"`
	TransferableSkills []string `json:"transferable_skills,omitempty"`
}

type ExperienceFit struct {
	YearsRequired     string  `json:"years_required,omitempty"`
	YearsApparent     string  `json:"years_apparent,omitempty"`
	RelevanceScore    float64 `json:"relevance_score,omitempty"`
	IndustryAlignment string  `json:"industry_alignment,omitempty"`
}

type EducationFit struct {
	MeetsRequirements bool   `json:"meets_requirements"`
	Details           string `json:"details,omitempty"`
}

type ImprovementTip struct {
	Tip            string `json:"tip"`
	Priority       string `json:"priority,omitempty"`
	ExpectedImpact string `json:"expected_impact,omitempty"`
}

// Narrative is the assessment narrative: models return it either as one
// string or as a list of short paragraph strings.
type Narrative []string

func (n *Narrative) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*n = Narrative{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("narrative must be a string or a list of strings")
	}
	*n = list
	return nil
}

// Models occasionally emit bare strings where an object is expected; accept
// both shapes rather than failing the whole report.
func (s *Strength) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*s = Strength{Point: bare}
		return nil
	}
	type alias Strength
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = Strength(obj)
	return nil
}

func (g *Gap) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*g = Gap{Gap: bare}
		return nil
	}
	type alias Gap
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*g = Gap(obj)
	return nil
}

var defaultNarrative = Narrative{
	"Limited CV information available for assessment.",
	"Recommend providing additional details for accurate matching.",
	"Follow up with candidate for more comprehensive profile information.",
}

// requiredReportFields maps each required payload key to a type check.
var requiredReportFields = []struct {
	name  string
	check func(v any) bool
	want  string
}{
	{"match_score", func(v any) bool { _, ok := v.(float64); return ok }, "number"},
	{"executive_summary", func(v any) bool { _, ok := v.(string); return ok }, "string"},
	{"strengths", func(v any) bool { _, ok := v.([]any); return ok }, "list"},
	{"critical_gaps", func(v any) bool { _, ok := v.([]any); return ok }, "list"},
	{"final_recommendation", func(v any) bool { _, ok := v.(string); return ok }, "string"},
	{"detailed_narrative", func(v any) bool {
		switch v.(type) {
		case string, []any:
			return true
		}
		return false
	}, "string or list"},
}

// ReportFromPayload validates the parsed model payload and converts it into
// a MatchReport. Required fields must be present with the right types;
// empty strengths/critical_gaps lists and an empty narrative are tolerated
// and backfilled with fixed defaults so the consumer always has something
// to render.
func ReportFromPayload(payload map[string]any) (*MatchReport, error) {
	for _, field := range requiredReportFields {
		value, ok := payload[field.name]
		if !ok {
			return nil, Failf(ErrMissingField, "missing required field: %s", field.name)
		}
		if !field.check(value) {
			return nil, Failf(ErrInvalidField, "field %q must be a %s", field.name, field.want)
		}
	}

	score := payload["match_score"].(float64)
	if score < 0 || score > 100 {
		return nil, Failf(ErrOutOfRange, "match_score must be between 0-100, got %g", score)
	}

	if strings.TrimSpace(payload["executive_summary"].(string)) == "" {
		return nil, Failf(ErrEmptySummary, "executive summary cannot be empty")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, Failf(ErrInvalidField, "report payload is not representable as JSON")
	}
	var report MatchReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, Failf(ErrInvalidField, "report payload has malformed fields: %v", err)
	}

	if len(report.Strengths) == 0 {
		report.Strengths = []Strength{{
			Point:    "CV provided",
			Evidence: "Candidate submitted a CV for consideration",
			Impact:   "Establishes baseline for further review",
		}}
	}
	if len(report.CriticalGaps) == 0 {
		report.CriticalGaps = []Gap{{
			Gap:            "Insufficient CV content",
			Importance:     "high",
			Recommendation: "Please provide a more detailed CV",
		}}
	}
	if narrativeEmpty(report.DetailedNarrative) {
		report.DetailedNarrative = defaultNarrative
	}

	return &report, nil
}

func narrativeEmpty(n Narrative) bool {
	for _, paragraph := range n {
		if strings.TrimSpace(paragraph) != "" {
			return false
		}
	}
	return true
}
