package prompts

import (
	"fmt"

	"aigateway/internal/core"
)

// ResumeSummaryInput describes a candidate for a generated summary.
type ResumeSummaryInput struct {
	Target
	JobTitle        string   `json:"job_title"`
	YearsExperience int      `json:"years_experience"`
	Skills          []string `json:"skills"`
	Industry        string   `json:"industry"`
	Tone            string   `json:"tone"`
}

// ResumeSummary builds a plain-text summary request.
func ResumeSummary(in ResumeSummaryInput) core.CompletionRequest {
	system := "You are an expert resume writer with 15 years of experience. " +
		"Write concise, impactful resume summaries that get interviews. " +
		"Rules: 2-3 sentences max, use active voice, include measurable impact hints, " +
		"match the tone requested, no cliches like 'dynamic' or 'passionate'."

	user := lines(
		"Write a resume summary for:",
		"- Job Title: "+in.JobTitle,
		fmt.Sprintf("- Years of Experience: %d", in.YearsExperience),
		"- Key Skills: "+joinOr(in.Skills, ""),
		"- Industry: "+in.Industry,
		"- Tone: "+orDefault(in.Tone, "professional"),
	)

	return core.NewCompletionRequest(system, user, in.options(core.WithMaxTokens(200))...)
}

// ValidateFieldInput is a single resume field to check.
type ValidateFieldInput struct {
	Target
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
	Context    string `json:"context,omitempty"`
}

// ValidateField builds a JSON-mode field validation request.
func ValidateField(in ValidateFieldInput) core.CompletionRequest {
	system := "You are a resume expert. Validate resume fields and return ONLY valid JSON. " +
		"No markdown, no explanation outside the JSON. " +
		`Return: {"valid": bool, "score": 1-10, "issues": ["issue1"], ` +
		`"suggestion": "improved version or empty string"}`

	user := lines(
		"Validate this resume field:",
		"Field: "+in.FieldName,
		fmt.Sprintf("Value: %q", in.FieldValue),
		optional("Context (target role): %s", in.Context),
	)

	return core.NewCompletionRequest(system, user,
		in.options(core.WithJSONMode(true), core.WithMaxTokens(300))...)
}

// ScoreInput is a resume to score, optionally against a role.
type ScoreInput struct {
	Target
	ResumeText string `json:"resume_text"`
	TargetJob  string `json:"target_job,omitempty"`
}

// Score builds a JSON-mode ATS scoring request.
func Score(in ScoreInput) core.CompletionRequest {
	system := "You are an ATS (Applicant Tracking System) expert and hiring manager. " +
		"Score resumes and return ONLY valid JSON: " +
		`{"overall_score": 1-100, "sections": {"summary": 1-10, "experience": 1-10, "skills": 1-10}, ` +
		`"strengths": ["str1", "str2"], "improvements": ["imp1", "imp2"], "ats_friendly": bool}`

	user := "Score this resume" + optional(" for the role: %s", in.TargetJob) + ":\n" + in.ResumeText

	return core.NewCompletionRequest(system, user,
		in.options(core.WithJSONMode(true), core.WithMaxTokens(500))...)
}

// ProfileInsightsInput is the candidate profile snapshot to analyze.
type ProfileInsightsInput struct {
	Target
	Name           string   `json:"name,omitempty"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Location       string   `json:"location,omitempty"`
	TargetRole     string   `json:"target_role,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
	Experience     []string `json:"experience,omitempty"`
	Education      []string `json:"education,omitempty"`
	ResumeText     string   `json:"resume_text,omitempty"`
}

// ProfileInsights builds a JSON-mode profile recommendation request.
// Contact details are reported only as present or absent.
func ProfileInsights(in ProfileInsightsInput) core.CompletionRequest {
	system := "You are an expert career coach and profile optimization assistant. " +
		"Analyze candidate profile data for job readiness and return ONLY valid JSON. " +
		"Do not include markdown. " +
		"Return this exact shape: " +
		`{"missing_critical_fields": ["field"], ` +
		`"suggested_certifications": ["cert"], ` +
		`"suggested_skill_tags": ["skill"], ` +
		`"suggested_industries": ["industry"], ` +
		`"profile_strengths": ["strength"], ` +
		`"next_actions": ["action"]}.`

	user := lines(
		"Analyze this candidate profile and return recommendations:",
		"- Name: "+orDefault(in.Name, "N/A"),
		"- Email present: "+yesNo(in.Email),
		"- Phone present: "+yesNo(in.Phone),
		"- Location present: "+yesNo(in.Location),
		"- Target role: "+orDefault(in.TargetRole, "not specified"),
		"- Skills: "+joinOr(in.Skills, "none"),
		"- Certifications: "+joinOr(in.Certifications, "none"),
		"- Experience entries: "+joinOr(in.Experience, "none"),
		"- Education entries: "+joinOr(in.Education, "none"),
		"- Resume text:",
		orDefault(in.ResumeText, "not provided"),
	) + "\n\n" + lines(
		"Rules:",
		"1) Keep each list concise (max 6 items).",
		"2) Suggest realistic certifications for the profile and role.",
		"3) Suggested industries should be broad and practical.",
		"4) Missing fields should focus on high-impact profile gaps.",
		"5) Next actions must be concrete and immediately actionable.",
	)

	return core.NewCompletionRequest(system, user,
		in.options(core.WithJSONMode(true), core.WithMaxTokens(600))...)
}
