package prompts

import (
	"strings"

	"aigateway/internal/core"
)

// JobPostInput describes the role to advertise.
type JobPostInput struct {
	Target
	RoleTitle          string   `json:"role_title"`
	ExperienceLevel    string   `json:"experience_level"`
	CompanyName        string   `json:"company_name"`
	CompanyDescription string   `json:"company_description,omitempty"`
	Location           string   `json:"location"`
	JobType            string   `json:"job_type"`
	RequiredSkills     []string `json:"required_skills"`
	NiceToHave         []string `json:"nice_to_have,omitempty"`
	Responsibilities   []string `json:"responsibilities,omitempty"`
	SalaryRange        string   `json:"salary_range,omitempty"`
	Tone               string   `json:"tone"`
}

// JobPost builds a plain-text job posting request.
func JobPost(in JobPostInput) core.CompletionRequest {
	system := "You are an expert HR copywriter and talent acquisition specialist. " +
		"Write compelling, inclusive job posts that attract top candidates. " +
		"Structure: 1) Role Overview (2-3 sentences), 2) What You'll Do (4-6 bullets), " +
		"3) What We're Looking For (required + nice-to-have), 4) What We Offer, " +
		"5) Short company culture note. Use gender-neutral language always."

	user := lines(
		"Create a complete job posting:",
		"- Role: "+in.RoleTitle+" ("+orDefault(in.ExperienceLevel, "mid")+" level)",
		"- Company: "+in.CompanyName,
		optional("- About Company: %s", in.CompanyDescription),
		"- Location: "+in.Location+" | Type: "+orDefault(in.JobType, "full-time"),
		"- Required Skills: "+joinOr(in.RequiredSkills, ""),
		optional("- Nice to Have: %s", strings.Join(in.NiceToHave, ", ")),
		optional("- Key Responsibilities: %s", strings.Join(in.Responsibilities, ", ")),
		optional("- Salary: %s", in.SalaryRange),
		"- Writing Tone: "+orDefault(in.Tone, "professional"),
	)

	return core.NewCompletionRequest(system, user, in.options(core.WithMaxTokens(900))...)
}

// improvementInstructions maps an improvement type to the editor's brief.
var improvementInstructions = map[string]string{
	"clarity":     "Make it clearer and easier to understand. Remove jargon.",
	"tone":        "Make the tone more engaging and human, less corporate.",
	"inclusivity": "Make it fully gender-neutral and inclusive for all backgrounds.",
	"length":      "Tighten it up. Remove filler and keep only essential information.",
	"seo":         "Optimize for job board SEO without keyword stuffing.",
}

// ImproveJobPostInput is an existing post and the kind of edit wanted.
type ImproveJobPostInput struct {
	Target
	ExistingPost    string `json:"existing_post"`
	ImprovementType string `json:"improvement_type"`
}

// ImproveJobPost builds a plain-text editing request. Unknown improvement
// types fall back to a general quality pass.
func ImproveJobPost(in ImproveJobPostInput) core.CompletionRequest {
	instruction, ok := improvementInstructions[in.ImprovementType]
	if !ok {
		instruction = "Improve the overall quality."
	}
	system := "You are an expert job post editor. " + instruction + " Return only the improved post."
	user := "Improve this job post:\n\n" + in.ExistingPost

	return core.NewCompletionRequest(system, user, in.options(core.WithMaxTokens(900))...)
}

// ExtractSkillsInput is a job description to mine for skills.
type ExtractSkillsInput struct {
	Target
	JobDescription string `json:"job_description"`
}

// ExtractSkills builds a JSON-mode skill extraction request. The job
// description is sent as the user prompt unchanged.
func ExtractSkills(in ExtractSkillsInput) core.CompletionRequest {
	system := "Extract skills from a job post. Return ONLY valid JSON: " +
		`{"required_skills": ["skill1"], "nice_to_have": ["skill1"], ` +
		`"experience_years": "X-Y years or null", "key_responsibilities": ["resp1"]}`

	return core.NewCompletionRequest(system, in.JobDescription,
		in.options(core.WithJSONMode(true), core.WithMaxTokens(400))...)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
