package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"aigateway/internal/core"
)

// AdminInsightsInput carries an opaque platform snapshot.
type AdminInsightsInput struct {
	Target
	Snapshot json.RawMessage `json:"snapshot"`
}

const adminInsightsSystem = `You are an expert workforce marketplace analyst for an admin console.
Return ONLY valid JSON matching this exact structure:
{
  "platform_analytics_intelligence": {
    "dropoff_analysis": [{"stage": "string", "issue": "string", "impact": "high|medium|low", "action": "string"}],
    "top_performing_consultants": [{"name": "string", "reason": "string"}],
    "placement_rate_analysis": {"value_pct": number | null, "status": "strong|developing|critical", "explanation": "string"},
    "revenue_by_role_insight": [{"role": "string", "revenue": number, "insight": "string"}]
  },
  "risk_monitoring": {
    "suspicious_employer_behavior": [{"signal": "string", "risk_level": "high|medium|low", "recommended_action": "string"}],
    "discriminatory_job_description_flags": [{"excerpt": "string", "reason": "string", "recommended_rewrite": "string"}],
    "abnormal_account_activity": [{"signal": "string", "risk_level": "high|medium|low", "recommended_action": "string"}]
  },
  "growth_recommendations": {
    "high_demand_industries": [{"industry": "string", "evidence": "string", "priority": "high|medium|low"}],
    "new_course_categories": [{"category": "string", "why_now": "string"}],
    "underserved_talent_segments": [{"segment": "string", "opportunity": "string", "recommended_program": "string"}]
  }
}
No markdown, no prose outside JSON.`

// AdminInsights builds a low-temperature JSON-mode analytics request. The
// snapshot must be valid JSON; it is re-indented for the prompt.
func AdminInsights(in AdminInsightsInput) (core.CompletionRequest, error) {
	var snapshot bytes.Buffer
	if err := json.Indent(&snapshot, in.Snapshot, "", "  "); err != nil {
		return core.CompletionRequest{}, fmt.Errorf("invalid snapshot: %w", err)
	}

	user := "Create admin AI insights using this platform snapshot JSON:\n\n" + snapshot.String()

	return core.NewCompletionRequest(adminInsightsSystem, user, in.options(
		core.WithJSONMode(true),
		core.WithMaxTokens(1200),
		core.WithTemperature(0.2),
	)...), nil
}
