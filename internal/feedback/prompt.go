package feedback

import (
	"fmt"
	"strings"
)

// BuildPrompt asks for a single JSON object. Field names match what parse
// reads.
func BuildPrompt(in Input) string {
	name := strings.TrimSpace(in.CandidateName)
	if name == "" {
		name = "Candidate"
	}

	var b strings.Builder
	b.WriteString("You are an expert interviewer and hiring analyst.\n\n")
	b.WriteString("Interview details:\n")
	fmt.Fprintf(&b, "- Position: %s\n", in.Role)
	fmt.Fprintf(&b, "- Candidate name: %s\n", name)
	b.WriteString("- The transcript below holds the candidate's answers about their name, experience and education, followed by the technical and behavioral questions and answers.\n\n")
	b.WriteString("Interview transcript:\n")
	b.WriteString(strings.TrimSpace(in.Transcript))
	b.WriteString("\n\nTasks:\n")
	b.WriteString("1. Summarize the candidate's background (education, years of experience, other details stated at the start).\n")
	b.WriteString("2. Evaluate their communication skills and how they described themselves.\n")
	b.WriteString("3. Give a detailed, personalized evaluation based on both background and technical answers.\n\n")
	b.WriteString("Return feedback as one JSON object with these fields:\n")
	b.WriteString(`{
  "overallRating": "Score between 1 and 10",
  "summary": "Comprehensive summary covering technical and personal details",
  "strengths": ["Biggest strengths you noticed"],
  "weaknesses": ["Areas to improve based on background and answers"],
  "improvements": ["Concrete, personalized suggestions"],
  "technicalSkills": "Technical skills evaluation",
  "communicationSkills": "Assessment of communication",
  "recommendations": "Development plan and next steps",
  "backgroundSummary": "Short summary of education, experience and background",
  "interviewInsights": "Notable impressions or personality traits",
  "nextSteps": "What the candidate should do next"
}`)
	b.WriteString("\n\nReturn valid JSON only, no text outside the JSON object.\n")
	return b.String()
}
