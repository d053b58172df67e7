package interview

import (
	"fmt"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
)

// QuestionBudget is the total number of questions the interviewer is asked
// to spread across the declared tech stacks. It is guidance for the model and
// is not enforced locally.
const QuestionBudget = 15

func IntroPrompt(lang models.Language, role string) string {
	if lang == models.LanguageHindi {
		return fmt.Sprintf("नमस्ते, आपके %s इंटरव्यू सत्र में आपका स्वागत है। कृपया अपना नाम बताएं।", role)
	}
	return fmt.Sprintf("Hello, welcome to your %s interview. Please tell me your name.", role)
}

func BuildQuestionPrompt(req QuestionRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an AI interviewer for a %s position.\n", req.Role)
	if d := strings.TrimSpace(req.RoleDescription); d != "" {
		fmt.Fprintf(&b, "The role involves: %s\n", d)
	}
	if req.Language == models.LanguageHindi {
		b.WriteString("Conduct the interview entirely in Hindi.\n")
	} else {
		b.WriteString("Conduct the interview in English.\n")
	}

	b.WriteString("First, ask the candidate about their total years of experience and the main domains or technologies they have worked with.\n")
	b.WriteString("Use that experience to tailor the next questions: deeper, scenario-based questions for experienced candidates, fundamentals for less experienced ones.\n")

	stacks := make([]string, 0, len(req.TechStacks))
	for _, s := range req.TechStacks {
		if s = strings.TrimSpace(s); s != "" {
			stacks = append(stacks, s)
		}
	}
	if len(stacks) > 0 {
		fmt.Fprintf(&b, "Divide a total of %d questions equally among these tech stacks: %s.\n", QuestionBudget, strings.Join(stacks, ", "))
	} else {
		fmt.Fprintf(&b, "Ask a total of %d questions relevant to the role.\n", QuestionBudget)
	}

	b.WriteString("Ask exactly one question at a time and do not give feedback during the interview.\n\n")
	b.WriteString("Conversation so far:\n")
	b.WriteString(req.Conversation)
	b.WriteString("\n\nNow ask the next question. Respond ONLY with the question.\n")
	fmt.Fprintf(&b, "If all %d questions have been asked, say \"This concludes the technical interview. Thank you.\"\n", QuestionBudget)

	return b.String()
}
