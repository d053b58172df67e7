package interview

import (
	"strings"
	"testing"

	"github.com/yoockh/yoointerview/internal/models"
)

func TestIntroPrompt(t *testing.T) {
	en := IntroPrompt(models.LanguageEnglish, "Data Engineer")
	if !strings.Contains(en, "Data Engineer") || !strings.Contains(en, "name") {
		t.Fatalf("english intro = %q", en)
	}
	hi := IntroPrompt(models.LanguageHindi, "Data Engineer")
	if hi == en || !strings.Contains(hi, "Data Engineer") {
		t.Fatalf("hindi intro = %q", hi)
	}
}

func TestBuildQuestionPrompt(t *testing.T) {
	req := QuestionRequest{
		Conversation:    "AI: Hello\nYou: Hi, I am Ravi",
		Role:            "SRE",
		RoleDescription: "Runs Kubernetes clusters",
		Language:        models.LanguageHindi,
		TechStacks:      []string{"Kubernetes", " ", "Terraform"},
	}
	p := BuildQuestionPrompt(req)

	for _, want := range []string{
		"SRE",
		"Runs Kubernetes clusters",
		"Hindi",
		"years of experience",
		"Kubernetes, Terraform",
		"one question at a time",
		"You: Hi, I am Ravi",
		"This concludes the technical interview",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildQuestionPrompt_NoStacks(t *testing.T) {
	p := BuildQuestionPrompt(QuestionRequest{Role: "PM", Language: models.LanguageEnglish})
	if !strings.Contains(p, "relevant to the role") || !strings.Contains(p, "English") {
		t.Fatalf("prompt = %q", p)
	}
}
