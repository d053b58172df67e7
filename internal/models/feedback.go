package models

type FeedbackSource string

const (
	FeedbackFromModel     FeedbackSource = "model"
	FeedbackParseFallback FeedbackSource = "parse_fallback"
	FeedbackBackendFailed FeedbackSource = "backend_fallback"
)

// FeedbackReport is the output artifact of one completed interview.
// OverallRating always comes from the scoring package.
type FeedbackReport struct {
	OverallRating       int      `bson:"overall_rating" json:"overall_rating"`
	RatingLabel         string   `bson:"rating_label" json:"rating_label"`
	Summary             string   `bson:"summary" json:"summary"`
	Strengths           []string `bson:"strengths" json:"strengths"`
	Weaknesses          []string `bson:"weaknesses" json:"weaknesses"`
	Improvements        []string `bson:"improvements" json:"improvements"`
	TechnicalSkills     string   `bson:"technical_skills" json:"technical_skills"`
	CommunicationSkills string   `bson:"communication_skills" json:"communication_skills"`
	Recommendations     string   `bson:"recommendations" json:"recommendations"`
	Insights            string   `bson:"insights,omitempty" json:"insights,omitempty"`
	NextSteps           string   `bson:"next_steps,omitempty" json:"next_steps,omitempty"`
	BackgroundSummary   string   `bson:"background_summary,omitempty" json:"background_summary,omitempty"`

	Source FeedbackSource `bson:"source" json:"source"`
}
