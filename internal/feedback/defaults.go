package feedback

import "github.com/yoockh/yoointerview/internal/models"

// applyDefaults fills every empty field of r and returns the names it filled.
func applyDefaults(r *models.FeedbackReport) []string {
	var filled []string
	text := func(name string, dst *string, def string) {
		if *dst == "" {
			*dst = def
			filled = append(filled, name)
		}
	}
	list := func(name string, dst *[]string, def ...string) {
		if len(*dst) == 0 {
			*dst = def
			filled = append(filled, name)
		}
	}

	text("summary", &r.Summary, "Interview completed with satisfactory performance.")
	list("strengths", &r.Strengths, "Demonstrated engagement", "Showed professionalism")
	list("weaknesses", &r.Weaknesses, "Room for improvement in technical depth")
	list("improvements", &r.Improvements, "Continue practicing interview skills")
	text("technical_skills", &r.TechnicalSkills, "Basic technical understanding demonstrated.")
	text("communication_skills", &r.CommunicationSkills, "Clear communication throughout the interview.")
	text("recommendations", &r.Recommendations, "Focus on continued learning and skill development.")
	text("insights", &r.Insights, "The candidate showed good interview preparation and engagement.")
	text("next_steps", &r.NextSteps, "Focus on areas identified for improvement and continue professional development.")
	text("background_summary", &r.BackgroundSummary, "Background details were not summarized.")
	return filled
}

// parseFailureReport is used when the backend answered but the answer held no
// readable JSON object.
func parseFailureReport() models.FeedbackReport {
	return models.FeedbackReport{
		Summary: "The interview was completed successfully. The candidate demonstrated engagement and responded to questions appropriately.",
		Strengths: []string{
			"Showed up prepared for the interview",
			"Engaged actively in the conversation",
			"Demonstrated willingness to learn",
		},
		Weaknesses: []string{
			"Could improve technical depth in responses",
			"May benefit from more structured answers",
		},
		Improvements: []string{
			"Practice technical interview questions",
			"Work on providing more detailed examples",
		},
		TechnicalSkills:     "The candidate showed basic technical understanding with room for growth in specific areas.",
		CommunicationSkills: "Good communication skills with clear articulation of thoughts and ideas.",
		Recommendations:     "Continue practicing interview skills and focus on technical preparation for future opportunities.",
		Insights:            "The candidate demonstrated good interview presence and professionalism.",
		NextSteps:           "Focus on technical skill development and practice more interview scenarios.",
		BackgroundSummary:   "Background details were not summarized.",
		Source:              models.FeedbackParseFallback,
	}
}

// backendFailureReport is used when no backend call succeeded.
func backendFailureReport() models.FeedbackReport {
	return models.FeedbackReport{
		Summary: "Interview session completed. Due to technical limitations, this is a standard feedback response. The candidate participated in the interview process.",
		Strengths: []string{
			"Participated actively in the interview",
			"Demonstrated professionalism",
			"Engaged with the interview process",
		},
		Weaknesses: []string{
			"Unable to assess specific areas due to technical issues",
			"Recommend scheduling a follow-up for detailed feedback",
		},
		Improvements: []string{
			"Continue practicing interview skills",
			"Prepare for technical questions in your field",
		},
		TechnicalSkills:     "Technical assessment was not fully completed due to system limitations.",
		CommunicationSkills: "Basic communication assessment completed during the interview session.",
		Recommendations:     "Continue developing both technical and soft skills. Consider scheduling additional practice sessions.",
		Insights:            "Interview process completed with standard engagement level.",
		NextSteps:           "Review common interview questions and practice responses for future opportunities.",
		BackgroundSummary:   "Background details were not summarized.",
		Source:              models.FeedbackBackendFailed,
	}
}
