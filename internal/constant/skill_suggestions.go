package constant

// SkillSuggestion templates take the user's dream job where they contain %s.
type SkillSuggestion struct {
	Importance string
	Exercise   string
	Resource   string
}

var SkillSuggestions = map[string]SkillSuggestion{
	"communication": {
		Importance: "Strong communication is crucial for success as a %s",
		Exercise:   "Practice public speaking by recording yourself explaining complex topics simply",
		Resource:   "Book: 'Crucial Conversations' by Kerry Patterson",
	},
	"leadership": {
		Importance: "Leadership skills help you advance in your %s career",
		Exercise:   "Take initiative on a small project and practice delegating tasks",
		Resource:   "Course: Leadership Fundamentals on Coursera",
	},
	"teamwork": {
		Importance: "Collaboration is key in most %s environments",
		Exercise:   "Join a community project requiring coordination with others",
		Resource:   "Book: 'The Five Dysfunctions of a Team' by Patrick Lencioni",
	},
	"problem_solving": {
		Importance: "Problem-solving is a daily requirement in %s roles",
		Exercise:   "Practice the IDEAL method (Identify, Define, Explore, Act, Look back) with real issues",
		Resource:   "Website: Practice puzzles on Brilliant.org",
	},
}

// Tool result texts returned to the model.
const (
	ProfileNotFoundResult     = "Profile not found"
	ProfileCreateFailedResult = "Failed to create profile"
	NoProfileResult           = "No profile available"
	NoProfileForSkillsResult  = "No profile available to recommend skills for"
	ProfileDetailsResult      = "The profile details are: %s"
	ProfileCreatedResult      = "Successfully created profile for %s with dream job: %s"
	SkillsRecommendedResult   = "Based on the dream job of %s, the following skills are recommended: %s"
	SkillSuggestionResult     = "SKILL: %s\nImportance: %s\nExercise: %s\nResource: %s"
	UnknownSkillResult        = "I don't have specific suggestions for %s yet, but I can help you research development methods."
)
