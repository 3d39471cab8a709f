package model

// The closed topic taxonomy. The oracle is instructed to draw segment
// topics from exactly this list; anything else is dropped at validation.
const (
	TopicAIMachineLearning = "AI & Machine Learning"
	TopicStartupsFunding   = "Startups & Funding"
	TopicProductLaunches   = "Product Launches"
	TopicResearchPapers    = "Research & Papers"
	TopicIndustryNews      = "Industry News"
	TopicToolsApplications = "Tools & Applications"
	TopicPolicyRegulation  = "Policy & Regulation"
	TopicTutorials         = "Tutorials & How-tos"
)

// AllTopics returns the full taxonomy in display order.
func AllTopics() []string {
	return []string{
		TopicAIMachineLearning,
		TopicStartupsFunding,
		TopicProductLaunches,
		TopicResearchPapers,
		TopicIndustryNews,
		TopicToolsApplications,
		TopicPolicyRegulation,
		TopicTutorials,
	}
}

// ValidTopic reports whether topic belongs to the taxonomy.
func ValidTopic(topic string) bool {
	for _, t := range AllTopics() {
		if t == topic {
			return true
		}
	}
	return false
}

// FilterTopics returns only the topics that belong to the taxonomy,
// preserving order.
func FilterTopics(topics []string) []string {
	var valid []string
	for _, t := range topics {
		if ValidTopic(t) {
			valid = append(valid, t)
		}
	}
	return valid
}
