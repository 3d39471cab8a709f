package scorer

import "github.com/daybrief/digest-cli/internal/model"

// Scoring weights. Two variants exist on purpose: BatchScore is the
// preference-only blend written at processing time, EngagementScore is the
// history-aware blend used once a user has interacted with a segment. They
// are kept as separately named functions rather than unified.
const (
	batchImportanceWeight = 0.6
	batchTopicWeight      = 0.4

	engagementBase           = 0.5
	engagementTopicWeight    = 0.4
	engagementPositiveBoost  = 0.2
	engagementDismissPenalty = 0.3
)

// TopicMatchRatio returns the fraction of the segment's topics that appear
// in the user's topic preferences. A segment with no topics matches nothing.
func TopicMatchRatio(segmentTopics, userTopics []string) float64 {
	if len(segmentTopics) == 0 {
		return 0
	}
	prefs := make(map[string]struct{}, len(userTopics))
	for _, t := range userTopics {
		prefs[t] = struct{}{}
	}
	matched := 0
	for _, t := range segmentTopics {
		if _, ok := prefs[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(segmentTopics))
}

// BatchScore is the processing-time relevance blend: importance weighted
// against topic preference overlap. Always in [0,1] when importance is.
func BatchScore(seg model.Segment, userTopics []string) float64 {
	return clamp(seg.ImportanceScore*batchImportanceWeight + TopicMatchRatio(seg.Topics, userTopics)*batchTopicWeight)
}

// EngagementScore is the history-aware relevance blend. Interactions are
// the user's full event list; only events targeting this segment count.
// A click or save boosts once regardless of repetition, a dismiss
// penalizes once, and the result clamps to [0,1].
func EngagementScore(seg model.Segment, userTopics []string, interactions []model.UserInteraction) float64 {
	score := engagementBase + TopicMatchRatio(seg.Topics, userTopics)*engagementTopicWeight

	engaged, dismissed := false, false
	for _, in := range interactions {
		if in.SegmentID != seg.ID {
			continue
		}
		switch in.Type {
		case model.InteractionClick, model.InteractionSave:
			engaged = true
		case model.InteractionDismiss:
			dismissed = true
		}
	}
	if engaged {
		score += engagementPositiveBoost
	}
	if dismissed {
		score -= engagementDismissPenalty
	}

	return clamp(score)
}

// HasInteracted reports whether the user has any event for the segment.
func HasInteracted(segmentID string, interactions []model.UserInteraction) bool {
	for _, in := range interactions {
		if in.SegmentID == segmentID {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
