package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTopic(t *testing.T) {
	for _, topic := range AllTopics() {
		assert.True(t, ValidTopic(topic), topic)
	}
	assert.False(t, ValidTopic("Astrology"))
	assert.False(t, ValidTopic(""))
	// Exact match only.
	assert.False(t, ValidTopic("ai & machine learning"))
}

func TestFilterTopics(t *testing.T) {
	got := FilterTopics([]string{"AI & Machine Learning", "Astrology", "Policy & Regulation", ""})
	assert.Equal(t, []string{"AI & Machine Learning", "Policy & Regulation"}, got)

	assert.Empty(t, FilterTopics([]string{"nope"}))
	assert.Empty(t, FilterTopics(nil))
}

func TestValidInteractionType(t *testing.T) {
	for _, it := range AllInteractionTypes() {
		assert.True(t, ValidInteractionType(it))
	}
	assert.False(t, ValidInteractionType("upvote"))
}
