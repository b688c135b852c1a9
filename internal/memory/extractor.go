package memory

import (
	"regexp"
	"strings"
)

// FallbackMarker is the phrase every canned fallback response carries.
// Extraction refuses to mine responses containing it so that placeholder
// text never enters long-term memory.
const FallbackMarker = "connection issues"

// IsFallback reports whether a character response is a canned fallback.
func IsFallback(characterResponse string) bool {
	return strings.Contains(characterResponse, FallbackMarker)
}

// typePatterns binds a memory type to its extraction templates. Order is
// fixed so extraction output is deterministic for a given turn.
type typePatterns struct {
	memType  Type
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile("(?i)"+e))
	}
	return out
}

// Extractor pattern-matches conversation turns into memory records. It is
// stateless; callers persist whatever it returns.
type Extractor struct {
	extractors []typePatterns
	topics     []topicCluster
}

// NewExtractor builds an extractor with the built-in templates.
func NewExtractor() *Extractor {
	return &Extractor{
		extractors: []typePatterns{
			{TypePreference, compileAll(
				`I (like|love|enjoy|prefer) (.+)`,
				`I (don't like|hate|dislike) (.+)`,
				`I usually (.+)`,
				`I always (.+)`,
				`My favorite (.+) is (.+)`,
			)},
			{TypeLearningPattern, compileAll(
				`I learn best when (.+)`,
				`I understand better if (.+)`,
				`Can you explain (.+) more simply`,
				`I'm confused about (.+)`,
				`That makes sense now`,
				`I need more practice with (.+)`,
			)},
			{TypeFact, compileAll(
				`I am (.+)`,
				`I work as (.+)`,
				`I live in (.+)`,
				`My (.+) is (.+)`,
				`I have (.+)`,
				`I study (.+)`,
				`I'm learning (.+)`,
			)},
			{TypeGoal, compileAll(
				`I want to (.+)`,
				`I'm trying to (.+)`,
				`My goal is (.+)`,
				`I hope to (.+)`,
				`I need to (.+)`,
			)},
			{TypeEmotionalContext, compileAll(
				`I'm (excited|frustrated|confused|happy|sad|worried) (.+)`,
				`That's (amazing|terrible|confusing|helpful|difficult) (.+)`,
				`I feel (.+) about (.+)`,
			)},
		},
		topics: defaultTopicClusters(),
	}
}

// correctionMarkers in a character response signal the user was corrected.
var correctionMarkers = []string{"actually", "correct"}

// understandingMarkers in a user message signal a learning success.
var understandingMarkers = []string{"i understand", "makes sense", "i see", "thank you"}

// Extract runs every template against the turn and returns zero or more
// candidate records. It has no side effects; fallback responses yield
// nothing at all.
func (e *Extractor) Extract(userMessage, characterResponse, characterName, userID string) []*Record {
	if IsFallback(characterResponse) {
		return nil
	}

	var records []*Record

	topics := e.Topics(userMessage)
	emotional := TagEmotionalContext(userMessage)

	for _, tp := range e.extractors {
		for _, re := range tp.patterns {
			for _, match := range re.FindAllString(userMessage, -1) {
				content := cleanContent(match)
				rec := NewRecord(characterName, userID, tp.memType, content)
				rec.Importance = scoreImportance(tp.memType, content)
				rec.Topics = topics
				rec.EmotionalContext = emotional
				records = append(records, rec)
			}
		}
	}

	responseLower := strings.ToLower(characterResponse)
	for _, marker := range correctionMarkers {
		if strings.Contains(responseLower, marker) {
			content := cleanContent("Corrected user about: " + truncate(userMessage, 50))
			rec := NewRecord(characterName, userID, TypeCorrection, content)
			rec.Importance = scoreImportance(TypeCorrection, content)
			rec.Topics = topics
			rec.EmotionalContext = "learning"
			records = append(records, rec)
			break
		}
	}

	messageLower := strings.ToLower(userMessage)
	for _, marker := range understandingMarkers {
		if strings.Contains(messageLower, marker) {
			content := cleanContent("User understood: " + truncate(characterResponse, 50))
			rec := NewRecord(characterName, userID, TypeAchievement, content)
			rec.Importance = scoreImportance(TypeAchievement, content)
			rec.Topics = e.Topics(characterResponse)
			rec.EmotionalContext = "positive"
			records = append(records, rec)
			break
		}
	}

	return records
}

// cleanContent collapses whitespace and truncates to MaxContentLen.
func cleanContent(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) > MaxContentLen {
		content = content[:MaxContentLen] + "..."
	}
	return content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
