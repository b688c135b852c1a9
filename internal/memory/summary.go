package memory

import "strings"

// Summary is an aggregate view of everything a character remembers about
// one user.
type Summary struct {
	TotalMemories             int            `json:"total_memories"`
	ByType                    map[Type]int   `json:"by_type"`
	CommonTopics              map[string]int `json:"common_topics"`
	EmotionalPatterns         map[string]int `json:"emotional_patterns"`
	RelationshipStrength      int            `json:"relationship_strength"`
	PersonalityUnderstanding  int            `json:"personality_understanding"`
	LearningFocus             string         `json:"learning_focus"`
}

// Summarize aggregates a memory set into a Summary. An empty set yields a
// zero summary with "no memories yet" focus.
func Summarize(records []*Record) Summary {
	s := Summary{
		ByType:            make(map[Type]int),
		CommonTopics:      make(map[string]int),
		EmotionalPatterns: make(map[string]int),
	}
	if len(records) == 0 {
		s.LearningFocus = "No memories yet"
		return s
	}

	finnishCount := 0
	highImportance := 0
	for _, rec := range records {
		s.ByType[rec.Type]++

		content := strings.ToLower(rec.Content)
		if strings.Contains(content, "finnish") {
			s.CommonTopics["Finnish Learning"]++
			finnishCount++
		}
		if strings.Contains(content, "family") {
			s.CommonTopics["Family"]++
		}
		if strings.Contains(content, "goal") {
			s.CommonTopics["Goals"]++
		}
		if strings.Contains(content, "difficult") || strings.Contains(content, "confused") {
			s.EmotionalPatterns["difficulty"]++
		}
		if strings.Contains(content, "enjoy") || strings.Contains(content, "love") {
			s.EmotionalPatterns["positive"]++
		}
		if rec.Importance >= 8 {
			highImportance++
		}
	}

	s.TotalMemories = len(records)
	s.RelationshipStrength = min(len(records)/5, 10)
	s.PersonalityUnderstanding = min(len(s.ByType)*2+highImportance, 10)
	s.LearningFocus = learningFocus(finnishCount, len(records))
	return s
}

func learningFocus(finnishCount, total int) string {
	switch {
	case float64(finnishCount) > float64(total)*0.4:
		return "Finnish Language Focus"
	case finnishCount > 0:
		return "Mixed Learning with Finnish"
	default:
		return "General Learning"
	}
}
