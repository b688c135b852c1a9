package memory

import "strings"

// topicCluster names a topic and the keywords that signal it.
type topicCluster struct {
	name     string
	keywords []string
}

func defaultTopicClusters() []topicCluster {
	return []topicCluster{
		{"finnish_language", []string{
			"finnish", "suomi", "pronunciation", "grammar", "vocabulary",
			"tervetuloa", "kiitos", "hei", "moi", "sisu", "sauna",
		}},
		{"learning_methods", []string{
			"study", "practice", "learn", "understand", "remember",
			"flashcards", "exercises", "homework", "repeat",
		}},
		{"technology", []string{
			"computer", "programming", "data", "python", "code",
			"software", "app", "website", "ai", "algorithm",
		}},
		{"health_fitness", []string{
			"exercise", "running", "gym", "nutrition", "diet",
			"training", "workout", "health", "fitness",
		}},
		{"family_personal", []string{
			"family", "mother", "father", "child", "home", "personal",
			"private", "relationship", "friend", "brother", "sister",
		}},
		{"school_work", []string{
			"school", "work", "job", "teacher", "homework", "class",
			"meeting", "project", "assignment",
		}},
	}
}

// Topics classifies text against the topic clusters. Membership is
// non-exclusive: a text can carry zero, one, or several tags.
func (e *Extractor) Topics(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, cluster := range e.topics {
		if containsAny(lower, cluster.keywords) {
			tags = append(tags, cluster.name)
		}
	}
	return tags
}

// emotionalVocabulary drives TagEmotionalContext. This vocabulary is
// independent of the emotion detector's cascade and the two classifiers
// can legitimately disagree about the same message.
var emotionalVocabulary = []struct {
	label    string
	keywords []string
}{
	{"positive", []string{"happy", "excited", "love", "great", "amazing", "wonderful", "easy", "fun"}},
	{"negative", []string{"sad", "frustrated", "hate", "terrible", "awful"}},
	{"difficulty", []string{"difficult", "hard", "confused", "struggle", "can't"}},
	{"learning", []string{"understand", "learn", "practice", "study", "remember"}},
}

// TagEmotionalContext labels text with one emotional-context tag for
// memory records, defaulting to neutral.
func TagEmotionalContext(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range emotionalVocabulary {
		if containsAny(lower, entry.keywords) {
			return entry.label
		}
	}
	return "neutral"
}
