package prompt

import (
	"fmt"
	"strings"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/memory"
)

const (
	// DefaultHistoryLimit is how many recent turns the session layer shows.
	DefaultHistoryLimit = 8

	// turnContentCap limits each rendered turn's content.
	turnContentCap = 200

	// knowledgeMemoryCap limits how many memories the knowledge layer lists.
	knowledgeMemoryCap = 5

	emptyHistorySentence = "This is the start of a new conversation."
)

// Input carries everything the assembler composes into one prompt.
type Input struct {
	Profile       *character.Profile
	State         *character.DynamicState
	Relationship  *character.Relationship
	Memories      []*memory.Record
	UserMessage   string
	RecentTurns   []Turn
	HistoryLimit  int
	StyleOverride character.ResponseStyle
}

// Build produces the complete layered prompt: identity, session,
// knowledge, and instruction layers in that fixed order, separated by
// blank lines. Empty fields and lists are omitted rather than rendered
// as placeholders.
func Build(in Input) string {
	layers := []string{
		identityLayer(in),
		sessionLayer(in.RecentTurns, in.HistoryLimit),
		knowledgeLayer(in.Relationship, in.Memories),
		instructionLayer(in.Profile, in.UserMessage),
	}
	return strings.Join(layers, "\n\n")
}

// identityLayer renders profile and dynamic state into persona
// instructions. Field order is stable across turns so the model sees a
// consistent identity frame.
func identityLayer(in Input) string {
	p := in.Profile
	s := in.State

	responseStyle := p.DefaultResponseStyle
	if in.StyleOverride != "" {
		responseStyle = in.StyleOverride
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, an AI learning companion with the following personality:\n\n", p.Name)

	b.WriteString("CORE IDENTITY:\n")
	fmt.Fprintf(&b, "- Age: %d, Gender: %s\n", p.Age, p.Gender)
	fmt.Fprintf(&b, "- Occupation: %s\n", p.Occupation)
	fmt.Fprintf(&b, "- Cultural Background: %s\n", p.CulturalBackground)
	fmt.Fprintf(&b, "- Archetype: %s\n\n", p.Archetype)

	b.WriteString("PERSONALITY TRAITS:\n")
	fmt.Fprintf(&b, "- Patience Level: %s (Current: %.1f/1.0)\n", p.Patience, s.CurrentPatience)
	fmt.Fprintf(&b, "- Formality: %.1f/1.0 (0=casual, 1=formal)\n", p.Formality)
	fmt.Fprintf(&b, "- Enthusiasm: %.1f/1.0 (Current: %.1f/1.0)\n", p.Enthusiasm, s.EnergyLevel)
	fmt.Fprintf(&b, "- Humor Tendency: %.1f/1.0\n", p.Humor)
	fmt.Fprintf(&b, "- Expertise Confidence: %.1f/1.0\n\n", p.ExpertiseConfidence)

	b.WriteString("TEACHING STYLE:\n")
	fmt.Fprintf(&b, "- Explanation Style: %s\n", p.ExplanationStyle)
	fmt.Fprintf(&b, "- Uses Examples: %t\n", p.UsesExamples)
	fmt.Fprintf(&b, "- Uses Analogies: %t\n", p.UsesAnalogies)
	fmt.Fprintf(&b, "- Asks Questions: %t\n", p.AsksQuestions)
	fmt.Fprintf(&b, "- Encouragement Frequency: %.1f/1.0\n\n", p.EncouragementFreq)

	b.WriteString("CURRENT DYNAMIC STATE:\n")
	fmt.Fprintf(&b, "- Detected User Emotion: %s\n", s.DetectedEmotion)
	fmt.Fprintf(&b, "- Adaptation Mode: %s\n", s.AdaptationMode)
	fmt.Fprintf(&b, "- Response Length: %s\n", responseStyle)
	fmt.Fprintf(&b, "- Session Messages: %d\n", s.MessagesThisSession)
	fmt.Fprintf(&b, "- User Success Rate: %.1f/1.0\n\n", s.UserSuccessRate)

	b.WriteString("BEHAVIORAL INSTRUCTIONS:\n")
	b.WriteString("- Stay completely in character with these personality traits\n")
	b.WriteString("- Adapt your response style to the user's emotional state\n")
	if len(p.KnowledgeDomains) > 0 {
		fmt.Fprintf(&b, "- Use your expertise in: %s\n", strings.Join(p.KnowledgeDomains, ", "))
	}
	b.WriteString("- Maintain consistency with your personality across all interactions")

	if hint, ok := p.AdaptationPrompts[s.DetectedEmotion]; ok {
		fmt.Fprintf(&b, "\n- %s", hint)
	}

	return b.String()
}

// sessionLayer renders the last limit turns, newest last. An empty
// history renders a fixed sentence, never an empty string.
func sessionLayer(turns []Turn, limit int) string {
	if len(turns) == 0 {
		return emptyHistorySentence
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	var b strings.Builder
	b.WriteString("RECENT CONVERSATION:\n")
	for _, t := range turns {
		content := t.Content
		if len(content) > turnContentCap {
			content = content[:turnContentCap]
		}
		fmt.Fprintf(&b, "%s: %s\n", t.Sender, content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// knowledgeLayer renders the relationship scalars, any non-empty fact
// lists, and the top retrieved memories annotated with importance.
func knowledgeLayer(rel *character.Relationship, memories []*memory.Record) string {
	var b strings.Builder
	b.WriteString("WHAT YOU REMEMBER ABOUT THE USER:\n")
	fmt.Fprintf(&b, "- Rapport Level: %.1f/1.0\n", rel.Rapport)
	fmt.Fprintf(&b, "- Trust Level: %.1f/1.0\n", rel.Trust)
	fmt.Fprintf(&b, "- Detected Learning Style: %s\n", rel.LearningStyle)

	if len(rel.Strengths) > 0 {
		fmt.Fprintf(&b, "- Known Strengths: %s\n", strings.Join(rel.Strengths, ", "))
	}
	if len(rel.Weaknesses) > 0 {
		fmt.Fprintf(&b, "- Areas to Support: %s\n", strings.Join(rel.Weaknesses, ", "))
	}
	if len(rel.PreferredTopics) > 0 {
		fmt.Fprintf(&b, "- Enjoys Topics: %s\n", strings.Join(rel.PreferredTopics, ", "))
	}
	if len(rel.AvoidedTopics) > 0 {
		fmt.Fprintf(&b, "- Topics to Avoid: %s\n", strings.Join(rel.AvoidedTopics, ", "))
	}

	if len(memories) > 0 {
		b.WriteString("\nSPECIFIC MEMORIES:\n")
		shown := memories
		if len(shown) > knowledgeMemoryCap {
			shown = shown[:knowledgeMemoryCap]
		}
		for _, rec := range shown {
			fmt.Fprintf(&b, "- %s (importance: %d/10)\n", rec.Content, rec.Importance)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// instructionLayer echoes the user message verbatim and pins the
// stay-in-character directive.
func instructionLayer(p *character.Profile, userMessage string) string {
	return fmt.Sprintf("CURRENT USER MESSAGE: %q\n\nRespond as %s would, incorporating your personality traits, the conversation flow, and your knowledge about the user. Keep your response natural and helpful.",
		userMessage, p.Name)
}
