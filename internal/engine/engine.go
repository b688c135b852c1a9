// Package engine runs the chat turn pipeline: detect the user's emotion,
// adapt the character, recall memories, assemble the prompt, call the
// language model, then extract new memories and persist the updated state.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/emotion"
	"github.com/cymond/educhat/internal/memory"
	"github.com/cymond/educhat/internal/prompt"
	"github.com/cymond/educhat/internal/provider"
)

// StateStore persists per-pair dynamic state and relationship.
type StateStore interface {
	LoadState(ctx context.Context, characterName, userID string) (*character.DynamicState, *character.Relationship, error)
	SaveState(ctx context.Context, characterName, userID string, st *character.DynamicState, rel *character.Relationship) error
}

// TurnStore persists the durable conversation transcript.
type TurnStore interface {
	AppendTurn(ctx context.Context, characterName, userID string, turn prompt.Turn) error
	RecentTurns(ctx context.Context, characterName, userID string, limit int) ([]prompt.Turn, error)
}

// SessionCache holds the fast recent-turn ring and the session message
// counter. Its failures degrade to the durable store.
type SessionCache interface {
	AppendTurn(ctx context.Context, characterName, userID string, turn prompt.Turn) error
	RecentTurns(ctx context.Context, characterName, userID string) ([]prompt.Turn, error)
	BumpMessageCount(ctx context.Context, characterName, userID string) (int, error)
}

// Generator routes a generation request to a character's language model.
type Generator interface {
	Generate(ctx context.Context, characterName string, req *provider.GenerateRequest) (*provider.GenerateResponse, error)
}

// Options tunes the per-turn pipeline.
type Options struct {
	HistoryLimit  int
	MemoryLimit   int
	MinImportance int
}

func (o *Options) fill() {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = prompt.DefaultHistoryLimit
	}
	if o.MemoryLimit <= 0 {
		o.MemoryLimit = 5
	}
	if o.MinImportance <= 0 {
		o.MinImportance = memory.DefaultMinImportance
	}
}

// Engine drives one conversation turn end to end.
type Engine struct {
	registry  *character.Registry
	detector  *emotion.Detector
	extractor *memory.Extractor
	retriever *memory.Retriever

	states   StateStore
	memories memory.Store
	turns    TurnStore
	sessions SessionCache
	llm      Generator

	opts   Options
	logger *zap.Logger

	mu    sync.Mutex
	pairs map[string]*sync.Mutex
}

// New wires an Engine. sessions may be nil, in which case history and the
// session counter come from the durable store every turn.
func New(registry *character.Registry, states StateStore, memories memory.Store,
	turns TurnStore, sessions SessionCache, llm Generator, opts Options, logger *zap.Logger) *Engine {
	opts.fill()
	return &Engine{
		registry:  registry,
		detector:  emotion.NewDetector(),
		extractor: memory.NewExtractor(),
		retriever: memory.NewRetriever(memories, logger),
		states:    states,
		memories:  memories,
		turns:     turns,
		sessions:  sessions,
		llm:       llm,
		opts:      opts,
		logger:    logger,
		pairs:     make(map[string]*sync.Mutex),
	}
}

// Metadata describes what the pipeline decided during a turn.
type Metadata struct {
	Emotion           emotion.State            `json:"emotion"`
	EmotionConfidence float64                  `json:"emotion_confidence"`
	AdaptationMode    character.AdaptationMode `json:"adaptation_mode"`
	TokenBudget       int                      `json:"token_budget"`
	Temperature       float64                  `json:"temperature"`
	MemoriesUsed      int                      `json:"memories_used"`
	MemoriesStored    int                      `json:"memories_stored"`
	Engagement        float64                  `json:"engagement_score"`
	Progress          float64                  `json:"progress_score"`
	Effectiveness     float64                  `json:"effectiveness"`
	Fallback          bool                     `json:"fallback"`
}

// TurnResult is the engine's answer for one user message.
type TurnResult struct {
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}

// pairLock serializes turns for one character/user pair. Different pairs
// proceed concurrently.
func (e *Engine) pairLock(characterName, userID string) *sync.Mutex {
	key := characterName + "\x00" + userID
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.pairs[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	e.pairs[key] = l
	return l
}

// Temperature derives the sampling temperature from a profile's humor and
// formality. A funnier, less formal character samples hotter.
func Temperature(p *character.Profile) float64 {
	return math.Min(1.0, 0.7+p.Humor*0.2+(1-p.Formality)*0.1)
}

// ProcessTurn runs the full pipeline for one user message. State changes
// and new memories are persisted only after the language model responds;
// a provider failure returns the character's canned fallback and leaves
// the stored state untouched.
func (e *Engine) ProcessTurn(ctx context.Context, characterName, userID, userMessage string) (*TurnResult, error) {
	profile, err := e.registry.Get(characterName)
	if err != nil {
		return nil, err
	}

	lock := e.pairLock(characterName, userID)
	lock.Lock()
	defer lock.Unlock()

	state, rel, err := e.states.LoadState(ctx, characterName, userID)
	if err != nil {
		return nil, fmt.Errorf("load pair state: %w", err)
	}

	history := e.loadHistory(ctx, characterName, userID)

	detected := e.detector.Detect(userMessage, toEmotionTurns(history))
	styleOverride, adapted := character.Adapt(profile, state, detected.State)
	state.Clamp()

	records := e.retriever.Retrieve(ctx, characterName, userID, e.opts.MemoryLimit, e.opts.MinImportance)

	system := prompt.Build(prompt.Input{
		Profile:       profile,
		State:         state,
		Relationship:  rel,
		Memories:      records,
		UserMessage:   userMessage,
		RecentTurns:   history,
		HistoryLimit:  e.opts.HistoryLimit,
		StyleOverride: styleOverride,
	})
	budget := prompt.Budget(profile, state, userMessage, records)
	temp := Temperature(profile)

	resp, genErr := e.llm.Generate(ctx, characterName, &provider.GenerateRequest{
		System:      system,
		UserMessage: userMessage,
		MaxTokens:   budget,
		Temperature: temp,
	})

	meta := Metadata{
		Emotion:           detected.State,
		EmotionConfidence: detected.Confidence,
		AdaptationMode:    state.AdaptationMode,
		TokenBudget:       budget,
		Temperature:       temp,
		MemoriesUsed:      len(records),
	}

	if genErr != nil {
		e.logger.Warn("generation failed, using fallback",
			zap.String("character", characterName),
			zap.String("user", userID),
			zap.Bool("adapted", adapted),
			zap.Error(genErr))
		meta.Fallback = true
		text := fallbackResponse(profile, state, userMessage)
		e.scoreInteraction(&meta, userMessage, text)
		return &TurnResult{Response: text, Metadata: meta}, nil
	}

	text := strings.TrimSpace(resp.Content)
	e.scoreInteraction(&meta, userMessage, text)

	meta.MemoriesStored = e.storeMemories(ctx, characterName, userID, userMessage, text, detected.State)

	rel.Drift(detected.State)
	rel.ObserveLearningStyle(userMessage)
	state.MessagesThisSession = e.bumpSessionCount(ctx, characterName, userID, state.MessagesThisSession)
	state.Clamp()

	// The state write is the turn's durability point. If it fails the
	// turn fails, even though the model already answered; transcript and
	// session appends below stay best-effort.
	if err := e.states.SaveState(ctx, characterName, userID, state, rel); err != nil {
		return nil, fmt.Errorf("save pair state: %w", err)
	}
	e.recordTurns(ctx, characterName, userID, userMessage, text)

	return &TurnResult{Response: text, Metadata: meta}, nil
}

// loadHistory prefers the session cache and falls back to the transcript.
func (e *Engine) loadHistory(ctx context.Context, characterName, userID string) []prompt.Turn {
	if e.sessions != nil {
		turns, err := e.sessions.RecentTurns(ctx, characterName, userID)
		if err == nil {
			return turns
		}
		e.logger.Warn("session cache read failed, using transcript",
			zap.String("character", characterName), zap.Error(err))
	}
	turns, err := e.turns.RecentTurns(ctx, characterName, userID, e.opts.HistoryLimit)
	if err != nil {
		e.logger.Warn("transcript read failed, continuing without history",
			zap.String("character", characterName), zap.Error(err))
		return nil
	}
	return turns
}

func (e *Engine) bumpSessionCount(ctx context.Context, characterName, userID string, current int) int {
	if e.sessions == nil {
		return current + 1
	}
	n, err := e.sessions.BumpMessageCount(ctx, characterName, userID)
	if err != nil {
		e.logger.Warn("session counter failed",
			zap.String("character", characterName), zap.Error(err))
		return current + 1
	}
	return n
}

func (e *Engine) storeMemories(ctx context.Context, characterName, userID, userMessage, response string, detected emotion.State) int {
	recs := e.extractor.Extract(userMessage, response, characterName, userID)
	stored := 0
	for _, rec := range recs {
		if rec.EmotionalContext == "neutral" {
			rec.EmotionalContext = string(detected)
		}
		if err := e.memories.InsertMemory(ctx, rec); err != nil {
			e.logger.Warn("memory insert failed",
				zap.String("character", characterName),
				zap.String("type", string(rec.Type)),
				zap.Error(err))
			continue
		}
		stored++
	}
	return stored
}

func (e *Engine) recordTurns(ctx context.Context, characterName, userID, userMessage, response string) {
	userTurn := prompt.NewTurn("user", userMessage)
	charTurn := prompt.NewTurn(characterName, response)

	for _, t := range []prompt.Turn{userTurn, charTurn} {
		if err := e.turns.AppendTurn(ctx, characterName, userID, t); err != nil {
			e.logger.Warn("transcript append failed",
				zap.String("character", characterName), zap.Error(err))
		}
		if e.sessions != nil {
			if err := e.sessions.AppendTurn(ctx, characterName, userID, t); err != nil {
				e.logger.Warn("session append failed",
					zap.String("character", characterName), zap.Error(err))
			}
		}
	}
}

var (
	engagementIndicators = []string{"?", "how", "what", "why", "cool", "interesting", "more"}
	progressIndicators   = []string{"understand", "got it", "makes sense", "ah", "oh"}
)

// scoreInteraction fills the turn's heuristic quality scores: responses
// near 200 characters, confident emotion reads, and curious user messages
// count as effective.
func (e *Engine) scoreInteraction(meta *Metadata, userMessage, response string) {
	lower := strings.ToLower(userMessage)

	hits := 0
	for _, w := range engagementIndicators {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	meta.Engagement = math.Min(1.0, float64(hits)/3.0)

	hits = 0
	for _, w := range progressIndicators {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	meta.Progress = math.Min(1.0, float64(hits)/2.0)

	lengthScore := math.Min(1.0, float64(len(response))/200.0)
	meta.Effectiveness = (lengthScore + meta.EmotionConfidence + meta.Engagement) / 3.0
}

func toEmotionTurns(turns []prompt.Turn) []emotion.Turn {
	out := make([]emotion.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, emotion.Turn{Sender: t.Sender, Content: t.Content})
	}
	return out
}
