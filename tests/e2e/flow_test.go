package e2e

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/emotion"
	"github.com/cymond/educhat/internal/engine"
	"github.com/cymond/educhat/internal/memory"
	"github.com/cymond/educhat/internal/prompt"
	"github.com/cymond/educhat/internal/session"
	pgstore "github.com/cymond/educhat/internal/store"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	testLogger, _ = zap.NewDevelopment()

	// 1. Start PostgreSQL
	pgDSN, pgCleanup, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres: %v\n", err)
		os.Exit(1)
	}
	defer pgCleanup()

	testPGStore, err = pgstore.New(pgDSN, testLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pg store: %v\n", err)
		os.Exit(1)
	}
	defer testPGStore.Close()

	// Run migrations
	if err := testPGStore.Migrate(ctx, "../../migrations"); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	// 2. Start Redis
	redisURL, redisCleanup, err := startRedis(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer redisCleanup()
	testRedisURL = redisURL

	os.Exit(m.Run())
}

func TestMigrateRerunIsNoop(t *testing.T) {
	// TestMain already migrated; the ledger must make a second pass safe.
	if err := testPGStore.Migrate(context.Background(), "../../migrations"); err != nil {
		t.Fatalf("rerun Migrate: %v", err)
	}
}

func TestStatePersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("FreshPairGetsDefaults", func(t *testing.T) {
		st, rel, err := testPGStore.LoadState(ctx, "Aino", "user-fresh")
		if err != nil {
			t.Fatalf("LoadState: %v", err)
		}
		if st.AdaptationMode != character.ModeBalanced {
			t.Errorf("mode = %s, want balanced", st.AdaptationMode)
		}
		if st.DetectedEmotion != emotion.Engaged {
			t.Errorf("emotion = %s, want engaged", st.DetectedEmotion)
		}
		if rel.Rapport != 0.5 || rel.Trust != 0.5 {
			t.Errorf("rapport/trust = %f/%f, want 0.5/0.5", rel.Rapport, rel.Trust)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		st := character.NewDynamicState()
		st.CurrentPatience = 0.9
		st.DetectedEmotion = emotion.Frustrated
		st.AdaptationMode = character.ModeSupportive
		st.MessagesThisSession = 7

		rel := character.NewRelationship()
		rel.Rapport = 0.62
		rel.Trust = 0.48
		rel.LearningStyle = character.StyleVisual
		rel.PreferredTopics = []string{"finnish", "travel"}

		if err := testPGStore.SaveState(ctx, "Aino", "user-rt", st, rel); err != nil {
			t.Fatalf("SaveState: %v", err)
		}
		got, gotRel, err := testPGStore.LoadState(ctx, "Aino", "user-rt")
		if err != nil {
			t.Fatalf("LoadState: %v", err)
		}
		if got.CurrentPatience != 0.9 || got.DetectedEmotion != emotion.Frustrated {
			t.Errorf("state = %+v, want patience 0.9 / frustrated", got)
		}
		if got.AdaptationMode != character.ModeSupportive || got.MessagesThisSession != 7 {
			t.Errorf("state = %+v, want supportive / 7 messages", got)
		}
		if gotRel.LearningStyle != character.StyleVisual {
			t.Errorf("learning style = %s, want visual", gotRel.LearningStyle)
		}
		if len(gotRel.PreferredTopics) != 2 {
			t.Errorf("preferred topics = %v, want 2 entries", gotRel.PreferredTopics)
		}
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		st := character.NewDynamicState()
		rel := character.NewRelationship()
		if err := testPGStore.SaveState(ctx, "Mase", "user-up", st, rel); err != nil {
			t.Fatalf("first save: %v", err)
		}
		st.AdaptationMode = character.ModeChallenging
		if err := testPGStore.SaveState(ctx, "Mase", "user-up", st, rel); err != nil {
			t.Fatalf("second save: %v", err)
		}
		got, _, err := testPGStore.LoadState(ctx, "Mase", "user-up")
		if err != nil {
			t.Fatalf("LoadState: %v", err)
		}
		if got.AdaptationMode != character.ModeChallenging {
			t.Errorf("mode = %s, want challenging after upsert", got.AdaptationMode)
		}
	})

	t.Run("PairsAreIsolated", func(t *testing.T) {
		got, _, err := testPGStore.LoadState(ctx, "Anna", "user-rt")
		if err != nil {
			t.Fatalf("LoadState: %v", err)
		}
		if got.DetectedEmotion == emotion.Frustrated {
			t.Error("Anna picked up Aino's state for the same user")
		}
	})
}

func TestMemoryRanking(t *testing.T) {
	ctx := context.Background()
	char, user := "Aino", "user-mem"

	seed := []struct {
		memType    memory.Type
		content    string
		importance int
	}{
		{memory.TypeGoal, "learn conversational Finnish by summer", 9},
		{memory.TypeFact, "lives in Tampere", 7},
		{memory.TypePreference, "prefers short example sentences", 6},
		{memory.TypeEmotionalContext, "gets anxious before quizzes", 2},
	}
	for _, s := range seed {
		rec := memory.NewRecord(char, user, s.memType, s.content)
		rec.Importance = s.importance
		if err := testPGStore.InsertMemory(ctx, rec); err != nil {
			t.Fatalf("InsertMemory %q: %v", s.content, err)
		}
	}

	t.Run("RankedByImportance", func(t *testing.T) {
		recs, err := testPGStore.QueryMemories(ctx, char, user, 10, 3)
		if err != nil {
			t.Fatalf("QueryMemories: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("got %d records, want 3 (importance 2 filtered)", len(recs))
		}
		for i := 1; i < len(recs); i++ {
			if recs[i].Importance > recs[i-1].Importance {
				t.Errorf("not sorted: [%d]=%d > [%d]=%d",
					i, recs[i].Importance, i-1, recs[i-1].Importance)
			}
		}
		if recs[0].Type != memory.TypeGoal {
			t.Errorf("top record type = %s, want goal", recs[0].Type)
		}
	})

	t.Run("AccessBumpPersists", func(t *testing.T) {
		recs, err := testPGStore.QueryMemories(ctx, char, user, 1, 3)
		if err != nil {
			t.Fatalf("QueryMemories: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("got %d records, want 1", len(recs))
		}
		before := recs[0].AccessCount
		beforeAccessed := recs[0].LastAccessed

		again, err := testPGStore.QueryMemories(ctx, char, user, 1, 3)
		if err != nil {
			t.Fatalf("second QueryMemories: %v", err)
		}
		if again[0].AccessCount != before+1 {
			t.Errorf("access count = %d, want %d", again[0].AccessCount, before+1)
		}
		if !again[0].LastAccessed.After(beforeAccessed) {
			t.Errorf("returned last_accessed %v not refreshed past %v",
				again[0].LastAccessed, beforeAccessed)
		}
	})

	t.Run("LimitRespected", func(t *testing.T) {
		recs, err := testPGStore.QueryMemories(ctx, char, user, 2, 1)
		if err != nil {
			t.Fatalf("QueryMemories: %v", err)
		}
		if len(recs) != 2 {
			t.Errorf("got %d records, want 2", len(recs))
		}
	})

	t.Run("AllMemoriesLeavesCountersAlone", func(t *testing.T) {
		all, err := testPGStore.AllMemories(ctx, char, user)
		if err != nil {
			t.Fatalf("AllMemories: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("got %d records, want all 4", len(all))
		}
		counts := make(map[string]int, len(all))
		for _, r := range all {
			counts[r.ID] = r.AccessCount
		}
		if _, err := testPGStore.AllMemories(ctx, char, user); err != nil {
			t.Fatalf("second AllMemories: %v", err)
		}
		check, _ := testPGStore.AllMemories(ctx, char, user)
		for _, r := range check {
			if r.AccessCount != counts[r.ID] {
				t.Errorf("record %s count changed %d -> %d", r.ID, counts[r.ID], r.AccessCount)
			}
		}
	})
}

func TestTranscript(t *testing.T) {
	ctx := context.Background()
	char, user := "Bee", "user-log"

	turns := []prompt.Turn{
		prompt.NewTurn("user", "moi, can we practice greetings"),
		prompt.NewTurn("character", "Moi moi! Let's start with hyvää huomenta."),
		prompt.NewTurn("user", "hyvää huomenta!"),
	}
	for i, turn := range turns {
		turn.Timestamp = turn.Timestamp.Add(time.Duration(i) * time.Second)
		if err := testPGStore.AppendTurn(ctx, char, user, turn); err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
	}

	got, err := testPGStore.RecentTurns(ctx, char, user, 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d turns, want 3", len(got))
	}
	if got[0].Sender != "user" || got[2].Content != "hyvää huomenta!" {
		t.Errorf("turns out of order: %+v", got)
	}

	limited, err := testPGStore.RecentTurns(ctx, char, user, 2)
	if err != nil {
		t.Fatalf("limited RecentTurns: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d turns, want 2", len(limited))
	}
	if limited[0].Sender != "character" {
		t.Errorf("limit should keep the newest turns, got %+v", limited)
	}
}

func TestSessionCacheAgainstRedis(t *testing.T) {
	ctx := context.Background()

	cache, err := session.New(testRedisURL, 30*time.Minute, 4, testLogger)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	defer cache.Close()

	char, user := "Anna", "user-cache"
	for i := 0; i < 6; i++ {
		turn := prompt.NewTurn("user", fmt.Sprintf("message %d", i))
		if err := cache.AppendTurn(ctx, char, user, turn); err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
	}

	turns, err := cache.RecentTurns(ctx, char, user)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("ring holds %d turns, want 4", len(turns))
	}
	if turns[0].Content != "message 2" || turns[3].Content != "message 5" {
		t.Errorf("ring kept wrong window: %+v", turns)
	}

	for want := 1; want <= 3; want++ {
		n, err := cache.BumpMessageCount(ctx, char, user)
		if err != nil {
			t.Fatalf("BumpMessageCount: %v", err)
		}
		if n != want {
			t.Errorf("count = %d, want %d", n, want)
		}
	}

	if err := cache.Reset(ctx, char, user); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	turns, err = cache.RecentTurns(ctx, char, user)
	if err != nil {
		t.Fatalf("RecentTurns after reset: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("ring not cleared, %d turns remain", len(turns))
	}
}

func TestConversationFlow(t *testing.T) {
	ctx := context.Background()
	user := "user-flow"

	cache, err := session.New(testRedisURL, 30*time.Minute, 8, testLogger)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	defer cache.Close()

	registry := character.NewRegistry(testLogger)
	for _, p := range character.BuiltinProfiles() {
		registry.Register(p)
	}

	model := &scriptedModel{script: []string{
		"Hienoa! Family roots are the best reason. Let's start with greetings.",
		"No worries, partitive case trips everyone up. Let's slow down.",
	}}

	eng := engine.New(registry, testPGStore, testPGStore, testPGStore,
		cache, model, engine.Options{}, testLogger)

	t.Run("FirstTurn", func(t *testing.T) {
		result, err := eng.ProcessTurn(ctx, "Aino", user,
			"I want to speak Finnish with my family in Helsinki")
		if err != nil {
			t.Fatalf("ProcessTurn: %v", err)
		}
		if result.Metadata.Fallback {
			t.Fatal("unexpected fallback on a healthy model")
		}
		if result.Metadata.Emotion != emotion.Engaged {
			t.Errorf("emotion = %s, want engaged", result.Metadata.Emotion)
		}
		if result.Metadata.MemoriesStored == 0 {
			t.Error("expected the stated goal to be stored as a memory")
		}
	})

	t.Run("SecondTurnRecallsAndAdapts", func(t *testing.T) {
		result, err := eng.ProcessTurn(ctx, "Aino", user,
			"I'm stuck and frustrated with the partitive case")
		if err != nil {
			t.Fatalf("ProcessTurn: %v", err)
		}
		if result.Metadata.Emotion != emotion.Frustrated {
			t.Errorf("emotion = %s, want frustrated", result.Metadata.Emotion)
		}
		if result.Metadata.AdaptationMode != character.ModeSupportive {
			t.Errorf("mode = %s, want supportive", result.Metadata.AdaptationMode)
		}
		if result.Metadata.MemoriesUsed == 0 {
			t.Error("expected first turn's memories to be recalled")
		}
		req := model.lastRequest()
		if req == nil {
			t.Fatal("model never called")
		}
		if !strings.Contains(req.System, "speak Finnish") {
			t.Error("recalled goal missing from the assembled prompt")
		}
		if req.MaxTokens < prompt.MinBudget || req.MaxTokens > prompt.MaxBudget {
			t.Errorf("budget %d outside [%d, %d]", req.MaxTokens, prompt.MinBudget, prompt.MaxBudget)
		}
	})

	t.Run("StateSurvivedBothTurns", func(t *testing.T) {
		st, rel, err := testPGStore.LoadState(ctx, "Aino", user)
		if err != nil {
			t.Fatalf("LoadState: %v", err)
		}
		if st.AdaptationMode != character.ModeSupportive {
			t.Errorf("persisted mode = %s, want supportive", st.AdaptationMode)
		}
		if st.MessagesThisSession != 2 {
			t.Errorf("messages this session = %d, want 2", st.MessagesThisSession)
		}
		// engaged drifts +0.05 rapport/+0.03 trust, frustrated -0.02 trust
		if math.Abs(rel.Rapport-0.55) > 1e-9 {
			t.Errorf("rapport = %f, want 0.55", rel.Rapport)
		}
		if math.Abs(rel.Trust-0.51) > 1e-9 {
			t.Errorf("trust = %f, want 0.51", rel.Trust)
		}
	})

	t.Run("TranscriptAndSessionAgree", func(t *testing.T) {
		durable, err := testPGStore.RecentTurns(ctx, "Aino", user, 10)
		if err != nil {
			t.Fatalf("RecentTurns: %v", err)
		}
		if len(durable) != 4 {
			t.Fatalf("durable transcript has %d turns, want 4", len(durable))
		}
		cached, err := cache.RecentTurns(ctx, "Aino", user)
		if err != nil {
			t.Fatalf("cached RecentTurns: %v", err)
		}
		if len(cached) != 4 {
			t.Fatalf("session ring has %d turns, want 4", len(cached))
		}
		if durable[0].Sender != "user" || durable[1].Sender != "Aino" {
			t.Errorf("turn order wrong: %+v", durable)
		}
	})
}
