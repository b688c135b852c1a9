package prompt

import (
	"strings"
	"testing"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/memory"
)

func TestBudgetAlwaysWithinBounds(t *testing.T) {
	messages := []string{
		"hi",
		"how do I learn Finnish grammar? can you explain with an example? why is practice important? how to study?",
		strings.Repeat("word ", 100),
		"",
	}
	var memories []*memory.Record
	for i := 0; i < 10; i++ {
		memories = append(memories, memory.NewRecord("Aino", "u1", memory.TypeFact, "x"))
	}

	for _, p := range character.BuiltinProfiles() {
		for _, mode := range []character.AdaptationMode{character.ModeBalanced, character.ModeSupportive, character.ModeChallenging} {
			s := character.NewDynamicState()
			s.AdaptationMode = mode
			for _, msg := range messages {
				for _, mems := range [][]*memory.Record{nil, memories} {
					got := Budget(p, s, msg, mems)
					if got < MinBudget || got > MaxBudget {
						t.Errorf("Budget(%s, %s, %q...) = %d outside [%d, %d]",
							p.Name, mode, msg[:min(len(msg), 20)], got, MinBudget, MaxBudget)
					}
				}
			}
		}
	}
}

func TestBudgetGrowsWithComplexity(t *testing.T) {
	p := character.NewAnna() // detailed default style keeps us off the floor
	s := character.NewDynamicState()

	short := Budget(p, s, "hi there", nil)
	long := Budget(p, s, strings.Repeat("substantive discussion point ", 15), nil)
	if long <= short {
		t.Errorf("long message budget %d not above short %d", long, short)
	}
}

func TestBudgetEducationalBoost(t *testing.T) {
	p := character.NewAnna()
	s := character.NewDynamicState()

	plain := Budget(p, s, "tell me something about your day here", nil)
	educational := Budget(p, s, "explain the grammar with an example here", nil)
	if educational <= plain {
		t.Errorf("educational budget %d not above plain %d", educational, plain)
	}
}

func TestBudgetHowToBoost(t *testing.T) {
	p := character.NewAnna()
	s := character.NewDynamicState()

	plain := Budget(p, s, "I would enjoy making pancakes today maybe", nil)
	howTo := Budget(p, s, "tell me how to make pancakes today now", nil)
	if howTo <= plain {
		t.Errorf("how-to budget %d not above plain %d", howTo, plain)
	}
}

func TestBudgetMemoryBonusCapped(t *testing.T) {
	p := character.NewAino()
	s := character.NewDynamicState()
	msg := "a message of moderate length for testing budgets"

	var three, ten []*memory.Record
	for i := 0; i < 10; i++ {
		rec := memory.NewRecord("Aino", "u1", memory.TypeFact, "x")
		ten = append(ten, rec)
		if i < 3 {
			three = append(three, rec)
		}
	}

	none := Budget(p, s, msg, nil)
	withThree := Budget(p, s, msg, three)
	withTen := Budget(p, s, msg, ten)

	if withThree-none != 75 {
		t.Errorf("3-memory bonus = %d, want 75", withThree-none)
	}
	if withTen-none != 80 {
		t.Errorf("10-memory bonus = %d, want cap at 80", withTen-none)
	}
}

func TestBudgetAdaptationModeShifts(t *testing.T) {
	p := character.NewAnna()
	msg := "walk me through planning a sustainable savings routine please"

	balanced := character.NewDynamicState()
	supportive := character.NewDynamicState()
	supportive.AdaptationMode = character.ModeSupportive
	challenging := character.NewDynamicState()
	challenging.AdaptationMode = character.ModeChallenging

	b := Budget(p, balanced, msg, nil)
	sup := Budget(p, supportive, msg, nil)
	ch := Budget(p, challenging, msg, nil)

	if !(sup < b && b < ch) {
		t.Errorf("budgets not ordered supportive(%d) < balanced(%d) < challenging(%d)", sup, b, ch)
	}
}
