package graph

import (
	"strings"
	"unicode"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// stage is the sibling-ordering classification.
type stage int

const (
	stageNone stage = iota
	stageEarly
	stageLate
)

// Stage vocabulary stems, matched as word prefixes so "booking" hits "book"
// and "confirmed" hits "confirm".
var (
	earlyStems = []string{"plan", "schedule", "book", "reserve", "setup", "prepare"}
	lateStems  = []string{"finalize", "confirm", "verify", "execute", "deliver"}
)

// classifyStage decides early vs late from the first vocabulary word in
// name+description. The leading verb names the action, so first match wins
// and a task mentioning both vocabularies stays unambiguous.
func classifyStage(t types.Task) stage {
	for _, word := range tokenize(t.Name + " " + t.Description) {
		if matchesAny(word, earlyStems) {
			return stageEarly
		}
		if matchesAny(word, lateStems) {
			return stageLate
		}
	}
	return stageNone
}

// flowCategory is the domain-flow classification.
type flowCategory int

const (
	flowNone flowCategory = iota
	flowBooking
	flowContract
	flowPlanning
	flowCoordination
	flowSetup
	flowExecution
)

// Flow vocabulary stems per category. The stem sets are disjoint, so each
// word maps to at most one category and a task lands in exactly one; the
// rule digraph over categories is acyclic, so flow edges alone can never
// form a cycle.
var flowStems = []struct {
	category flowCategory
	stems    []string
}{
	{flowBooking, []string{"book", "reserve"}},
	{flowContract, []string{"contract", "sign", "agreement"}},
	{flowPlanning, []string{"plan", "schedule"}},
	{flowCoordination, []string{"coordinat", "liais", "arrange"}},
	{flowSetup, []string{"setup", "install", "prepare"}},
	{flowExecution, []string{"execut", "deliver", "host", "perform"}},
}

// classifyFlow assigns a single flow category, first vocabulary word wins.
func classifyFlow(t types.Task) flowCategory {
	for _, word := range tokenize(t.Name + " " + t.Description) {
		for _, fs := range flowStems {
			if matchesAny(word, fs.stems) {
				return fs.category
			}
		}
	}
	return flowNone
}

// cueSet captures the textual dependency cues found for one referenced task.
type cueSet struct {
	after    bool
	requires bool
	before   bool
}

// findCues looks for "after <name>", "requires <name>" and "before <name>"
// in a description. Names match exactly, case-insensitively.
func findCues(description, name string) cueSet {
	desc := strings.ToLower(description)
	target := strings.ToLower(name)
	return cueSet{
		after:    strings.Contains(desc, "after "+target),
		requires: strings.Contains(desc, "requires "+target),
		before:   strings.Contains(desc, "before "+target),
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchesAny(word string, stems []string) bool {
	for _, stem := range stems {
		if strings.HasPrefix(word, stem) {
			return true
		}
	}
	return false
}
