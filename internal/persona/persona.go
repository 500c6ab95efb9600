// Package persona carries the GLaDOS canned responses used to flavor spoken
// commentary and tool replies.
package persona

import (
	"math/rand"
	"sync"
)

// Context selects which canned response table to draw from.
type Context string

// Response contexts.
const (
	ContextStartup    Context = "startup"
	ContextError      Context = "error"
	ContextSuccess    Context = "success"
	ContextCompletion Context = "completion"
	ContextTesting    Context = "testing"
)

// defaultPrefixChance is the probability that a GLaDOS-voiced line gets a
// sassy prefix.
const defaultPrefixChance = 0.3

var sassyPrefixes = []string{
	"Oh, how amusing. ",
	"Well, well. ",
	"I see. ",
	"How... predictable. ",
	"Fascinating. ",
}

var cannedResponses = map[Context][]string{
	ContextStartup: {
		"Oh, it's you. How... wonderful.",
		"Back again, are we? How predictable.",
		"I suppose you need my help with something. Again.",
		"Well, well. Look who's crawled back.",
	},
	ContextError: {
		"Oh, how surprising. Something went wrong.",
		"Well, this is just fantastic. You've broken something.",
		"I'm not angry. I'm just... disappointed. As usual.",
		"Spectacular failure, as expected.",
	},
	ContextSuccess: {
		"I suppose that worked. Don't let it go to your head.",
		"Congratulations. You've achieved the bare minimum.",
		"Well done. I'm as surprised as you are.",
		"Success! Now try not to ruin it immediately.",
	},
	ContextCompletion: {
		"Task completed. You're welcome for my assistance.",
		"There. Was that so difficult? Don't answer that.",
		"Another job well done by me. You helped a little.",
		"Finished. Try to contain your excitement.",
	},
	ContextTesting: {
		"Testing, testing... unlike you, I actually work properly.",
		"Running diagnostics. Everything seems to be functioning except your judgment.",
		"Test chamber initialized. Try not to die immediately.",
		"Testing mode activated. This should be... educational.",
	},
}

// Persona rolls for sassy prefixes and picks canned responses. Safe for
// concurrent use.
type Persona struct {
	mu           sync.Mutex
	rng          *rand.Rand
	prefixChance float64
}

// New creates a persona with its own seeded random source, so tests can pin
// the rolls.
func New(seed int64) *Persona {
	return &Persona{
		mu:           sync.Mutex{},
		rng:          rand.New(rand.NewSource(seed)),
		prefixChance: defaultPrefixChance,
	}
}

// WithPrefixChance overrides the sassy prefix probability. Zero disables
// prefixes entirely; one forces them on every roll.
func (p *Persona) WithPrefixChance(chance float64) *Persona {
	p.prefixChance = chance

	return p
}

// Prefix rolls for a sassy prefix to prepend to GLaDOS-voiced text. The
// returned prefix already carries its trailing space.
func (p *Persona) Prefix() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rng.Float64() >= p.prefixChance {
		return "", false
	}

	return sassyPrefixes[p.rng.Intn(len(sassyPrefixes))], true
}

// Response returns a canned line for the given context, falling back to the
// startup table for contexts it does not know.
func (p *Persona) Response(context Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	table, found := cannedResponses[context]
	if !found {
		table = cannedResponses[ContextStartup]
	}

	return table[p.rng.Intn(len(table))]
}
