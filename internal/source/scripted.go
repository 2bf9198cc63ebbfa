// Package source provides the generation backends the engine drives: a
// deterministic scripted source used by default and in tests, and an
// in-process llama.cpp source behind the 'llama' build tag.
package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"inferd/internal/engine"
)

// ScriptedConfig tunes the scripted source.
type ScriptedConfig struct {
	// Delay is the pause before each fragment, simulating decode
	// latency. Zero emits as fast as the consumer drains.
	Delay time.Duration
}

// Scripted is a deterministic source producing topic-keyed template text,
// chunked word by word. It exists so the whole stack can run and be
// tested without model weights.
type Scripted struct {
	delay time.Duration
}

// NewScripted returns a scripted source with no inter-fragment delay.
func NewScripted() *Scripted {
	return NewScriptedWithConfig(ScriptedConfig{})
}

// NewScriptedWithConfig returns a scripted source using cfg.
func NewScriptedWithConfig(cfg ScriptedConfig) *Scripted {
	return &Scripted{delay: cfg.Delay}
}

// Open prepares a session. The path only names the session; the engine
// has already probed that the resource exists.
func (s *Scripted) Open(modelPath string) (engine.Session, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	return &scriptedSession{delay: s.delay}, nil
}

type scriptedSession struct {
	delay time.Duration
}

func (s *scriptedSession) Generate(ctx context.Context, prompt string, p engine.Params, emit func(string) error) error {
	text := responseFor(prompt)
	for _, chunk := range chunkText(text) {
		if s.delay > 0 {
			t := time.NewTimer(s.delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *scriptedSession) Close() error { return nil }

// chunkText splits text into word-sized fragments, each keeping its
// trailing separator, so concatenating the fragments reproduces the input
// exactly.
func chunkText(s string) []string {
	var chunks []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\n' {
			chunks = append(chunks, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

// topicScripts pairs keyword groups with canned answers, matched in
// order against the lowercased prompt.
var topicScripts = []struct {
	keywords []string
	text     string
}{
	{
		[]string{"math", "equation", "algebra", "calculus", "geometry", "theorem", "integral"},
		"A good way into a problem like this is to name the quantities first and only then look for relations between them. " +
			"Once the unknowns are explicit, each condition in the problem becomes an equation, and the question reduces to solving the resulting system. " +
			"Checking the answer against a simple special case catches most algebra slips.",
	},
	{
		[]string{"physics", "quantum", "gravity", "relativity", "energy", "momentum", "particle"},
		"Physical questions usually come down to identifying which quantities are conserved in the situation you describe. " +
			"Energy and momentum bookkeeping fixes most of the behavior before any detailed dynamics enter. " +
			"From there, the scale of the system tells you whether a classical or quantum description is the right tool.",
	},
	{
		[]string{"chemistry", "molecule", "reaction", "element", "compound", "acid", "bond"},
		"Start from the electron structure of the species involved, since bonding and reactivity both follow from it. " +
			"Balancing the reaction then accounts for every atom and charge on both sides. " +
			"Conditions such as temperature and concentration shift where the equilibrium settles, not what the mechanism is.",
	},
	{
		[]string{"biology", "cell", "dna", "evolution", "organism", "protein", "gene"},
		"In living systems the informative question is what function a structure serves and how it is regulated. " +
			"Information flows from genes to proteins, but feedback at every stage decides how much of each product the cell actually makes. " +
			"Comparing related organisms is often the quickest way to see which parts of a mechanism are essential.",
	},
	{
		[]string{"history", "ancient", "empire", "revolution", "war", "century", "medieval"},
		"Events of that period are easiest to understand through the pressures the main actors were under rather than through their stated intentions. " +
			"Trade routes, harvests and succession disputes explain more turning points than individual decisions do. " +
			"Primary sources disagree, so historians weigh who wrote each account and what they stood to gain.",
	},
	{
		[]string{"literature", "novel", "poem", "poetry", "author", "shakespeare", "writer"},
		"A useful reading starts with who is telling the story and what that narrator cannot or will not say. " +
			"Imagery tends to cluster around the work's central tension, so recurring figures are worth tracking across chapters. " +
			"Knowing the period's conventions shows where the author follows the form and where the departures carry the meaning.",
	},
	{
		[]string{"computer", "program", "algorithm", "software", "code", "network", "database"},
		"Before optimizing anything, pin down the data structures, because they decide which operations are cheap and which are ruinous. " +
			"An algorithm's complexity bounds matter mostly at the margins; constant factors and memory locality dominate typical workloads. " +
			"Clear interfaces between components keep a change in one part from rippling through the rest of the system.",
	},
}

// generalScript answers prompts that match no topic.
const generalScript = "That depends on a few details, so here is the general shape of an answer. " +
	"Break the question into the part that is factual and the part that is a judgement call, settle the factual part first, and the remaining choice usually becomes much smaller. " +
	"If you can share more specifics, the answer can be made concrete."

// responseFor picks the scripted answer whose topic matches the prompt.
func responseFor(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, t := range topicScripts {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.text
			}
		}
	}
	return generalScript
}
