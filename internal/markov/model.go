package markov

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// startMarker pads the context window before the first token of a
	// message. It cannot collide with real tokens: whitespace splitting
	// never produces a NUL byte token.
	startMarker = "\x00"

	// contextSep joins context tokens into a table key.
	contextSep = "\x1f"

	defaultOrder         = 1
	defaultMaxReplyWords = 50
)

// Options configures a Model. Zero values fall back to defaults.
type Options struct {
	Order            int // context window size, minimum 1
	MinWords         int // messages shorter than this are not learned
	CaseSensitive    bool
	StripPunctuation bool
	MaxReplyWords    int // hard cap on generated reply length
	Rand             *rand.Rand
}

// Model is a word-sequence model for one chat user: a transition table
// from a context of the last Order tokens to observed successor counts.
// All methods are safe for concurrent use.
type Model struct {
	mu               sync.Mutex
	order            int
	minWords         int
	caseSensitive    bool
	stripPunctuation bool
	maxReplyWords    int
	rng              *rand.Rand
	table            map[string]map[string]uint32
}

// New creates an empty Model.
func New(opts Options) *Model {
	if opts.Order < 1 {
		opts.Order = defaultOrder
	}
	if opts.MinWords < 0 {
		opts.MinWords = 0
	}
	if opts.MaxReplyWords < 1 {
		opts.MaxReplyWords = defaultMaxReplyWords
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Model{
		order:            opts.Order,
		minWords:         opts.MinWords,
		caseSensitive:    opts.CaseSensitive,
		stripPunctuation: opts.StripPunctuation,
		maxReplyWords:    opts.MaxReplyWords,
		rng:              opts.Rand,
		table:            make(map[string]map[string]uint32),
	}
}

// startContext returns the synthetic start-of-sequence context.
func (m *Model) startContext() []string {
	ctx := make([]string, m.order)
	for i := range ctx {
		ctx[i] = startMarker
	}
	return ctx
}

// Train tokenizes text and folds it into the transition table. Messages
// with fewer than MinWords tokens are ignored. Reports whether the
// table was mutated.
func (m *Model) Train(text string) bool {
	tokens := Tokenize(text, m.caseSensitive, m.stripPunctuation)
	if len(tokens) == 0 || len(tokens) < m.minWords {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := m.startContext()
	for _, tok := range tokens {
		key := strings.Join(ctx, contextSep)
		successors := m.table[key]
		if successors == nil {
			successors = make(map[string]uint32)
			m.table[key] = successors
		}
		successors[tok]++
		ctx = append(ctx[1:], tok)
	}
	return true
}

// Respond generates a reply in the learned style. The stimulus text only
// seeds the starting context: the longest suffix of its tokens that is a
// known context wins, otherwise generation starts from the synthetic
// start-of-sequence context. Generation walks the table with weighted
// random sampling until a context has no successors or MaxReplyWords is
// reached. An untrained model returns "".
func (m *Model) Respond(text string) string {
	stimulus := Tokenize(text, m.caseSensitive, m.stripPunctuation)

	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := m.seedContext(stimulus)
	var out []string
	for len(out) < m.maxReplyWords {
		successors := m.table[strings.Join(ctx, contextSep)]
		if len(successors) == 0 {
			break
		}
		next := m.sample(successors)
		out = append(out, next)
		ctx = append(ctx[1:], next)
	}
	return strings.Join(out, " ")
}

// seedContext picks the starting context for generation. Caller holds mu.
func (m *Model) seedContext(stimulus []string) []string {
	for n := min(m.order, len(stimulus)); n >= 1; n-- {
		ctx := m.startContext()
		copy(ctx[m.order-n:], stimulus[len(stimulus)-n:])
		if _, ok := m.table[strings.Join(ctx, contextSep)]; ok {
			return ctx
		}
	}
	return m.startContext()
}

// sample picks one successor with probability proportional to its count.
// Tokens are scanned in sorted order with a cumulative weight walk, so a
// fixed random source yields a fixed pick. Caller holds mu.
func (m *Model) sample(successors map[string]uint32) string {
	tokens := make([]string, 0, len(successors))
	var total int64
	for tok, count := range successors {
		tokens = append(tokens, tok)
		total += int64(count)
	}
	sort.Strings(tokens)

	r := m.rng.Int63n(total)
	for _, tok := range tokens {
		c := int64(successors[tok])
		if r < c {
			return tok
		}
		r -= c
	}
	return tokens[len(tokens)-1]
}

// Stats returns the number of known contexts and total observations.
func (m *Model) Stats() (contexts int, observations uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contexts = len(m.table)
	for _, successors := range m.table {
		for _, count := range successors {
			observations += uint64(count)
		}
	}
	return contexts, observations
}

// Snapshot exports a deep copy of the model state for persistence.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := make(map[string]map[string]uint32, len(m.table))
	for key, successors := range m.table {
		copied := make(map[string]uint32, len(successors))
		for tok, count := range successors {
			copied[tok] = count
		}
		table[key] = copied
	}
	return Snapshot{
		Order:            m.order,
		MinWords:         m.minWords,
		CaseSensitive:    m.caseSensitive,
		StripPunctuation: m.stripPunctuation,
		Table:            table,
	}
}

// Restore replaces the model state wholesale from a snapshot. An empty
// or invalid snapshot (Order < 1) resets to an empty table and keeps the
// model's configured parameters, so absent persisted state is never an
// error.
func (m *Model) Restore(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Order < 1 {
		m.table = make(map[string]map[string]uint32)
		return
	}

	m.order = s.Order
	m.minWords = s.MinWords
	m.caseSensitive = s.CaseSensitive
	m.stripPunctuation = s.StripPunctuation
	m.table = make(map[string]map[string]uint32, len(s.Table))
	for key, successors := range s.Table {
		copied := make(map[string]uint32, len(successors))
		for tok, count := range successors {
			copied[tok] = count
		}
		m.table[key] = copied
	}
}
