package markov

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func newTestModel(opts Options) *Model {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	opts.StripPunctuation = true
	return New(opts)
}

func TestTrainBelowMinWordsIsNoop(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 3})

	before := m.Snapshot()
	if m.Train("too short") {
		t.Error("Train reported mutation for a message below MinWords")
	}
	after := m.Snapshot()

	if !reflect.DeepEqual(before, after) {
		t.Errorf("table changed: before %v, after %v", before.Table, after.Table)
	}
}

func TestTrainSuccessorCounts(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})

	if !m.Train("a b") {
		t.Fatal("Train(a b) reported no mutation")
	}
	if !m.Train("a c") {
		t.Fatal("Train(a c) reported no mutation")
	}

	got := m.Snapshot().Table["a"]
	want := map[string]uint32{"b": 1, "c": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("successors of (a): got %v, want %v", got, want)
	}
}

func TestTrainStartContext(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})
	m.Train("a b")
	m.Train("a c")

	got := m.Snapshot().Table[startMarker]
	want := map[string]uint32{"a": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("successors of start context: got %v, want %v", got, want)
	}
}

func TestRespondUntrainedReturnsEmpty(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})
	if got := m.Respond("anything at all"); got != "" {
		t.Errorf("untrained model responded %q, want empty", got)
	}
}

func TestRespondBounded(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1, MaxReplyWords: 10})
	// A cycle: "go" always follows "go", so only the cap terminates.
	m.Train("go go go")

	reply := m.Respond("go")
	words := strings.Fields(reply)
	if len(words) == 0 {
		t.Fatal("expected a reply")
	}
	if len(words) > 10 {
		t.Errorf("reply has %d words, cap is 10", len(words))
	}
}

func TestRespondWeightedSamplingRatio(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})
	m.Restore(Snapshot{
		Order: 1,
		Table: map[string]map[string]uint32{
			"s": {"x": 3, "y": 1},
		},
	})

	const n = 4000
	var xs int
	for i := 0; i < n; i++ {
		switch m.Respond("s") {
		case "x":
			xs++
		case "y":
		default:
			t.Fatal("sampled a token outside the successor set")
		}
	}

	ratio := float64(xs) / float64(n)
	if ratio < 0.70 || ratio > 0.80 {
		t.Errorf("empirical x ratio %.3f, want ~0.75", ratio)
	}
}

func TestRespondSeedClosure(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})
	for _, line := range []string{"the cat sat", "the cat ran", "the dog sat"} {
		m.Train(line)
	}

	got := m.Snapshot().Table["the"]
	want := map[string]uint32{"cat": 2, "dog": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("successors of (the): got %v, want %v", got, want)
	}

	for i := 0; i < 200; i++ {
		reply := m.Respond("the")
		words := strings.Fields(reply)
		if len(words) == 0 {
			t.Fatal("expected a reply")
		}
		if first := words[0]; first != "cat" && first != "dog" {
			t.Fatalf("first generated token %q outside {cat, dog}", first)
		}
	}
}

func TestRespondUnknownSeedFallsBackToStart(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})
	m.Train("a b")

	// "zzz" is not a known context, so generation starts from the
	// start-of-sequence context and must begin with "a".
	reply := m.Respond("zzz")
	words := strings.Fields(reply)
	if len(words) == 0 || words[0] != "a" {
		t.Errorf("got reply %q, want one starting with %q", reply, "a")
	}
}

func TestRespondDeterministicWithFixedSource(t *testing.T) {
	build := func(seed int64) *Model {
		m := New(Options{Order: 1, MinWords: 1, StripPunctuation: true, Rand: rand.New(rand.NewSource(seed))})
		m.Train("one two three two one three")
		return m
	}

	a := build(42).Respond("one")
	b := build(42).Respond("one")
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}
}

func TestOrderTwoContexts(t *testing.T) {
	m := newTestModel(Options{Order: 2, MinWords: 1})
	m.Train("a b c")

	table := m.Snapshot().Table
	key := "a" + contextSep + "b"
	got := table[key]
	want := map[string]uint32{"c": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("successors of (a, b): got %v, want %v", got, want)
	}
}

func TestRestoreInvalidSnapshotResets(t *testing.T) {
	m := newTestModel(Options{Order: 1, MinWords: 1})
	m.Train("a b")

	m.Restore(Snapshot{})

	contexts, observations := m.Stats()
	if contexts != 0 || observations != 0 {
		t.Errorf("after invalid restore: %d contexts, %d observations, want empty", contexts, observations)
	}
	if got := m.Respond("a"); got != "" {
		t.Errorf("reset model responded %q, want empty", got)
	}
}
