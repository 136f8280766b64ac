package command

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"mimic/internal/config"
	"mimic/internal/markov"
	"mimic/internal/mimic"
)

type fakeStore struct{ data map[string][]byte }

func (s *fakeStore) ModelBytes(userID string) ([]byte, bool) {
	b, ok := s.data[userID]
	return b, ok
}

func (s *fakeStore) SaveModel(userID string, data []byte) error {
	s.data[userID] = data
	return nil
}

type fakeDirectory struct{ users []mimic.Target }

func (d *fakeDirectory) FindUsersByFuzzyName(guildID, name string) []mimic.Target {
	var matches []mimic.Target
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(name)) {
			matches = append(matches, u)
		}
	}
	return matches
}

func (d *fakeDirectory) FindUserByID(guildID, id string) (mimic.Target, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return mimic.Target{}, false
}

func newTestContext(dir *fakeDirectory) (*MessageContext, *[]string) {
	cfg := &config.Config{
		Mode:              config.ModeTrainRespond,
		Order:             1,
		MinWords:          1,
		StripPunctuation:  true,
		MaxReplyWords:     50,
		ResponseThreshold: 50,
	}
	cache := markov.NewCache(&fakeStore{data: make(map[string][]byte)}, markov.Options{Order: 1, MinWords: 1, StripPunctuation: true})
	session := mimic.NewSession(cfg, cache)

	var sent []string
	ctx := &MessageContext{
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			GuildID:   "guild-1",
			ChannelID: "chan-1",
			Author:    &discordgo.User{ID: "operator", Username: "operator"},
		}},
		Mimic: session,
		Users: dir,
		Send: func(text string) error {
			sent = append(sent, text)
			return nil
		},
	}
	return ctx, &sent
}

func TestRegistryResolvesAliases(t *testing.T) {
	for _, name := range []string{"impersonate", "mimic", "stop", "quiet", "who", "status", "ping"} {
		if _, ok := Get(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
	if _, ok := Get("definitely-not-a-command"); ok {
		t.Error("unknown command resolved")
	}
}

func TestImpersonateCommand(t *testing.T) {
	dir := &fakeDirectory{users: []mimic.Target{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}}}
	ctx, sent := newTestContext(dir)

	cmd, _ := Get("impersonate")
	ctx.Args = []string{"ali"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	target := ctx.Mimic.Current()
	if target == nil || target.ID != "u1" {
		t.Errorf("target: got %v, want u1", target)
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "Alice") {
		t.Errorf("reply: got %v", *sent)
	}
}

func TestImpersonateCommandNoMatch(t *testing.T) {
	dir := &fakeDirectory{users: []mimic.Target{{ID: "u1", Name: "Alice"}}}
	ctx, sent := newTestContext(dir)

	cmd, _ := Get("impersonate")
	ctx.Args = []string{"zorblax"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ctx.Mimic.Current() != nil {
		t.Error("no-match set a target")
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "don't know") {
		t.Errorf("reply: got %v", *sent)
	}
}

func TestImpersonateCommandAmbiguous(t *testing.T) {
	dir := &fakeDirectory{users: []mimic.Target{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Alicia"}}}
	ctx, sent := newTestContext(dir)

	cmd, _ := Get("impersonate")
	ctx.Args = []string{"ali"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ctx.Mimic.Current() != nil {
		t.Error("ambiguous match set a target")
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "Did you mean") {
		t.Errorf("reply: got %v", *sent)
	}
}

func TestImpersonateCommandUsage(t *testing.T) {
	ctx, sent := newTestContext(&fakeDirectory{})

	cmd, _ := Get("impersonate")
	ctx.Args = nil
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "Usage") {
		t.Errorf("reply: got %v", *sent)
	}
}

func TestStopCommand(t *testing.T) {
	ctx, sent := newTestContext(&fakeDirectory{})
	ctx.Mimic.Impersonate(mimic.Target{ID: "u1", Name: "Alice"})

	cmd, _ := Get("stop")
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Mimic.Current() != nil {
		t.Error("stop left a target set")
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "Alice") {
		t.Errorf("reply: got %v", *sent)
	}

	// Second stop: nothing to do.
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*sent) != 2 || !strings.Contains((*sent)[1], "wasn't impersonating") {
		t.Errorf("reply: got %v", *sent)
	}
}

func TestWhoCommand(t *testing.T) {
	ctx, sent := newTestContext(&fakeDirectory{})

	cmd, _ := Get("who")
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "Not impersonating") {
		t.Errorf("reply: got %v", *sent)
	}

	ctx.Mimic.Impersonate(mimic.Target{ID: "u1", Name: "Alice"})
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*sent) != 2 || !strings.Contains((*sent)[1], "Alice") {
		t.Errorf("reply: got %v", *sent)
	}
}

func TestPingCommandWithoutSession(t *testing.T) {
	ctx, sent := newTestContext(&fakeDirectory{})

	cmd, _ := Get("ping")
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "Pong") {
		t.Errorf("reply: got %v", *sent)
	}
}
