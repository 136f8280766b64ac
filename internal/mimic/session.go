// Package mimic owns the impersonation session: who is being imitated,
// whether an incoming message should be learned or answered, and the
// delayed delivery of generated replies.
package mimic

import (
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mimic/internal/config"
	"mimic/internal/markov"
)

// Target identifies the user currently being impersonated. The session
// holds either a *Target or nil for "nobody" — never a dual-purpose
// sentinel value.
type Target struct {
	ID   string
	Name string
}

// Incoming is a chat message as the session sees it: plain text plus
// opaque identifiers, no transport types.
type Incoming struct {
	Text      string
	UserID    string
	Username  string
	ChannelID string
	GuildID   string
}

// Sender delivers a generated reply to a channel.
type Sender func(channelID, text string)

// Session is the controller between the chat transport and the model
// layer. Safe for concurrent use: discordgo dispatches every event in
// its own goroutine.
type Session struct {
	mu         sync.Mutex
	target     *Target
	cache      *markov.Cache
	cfg        *config.Config
	restricted map[string]struct{}
	limiter    *rate.Limiter
	queue      *ReplyQueue
	draw       func() int
	send       Sender
	typing     func(channelID string)
}

// NewSession creates a session with no impersonation target.
func NewSession(cfg *config.Config, cache *markov.Cache) *Session {
	restricted := make(map[string]struct{}, len(cfg.RestrictedChannels))
	for _, id := range cfg.RestrictedChannels {
		if id = strings.TrimSpace(id); id != "" {
			restricted[id] = struct{}{}
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Session{
		cache:      cache,
		cfg:        cfg,
		restricted: restricted,
		// At most a couple of replies in quick succession, then one
		// every few seconds, however chatty the channel gets.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 2),
		queue:   NewReplyQueue(),
		draw:    func() int { return rng.Intn(100) },
	}
}

// SetSender wires the outgoing transport. Until set, replies are
// computed but dropped.
func (s *Session) SetSender(fn Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = fn
}

// SetTyping wires an optional typing-indicator callback fired when a
// reply is scheduled.
func (s *Session) SetTyping(fn func(channelID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = fn
}

// Impersonate sets the current target, replacing any previous one.
func (s *Session) Impersonate(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = &t
}

// StopImpersonating cancels all pending replies and clears the target.
// Returns the previous target, or nil if nobody was being impersonated.
func (s *Session) StopImpersonating() *Target {
	if n := s.queue.CancelAll(); n > 0 {
		log.Printf("[INFO] Cancelled %d pending replies", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.target
	s.target = nil
	return prev
}

// Current returns a copy of the current target, or nil.
func (s *Session) Current() *Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return nil
	}
	t := *s.target
	return &t
}

// ModelStats reports the learned contexts and observations for a user.
func (s *Session) ModelStats(userID string) (contexts int, observations uint64) {
	return s.cache.Get(userID).Stats()
}

// PendingReplies returns the number of replies scheduled but not yet
// delivered.
func (s *Session) PendingReplies() int {
	return s.queue.Len()
}

// HandleMessage feeds one chat message through the pipeline: train the
// author's model, then — when impersonating and the dice allow — queue
// a generated reply. Nothing here ever faults the message flow; every
// edge degrades to a no-op.
func (s *Session) HandleMessage(m Incoming) {
	if m.UserID == "" || strings.TrimSpace(m.Text) == "" {
		return
	}

	if s.cfg.TrainEnabled() {
		model := s.cache.Get(m.UserID)
		if model.Train(m.Text) {
			if err := s.cache.Save(m.UserID, model); err != nil {
				log.Printf("[WARN] Failed to persist model for user %s: %v", m.UserID, err)
			}
		}
	}

	if !s.cfg.RespondEnabled() {
		return
	}

	target := s.Current()
	if target == nil {
		return
	}
	if _, ok := s.restricted[m.ChannelID]; ok {
		return
	}

	// Single threshold draw in [0, 100): respond only when the draw
	// exceeds the configured threshold.
	s.mu.Lock()
	roll := s.draw()
	s.mu.Unlock()
	if roll <= s.cfg.ResponseThreshold {
		return
	}

	if !s.limiter.Allow() {
		return
	}

	reply := s.cache.Get(target.ID).Respond(m.Text)
	if reply == "" {
		// Nothing learned for this user yet: say nothing.
		return
	}

	delay := s.cfg.WordDelay * time.Duration(len(strings.Fields(reply)))
	if fn := s.typingFn(); fn != nil {
		fn(m.ChannelID)
	}
	s.queue.Schedule(delay, func() {
		if send := s.senderFn(); send != nil {
			send(m.ChannelID, reply)
		}
	})
}

func (s *Session) senderFn() Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send
}

func (s *Session) typingFn() func(string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}
