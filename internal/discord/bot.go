package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"mimic/internal/command"
	"mimic/internal/config"
	"mimic/internal/mimic"
	"mimic/internal/storage"
)

// Bot is a Discord bot
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	mimic   *mimic.Session
}

// NewBot creates a Bot around an impersonation session.
func NewBot(cfg *config.Config, store *storage.Storage, session *mimic.Session) *Bot {
	return &Bot{
		cfg:     cfg,
		storage: store,
		mimic:   session,
	}
}

// Run starts the Discord bot and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	b.mimic.SetSender(func(channelID, text string) {
		if _, err := dg.ChannelMessageSend(channelID, text); err != nil {
			log.Println("[ERR] Failed to send reply:", err)
		}
	})
	b.mimic.SetTyping(func(channelID string) {
		if err := dg.ChannelTyping(channelID); err != nil {
			log.Println("[WARN] Failed to send typing indicator:", err)
		}
	})

	if err := b.open(); err != nil {
		return err
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

// open connects the gateway, bounded by the configured init timeout.
func (b *Bot) open() error {
	if b.cfg.InitTimeout <= 0 {
		if err := b.dg.Open(); err != nil {
			return fmt.Errorf("failed to open Discord session: %w", err)
		}
		return nil
	}

	errCh := make(chan error, 1)
	go func() { errCh <- b.dg.Open() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to open Discord session: %w", err)
		}
		return nil
	case <-time.After(b.cfg.InitTimeout):
		return fmt.Errorf("discord session did not open within %v", b.cfg.InitTimeout)
	}
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}
	log.Printf("[INFO] %d user models persisted.", len(b.storage.ModelUserIDs()))
	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// onMessageCreate routes every incoming message: prefixed messages go to
// the command dispatcher, everything else feeds the impersonation
// session.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	if strings.HasPrefix(content, b.cfg.CommandPrefix) {
		b.dispatchCommand(s, m, strings.TrimPrefix(content, b.cfg.CommandPrefix))
		return
	}

	b.mimic.HandleMessage(mimic.Incoming{
		Text:      m.Content,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	})
}

func (b *Bot) dispatchCommand(s *discordgo.Session, m *discordgo.MessageCreate, invocation string) {
	fields := strings.Fields(invocation)
	if len(fields) == 0 {
		return
	}

	cmd, ok := command.Get(strings.ToLower(fields[0]))
	if !ok {
		return
	}

	ctx := &command.MessageContext{
		Session: s,
		Event:   m,
		Storage: b.storage,
		Mimic:   b.mimic,
		Users:   b,
		Args:    fields[1:],
		Send: func(text string) error {
			_, err := s.ChannelMessageSend(m.ChannelID, text)
			return err
		},
	}

	if err := cmd.Run(ctx); err != nil {
		log.Println("[ERR] Error running command:", err)
		if _, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Error running command: %v", err)); err != nil {
			log.Println("[ERR] Failed to report command error:", err)
		}
	}
}
