package command

import (
	"mimic/internal/mimic"
	"mimic/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Run(ctx *MessageContext) error
}

// UserDirectory resolves display names to stable user identifiers. The
// Discord adapter implements it; commands never touch member objects.
type UserDirectory interface {
	FindUsersByFuzzyName(guildID, name string) []mimic.Target
	FindUserByID(guildID, id string) (mimic.Target, bool)
}

// MessageContext carries everything a message command may need. Send is
// wired by the dispatcher to reply into the originating channel.
type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Storage *storage.Storage
	Mimic   *mimic.Session
	Users   UserDirectory
	Args    []string
	Send    func(text string) error
}
