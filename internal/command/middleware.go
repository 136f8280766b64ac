package command

import (
	"log"
	"strings"
	"time"

	"mimic/internal/storage"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	run func(ctx *MessageContext) error
}

func (w *wrappedCommand) Run(ctx *MessageContext) error {
	return w.run(ctx)
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithCommandLogger records each invocation into the guild's command
// history before running the command. History failures are logged and
// never block the command itself.
func WithCommandLogger() Middleware {
	return func(next Command) Command {
		return &wrappedCommand{Command: next, run: func(ctx *MessageContext) error {
			if ctx.Storage != nil && ctx.Event != nil && ctx.Event.Author != nil {
				rec := storage.CommandHistoryRecord{
					ChannelID: ctx.Event.ChannelID,
					GuildID:   ctx.Event.GuildID,
					UserID:    ctx.Event.Author.ID,
					Username:  ctx.Event.Author.Username,
					Command:   next.Name(),
					Param:     strings.Join(ctx.Args, " "),
					Datetime:  time.Now().UTC(),
				}
				if err := ctx.Storage.AppendCommandToHistory(ctx.Event.GuildID, rec); err != nil {
					log.Println("[WARN] Failed to log command:", err)
				}
			}
			return next.Run(ctx)
		}}
	}
}
