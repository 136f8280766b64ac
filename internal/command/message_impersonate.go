package command

import (
	"fmt"
	"strings"
)

type ImpersonateCommand struct{}

func (c *ImpersonateCommand) Name() string        { return "impersonate" }
func (c *ImpersonateCommand) Description() string { return "Start impersonating a user by name" }
func (c *ImpersonateCommand) Aliases() []string   { return []string{"mimic"} }

func (c *ImpersonateCommand) Run(ctx *MessageContext) error {
	name := strings.TrimSpace(strings.Join(ctx.Args, " "))
	if name == "" {
		return ctx.Send("Usage: `impersonate <name>`")
	}

	matches := ctx.Users.FindUsersByFuzzyName(ctx.Event.GuildID, name)
	switch {
	case len(matches) == 0:
		return ctx.Send(fmt.Sprintf("I don't know anyone called **%s**.", name))

	case len(matches) > 1:
		names := make([]string, 0, len(matches))
		for i, m := range matches {
			if i == 5 {
				names = append(names, "...")
				break
			}
			names = append(names, m.Name)
		}
		return ctx.Send("Did you mean: " + strings.Join(names, ", ") + "?")

	default:
		target := matches[0]
		ctx.Mimic.Impersonate(target)
		return ctx.Send(fmt.Sprintf("Now impersonating **%s**.", target.Name))
	}
}

func init() {
	Register(ApplyMiddlewares(
		&ImpersonateCommand{},
		WithCommandLogger(),
	))
}
