package command

import "fmt"

type WhoCommand struct{}

func (c *WhoCommand) Name() string        { return "who" }
func (c *WhoCommand) Description() string { return "Show who is being impersonated" }
func (c *WhoCommand) Aliases() []string   { return []string{"status"} }

func (c *WhoCommand) Run(ctx *MessageContext) error {
	target := ctx.Mimic.Current()
	if target == nil {
		return ctx.Send("Not impersonating anyone right now.")
	}

	contexts, observations := ctx.Mimic.ModelStats(target.ID)
	return ctx.Send(fmt.Sprintf(
		"Impersonating **%s** — %d contexts, %d observed transitions.",
		target.Name, contexts, observations,
	))
}

func init() {
	Register(ApplyMiddlewares(
		&WhoCommand{},
		WithCommandLogger(),
	))
}
