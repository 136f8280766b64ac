package command

import "fmt"

type StopCommand struct{}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop impersonating" }
func (c *StopCommand) Aliases() []string   { return []string{"quiet"} }

func (c *StopCommand) Run(ctx *MessageContext) error {
	prev := ctx.Mimic.StopImpersonating()
	if prev == nil {
		return ctx.Send("I wasn't impersonating anyone.")
	}
	return ctx.Send(fmt.Sprintf("Stopped impersonating **%s**.", prev.Name))
}

func init() {
	Register(ApplyMiddlewares(
		&StopCommand{},
		WithCommandLogger(),
	))
}
