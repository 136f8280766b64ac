package command

import "fmt"

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Aliases() []string   { return []string{} }

func (c *PingCommand) Run(ctx *MessageContext) error {
	if ctx.Session == nil {
		return ctx.Send("🏓 Pong!")
	}
	latency := ctx.Session.HeartbeatLatency().Milliseconds()
	return ctx.Send(fmt.Sprintf("🏓 Pong! %dms", latency))
}

func init() {
	Register(ApplyMiddlewares(
		&PingCommand{},
		WithCommandLogger(),
	))
}
