package core

import (
	"log"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				// Run the actual command first
				err := cmd.Run(ctx)

				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.Member != nil {
					user := v.Event.Member.User
					if e := LogCommand(v.Session, v.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name(), commandParam(v.Event)); e != nil {
						log.Printf("[WARN] Failed to log command /%s: %v", cmd.Name(), e)
					}
				}

				return err
			},
		}
	}
}
