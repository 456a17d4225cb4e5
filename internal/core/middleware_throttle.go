package core

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WithThrottle limits how often a single user can run the command: burst uses
// per window, tracked per user and command.
func WithThrottle(burst int, window time.Duration) Middleware {
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		lim, ok := limiters[key]
		if !ok {
			lim = rate.NewLimiter(rate.Every(window/time.Duration(burst)), burst)
			limiters[key] = lim
		}
		return lim
	}

	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashInteractionContext)
				if !ok || v.Event.Member == nil {
					return cmd.Run(ctx)
				}

				key := v.Event.Member.User.ID + "/" + cmd.Name()
				if !limiterFor(key).Allow() {
					return RespondEphemeral(v.Session, v.Event, "Easy there, try again in a few seconds.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}
