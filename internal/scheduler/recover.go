package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
)

type panicError struct {
	value any
	stack string
}

func (p *panicError) Error() string {
	return fmt.Sprintf("handler panic: %v", p.value)
}

// invoke calls h and converts a panic into a *panicError.
func invoke(ctx context.Context, h Handler) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &panicError{value: v, stack: string(debug.Stack())}
		}
	}()
	return h(ctx)
}
