package utils

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicHandler receives panics recovered by Go. Nil by default.
var PanicHandler func(ctx context.Context, recovered interface{}, stack []byte)

// Go runs fn on a new goroutine and recovers any panic so a single failing
// background task cannot take the process down.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if PanicHandler != nil {
					PanicHandler(ctx, r, debug.Stack())
					return
				}
				fmt.Printf("recovered panic in goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
