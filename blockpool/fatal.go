// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package blockpool

import (
	"fmt"

	"github.com/ZenulAbidin/xalloc/logging"
)

// FatalFunc is the centralized exhaustion hook. It must not return:
// a fixed pool that has run out of blocks cannot be grown or compacted,
// so the caller is assumed unable to recover.
type FatalFunc func(format string, v ...interface{})

var fatal FatalFunc = func(format string, v ...interface{}) {
	logging.Error(format, v...)
	panic(fmt.Sprintf(format, v...))
}

// SetFatalHook replaces the exhaustion hook and returns the previous
// one, so callers can restore it. The replacement must not return
// control to the allocating caller.
func SetFatalHook(f FatalFunc) FatalFunc {
	prev := fatal
	if f != nil {
		fatal = f
	}
	return prev
}

// Fatal routes an unrecoverable condition through the hook.
func Fatal(format string, v ...interface{}) {
	fatal(format, v...)
}
