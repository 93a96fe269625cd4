// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xalloc

import (
	"errors"
)

var (
	// ErrSizeUnsupported reports a request no configured size class can
	// hold.
	ErrSizeUnsupported = errors.New("xalloc: no size class large enough for request")
	// ErrTooManyClasses reports that creating one more class pool would
	// exceed the configured bound.
	ErrTooManyClasses = errors.New("xalloc: size class limit reached")
	// ErrClassConfig reports an invalid size class table.
	ErrClassConfig = errors.New("xalloc: invalid size class configuration")
	// ErrBlockLimit reports a class pool that has issued more blocks
	// than the header's block index can address.
	ErrBlockLimit = errors.New("xalloc: class block index limit reached")
	// ErrNotInitialized reports use of the package-level allocator
	// before Init.
	ErrNotInitialized = errors.New("xalloc: not initialized")
	// ErrAlreadyInitialized reports a second Init without a Shutdown in
	// between.
	ErrAlreadyInitialized = errors.New("xalloc: already initialized")
)
