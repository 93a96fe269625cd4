// Copyright 2021 ZenulAbidin. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads xalloc deployment configuration from TOML
// files. The operating mode, the class table and the lock policy are
// deploy-time decisions, not runtime ones, so they live in a file next
// to the rest of the host program's configuration:
//
//	mode = "static"
//	single-threaded = false
//	log-level = "warn"
//
//	[[class]]
//	size = 64
//	blocks = 1024
//
//	[[class]]
//	size = 256
//	blocks = 256
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/ZenulAbidin/xalloc"
	"github.com/ZenulAbidin/xalloc/logging"
)

// File mirrors the on-disk TOML layout.
type File struct {
	Name           string  `toml:"name"`
	Mode           string  `toml:"mode"`
	MaxClasses     int     `toml:"max-classes"`
	SingleThreaded bool    `toml:"single-threaded"`
	LogLevel       string  `toml:"log-level"`
	Classes        []Class `toml:"class"`
}

// Class is one [[class]] entry.
type Class struct {
	Size   int `toml:"size"`
	Blocks int `toml:"blocks"`
}

// Load reads a TOML file and converts it. A log-level entry is applied
// to the default logger as a side effect.
func Load(path string) (xalloc.Config, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return xalloc.Config{}, fmt.Errorf("config: %w", err)
	}
	return f.Config()
}

// Decode converts in-memory TOML, for hosts that embed their config.
func Decode(data string) (xalloc.Config, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return xalloc.Config{}, fmt.Errorf("config: %w", err)
	}
	return f.Config()
}

// Config converts the file form to an allocator config.
func (f *File) Config() (xalloc.Config, error) {
	conf := xalloc.Config{
		Name:           f.Name,
		MaxClasses:     f.MaxClasses,
		SingleThreaded: f.SingleThreaded,
	}

	switch f.Mode {
	case "", "growth":
		conf.Mode = xalloc.Growth
	case "heap-pool":
		conf.Mode = xalloc.HeapPool
	case "static", "static-pool":
		conf.Mode = xalloc.Static
	default:
		return xalloc.Config{}, fmt.Errorf("config: unknown mode %q", f.Mode)
	}

	for _, c := range f.Classes {
		conf.Classes = append(conf.Classes, xalloc.ClassConfig{Size: c.Size, Blocks: c.Blocks})
	}

	if f.LogLevel != "" {
		lvl, err := logging.ParseLevel(f.LogLevel)
		if err != nil {
			return xalloc.Config{}, fmt.Errorf("config: %w", err)
		}
		logging.SetLevel(lvl)
	}

	return conf, nil
}
