// Package prune clips long text, such as upstream error bodies, before it is
// stored in delivery logs.
package prune

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultMarker   = " [...truncated...] "
	DefaultMaxBytes = 1024
)

// Config bounds the output. HeadBytes and TailBytes split MaxBytes when unset.
type Config struct {
	MaxBytes  int
	HeadBytes int
	TailBytes int
	Marker    string
}

// ErrorText renders err for storage, clipped to DefaultMaxBytes.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return Text(err.Error(), Config{})
}

// Text returns s unchanged when it fits, otherwise its head and tail joined
// by the marker. The result never exceeds MaxBytes and never splits a rune.
func Text(s string, cfg Config) string {
	cfg = normalizeConfig(cfg)
	s = strings.TrimSpace(s)
	if len(s) <= cfg.MaxBytes {
		return s
	}
	head := safeUTF8Prefix(s, cfg.HeadBytes)
	tail := safeUTF8Suffix(s, cfg.TailBytes)
	out := strings.TrimSpace(head) + cfg.Marker + strings.TrimSpace(tail)
	if len(out) > cfg.MaxBytes {
		return safeUTF8Prefix(out, cfg.MaxBytes)
	}
	return out
}

func normalizeConfig(cfg Config) Config {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	budget := cfg.MaxBytes - len(cfg.Marker)
	if budget < 0 {
		budget = 0
	}
	if cfg.HeadBytes <= 0 && cfg.TailBytes <= 0 {
		cfg.HeadBytes = budget * 3 / 4
		cfg.TailBytes = budget - cfg.HeadBytes
	}
	if cfg.HeadBytes < 0 {
		cfg.HeadBytes = 0
	}
	if cfg.TailBytes < 0 {
		cfg.TailBytes = 0
	}
	return cfg
}

func safeUTF8Prefix(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) == 0 {
		return ""
	}
	if maxBytes >= len(s) {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func safeUTF8Suffix(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) == 0 {
		return ""
	}
	if maxBytes >= len(s) {
		return s
	}
	start := len(s) - maxBytes
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
