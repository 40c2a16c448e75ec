// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

// Package redact strips credentials from strings before they appear in
// output, logs, or error messages.
package redact

import (
	"os"
	"strings"
	"sync"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// minSecretLen guards against false positives from very short values.
const minSecretLen = 4

// sensitiveEnvVars lists environment variable names whose values must never
// appear in output.
var sensitiveEnvVars = []string{
	"OPENAI_API_KEY",
	"CHATBRIDGE_API_KEY",
}

var (
	mu        sync.RWMutex
	envLoaded bool
	secrets   []string
)

func loadEnvLocked() {
	if envLoaded {
		return
	}
	envLoaded = true
	for _, envVar := range sensitiveEnvVars {
		addLocked(os.Getenv(envVar))
	}
}

func addLocked(val string) {
	if len(val) < minSecretLen {
		return
	}
	for _, s := range secrets {
		if s == val {
			return
		}
	}
	secrets = append(secrets, val)
}

// Register adds a secret that did not come from a known environment
// variable, such as a credential passed on the command line or read from a
// custom variable.
func Register(secret string) {
	mu.Lock()
	defer mu.Unlock()
	loadEnvLocked()
	addLocked(secret)
}

// ResetForTest clears registered and cached secrets so tests can change env
// vars with t.Setenv between calls.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	envLoaded = false
	secrets = nil
}

// String replaces any occurrence of a known secret with Placeholder.
// Environment values are read once, on first use.
func String(s string) string {
	return replaceAll(s, known())
}

// StringWith is String with extra secrets that apply to this call only.
// The extras are not retained.
func StringWith(s string, extra ...string) string {
	s = String(s)
	for _, secret := range extra {
		if len(secret) >= minSecretLen {
			s = strings.ReplaceAll(s, secret, Placeholder)
		}
	}
	return s
}

// known returns the current secret list, loading the environment on first
// use. The returned slice must not be modified.
func known() []string {
	mu.RLock()
	if envLoaded {
		list := secrets
		mu.RUnlock()
		return list
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	loadEnvLocked()
	return secrets
}

func replaceAll(s string, list []string) string {
	for _, secret := range list {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	return s
}
