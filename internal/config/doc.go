// Package config defines the validated installation settings.
//
// Settings are collected into an [Input] from flags, the saved answers file
// and the interactive wizard. [Build] fills defaults, derives the values that
// depend on the host (public address, reusable secrets) and validates the
// result once. The returned [Config] is never mutated afterwards, so every
// provisioning step can rely on it without re-checking.
package config
