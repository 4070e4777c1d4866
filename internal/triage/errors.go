package triage

import "github.com/ossf/content-triage/internal/triage/invalid"

// ErrInvalidInput is wrapped by every error that reports a contract violation:
// input or options outside what a component accepts. It is the same sentinel
// the component packages use, so errors.Is works on errors from any of them.
var ErrInvalidInput = invalid.ErrInput
