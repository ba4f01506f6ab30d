// Package runtime holds the process-wide dig container singleton, letting
// deep call sites resolve a dependency without threading it through every
// function signature. The composition root installs it; no package in this
// module calls GetContainer outside this package's tests.
// Grounded on the call-site convention observed in WeKnora's
// internal/models/embedding/embedder.go (runtime.GetContainer().Invoke(...))
// — the defining file wasn't in the retrieved slice, so GetContainer/
// SetContainer are reconstructed from that usage. Library: go.uber.org/dig.
package runtime

import "go.uber.org/dig"

var container *dig.Container

// SetContainer installs the process-wide container, built once in the
// composition root (cmd/driftmind-server/main.go) after every Provide call.
func SetContainer(c *dig.Container) {
	container = c
}

// GetContainer returns the process-wide container. Panics if SetContainer
// was never called, since every caller only runs after composition-root
// startup has completed.
func GetContainer() *dig.Container {
	if container == nil {
		panic("runtime: container accessed before SetContainer")
	}
	return container
}
