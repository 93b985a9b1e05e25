//go:build gbdebug
// +build gbdebug

package gb

// debugChecks enables bounds checks on every window dereference and the
// cycle ordering assertions of the bus.
const debugChecks = true
