//go:build !gbdebug
// +build !gbdebug

package gb

const debugChecks = false
