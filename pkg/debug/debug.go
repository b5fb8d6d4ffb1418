// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Samples controls whether every raw gaze sample is printed.
// Use --debug-samples to enable these very verbose logs
var Samples bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// SampleLog prints a message only if sample debug mode is enabled
func SampleLog(format string, args ...interface{}) {
	if Samples {
		fmt.Printf(format, args...)
	}
}
