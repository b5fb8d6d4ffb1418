package gaze

import "errors"

// Configuration errors, returned before any device interaction.
var (
	ErrNoCallbacksConfigured = errors.New("gaze: no callbacks configured")
	ErrAlreadySessionActive  = errors.New("gaze: a session is already active")
)

// Device errors. Each wraps the collaborator's error; none is retried.
var (
	ErrDeviceInitFailed      = errors.New("gaze: device initialization failed")
	ErrDeviceSubscribeFailed = errors.New("gaze: device subscribe failed")
	ErrDeviceWaitFailed      = errors.New("gaze: device wait failed")
	ErrDeviceProcessFailed   = errors.New("gaze: device process failed")
	ErrDeviceTeardownFailed  = errors.New("gaze: device teardown failed")

	// ErrDevicePanic wraps a panic raised by the device while waiting or
	// delivering samples.
	ErrDevicePanic = errors.New("gaze: device panicked")
)
