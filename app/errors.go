package app

import "errors"

var (
	// ErrAlreadyStarted is returned by Start on any App that is not freshly
	// created.
	ErrAlreadyStarted = errors.New("app: already started")

	// ErrNotStarted is returned by Stop before Start was called.
	ErrNotStarted = errors.New("app: not started")

	// ErrStopped is returned by Sync and Start once Stop has been called.
	ErrStopped = errors.New("app: stopped")

	// ErrNoHooks is returned by AddSystem for values implementing no hook
	// interface.
	ErrNoHooks = errors.New("app: system implements no hooks")
)
