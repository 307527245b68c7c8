package explorer

import "deskbridge/internal/platform"

// WithScope runs body inside one initialized automation runtime scope.
// Teardown is registered only after Initialize succeeds and runs exactly once
// however body returns, including by panic.
func WithScope[T any](rt platform.Automation, body func() (T, error)) (T, error) {
	if err := rt.Initialize(); err != nil {
		var zero T
		return zero, newError(KindInit, "failed to initialize automation runtime", err)
	}
	defer rt.Uninitialize()

	return body()
}
