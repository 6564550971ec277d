package checkout

import "context"

// WidgetRenderer binds the payment collaborator's hosted widget to a
// preference. Implementations live in the shell (or a headless fake in
// tests); the orchestrator only sequences the call and classifies failures.
type WidgetRenderer interface {
	// Render mounts the widget for the given preference. Submit hands the
	// user over to the provider's redirect flow; it is not a local state
	// change, so Render returns once the widget is ready.
	Render(ctx context.Context, publicKey, preferenceID string) error
}
