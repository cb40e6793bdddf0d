package cli

import "context"

// Watch starts the ledger monitor for the unlocked identity. Events are
// printed on arrival; starting twice for the same identity is a no-op.
func (a *App) Watch(ctx context.Context) error {
	if err := a.watcher.Start(ctx, a.identity); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Watching for new files")
	return nil
}

// Unwatch stops the ledger monitor. Safe to call when nothing is running.
func (a *App) Unwatch(ctx context.Context) error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	printlnFn("Stopped watching")
	return nil
}
