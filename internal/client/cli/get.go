package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/sealdrop/internal/filex"
)

// Get fetches and decrypts one file into the download directory.
func (a *App) Get(ctx context.Context, contentID string) error {
	data, record, err := a.transfer.Fetch(ctx, contentID, a.identity)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	name := record.Name
	if name == "" {
		name = contentID
	}
	path := filex.UniquePath(a.downloadDir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Saved to", path)
	return nil
}
