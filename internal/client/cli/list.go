package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sealdrop/internal/client/models"
)

// Inbox lists files addressed to the unlocked identity.
func (a *App) Inbox(ctx context.Context) error {
	records, truncated, err := a.listing.Received(ctx, a.identity, false)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	printRecords(records, truncated)
	return nil
}

// Outbox lists files the unlocked identity has sent.
func (a *App) Outbox(ctx context.Context) error {
	records, truncated, err := a.listing.Sent(ctx, a.identity, false)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	printRecords(records, truncated)
	return nil
}

func printRecords(records []models.FileRecord, truncated bool) {
	if len(records) == 0 {
		printlnFn("No files")
		return
	}
	for _, r := range records {
		line := fmt.Sprintf("%s  %s  %d bytes  from %s  %s",
			r.ContentID, r.Name, r.Size, r.Sender, r.Timestamp.Format("2006-01-02 15:04"))
		if r.Description != "" {
			line += "  " + r.Description
		}
		printlnFn(line)
	}
	if truncated {
		printlnFn("(listing truncated, older records omitted)")
	}
}
