package cli

import (
	"context"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/sealdrop/internal/client/services"
)

// Send prompts for a file and its recipients, encrypts and uploads it.
func (a *App) Send(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "File path", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	recipients, err := GetSimpleText(a.reader, "Recipients (comma-separated identities)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	names, err := GetSimpleText(a.reader, "Recipient names (optional, comma-separated)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	description, err := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	record, err := a.transfer.Send(ctx, a.identity, services.SendRequest{
		Name:           filepath.Base(path),
		MimeType:       mimeType,
		Data:           data,
		Recipients:     splitList(recipients),
		RecipientNames: splitList(names),
		Description:    description,
		OnProgress: func(percent int) {
			printlnFn("Uploading...", percent, "%")
		},
	})
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Stored as", record.ContentID)
	return nil
}
