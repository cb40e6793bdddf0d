// Package models defines the file record, envelope wire formats and listing
// snapshot shared by the index, cache and monitor layers.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/ledger"
)

// FileRecord describes one distributed file. It is constructed by the sender
// at encrypt time, written once to the ledger, and never mutated.
type FileRecord struct {
	ContentID      string
	Name           string
	MimeType       string
	Size           int64
	Sender         string
	Recipients     []string
	RecipientNames []string
	Timestamp      time.Time
	Description    string
	Hash           string // hex sha256 over the stored ciphertext
	DocumentID     string
	ChargeID       string
	IV             string // base64 master nonce
}

// IsVault reports whether the record belongs to the private sub-container.
// Such records stay out of default listings and monitor snapshots.
func (r FileRecord) IsVault() bool {
	return strings.HasPrefix(r.Description, common.VaultPrefix) ||
		strings.HasPrefix(r.DocumentID, common.VaultPrefix)
}

// Tags renders the record's public descriptors as ledger tags, one recipient
// slot per identity.
func (r FileRecord) Tags() []ledger.Tag {
	tags := []ledger.Tag{
		{Name: common.TagAppName, Value: common.AppName},
		{Name: common.TagContentType, Value: "application/json"},
		{Name: common.TagDocumentName, Value: r.Name},
		{Name: common.TagDocumentType, Value: r.MimeType},
		{Name: common.TagDocumentSize, Value: strconv.FormatInt(r.Size, 10)},
		{Name: common.TagSender, Value: r.Sender},
		{Name: common.TagTimestamp, Value: strconv.FormatInt(r.Timestamp.Unix(), 10)},
		{Name: common.TagDocumentID, Value: r.DocumentID},
	}
	for i, recipient := range r.Recipients {
		tags = append(tags, ledger.Tag{Name: common.TagRecipient + strconv.Itoa(i), Value: recipient})
		if i < len(r.RecipientNames) && r.RecipientNames[i] != "" {
			tags = append(tags, ledger.Tag{Name: common.TagRecipientName + strconv.Itoa(i), Value: r.RecipientNames[i]})
		}
	}
	if r.Description != "" {
		tags = append(tags, ledger.Tag{Name: common.TagDescription, Value: r.Description})
	}
	if r.IV != "" {
		tags = append(tags, ledger.Tag{Name: common.TagIV, Value: r.IV})
	}
	if r.Hash != "" {
		tags = append(tags, ledger.Tag{Name: common.TagSHA256, Value: r.Hash})
	}
	if r.ChargeID != "" {
		tags = append(tags, ledger.Tag{Name: common.TagChargeID, Value: r.ChargeID})
	}
	return tags
}

// RecordFromTags rebuilds a FileRecord from a search hit. Unknown tags are
// ignored; missing optional tags leave zero values.
func RecordFromTags(contentID string, tags []ledger.Tag) FileRecord {
	r := FileRecord{ContentID: contentID}
	for _, t := range tags {
		switch {
		case t.Name == common.TagDocumentName:
			r.Name = t.Value
		case t.Name == common.TagDocumentType:
			r.MimeType = t.Value
		case t.Name == common.TagDocumentSize:
			r.Size, _ = strconv.ParseInt(t.Value, 10, 64)
		case t.Name == common.TagSender:
			r.Sender = strings.ToLower(t.Value)
		case t.Name == common.TagTimestamp:
			if unix, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
				r.Timestamp = time.Unix(unix, 0).UTC()
			}
		case t.Name == common.TagDescription:
			r.Description = t.Value
		case t.Name == common.TagIV:
			r.IV = t.Value
		case t.Name == common.TagSHA256:
			r.Hash = t.Value
		case t.Name == common.TagDocumentID:
			r.DocumentID = t.Value
		case t.Name == common.TagChargeID:
			r.ChargeID = t.Value
		case strings.HasPrefix(t.Name, common.TagRecipientName):
			if slot, err := strconv.Atoi(strings.TrimPrefix(t.Name, common.TagRecipientName)); err == nil {
				r.RecipientNames = setSlot(r.RecipientNames, slot, t.Value)
			}
		case strings.HasPrefix(t.Name, common.TagRecipient):
			if slot, err := strconv.Atoi(strings.TrimPrefix(t.Name, common.TagRecipient)); err == nil {
				r.Recipients = setSlot(r.Recipients, slot, strings.ToLower(t.Value))
			}
		}
	}
	return r
}

func setSlot(s []string, i int, v string) []string {
	if i < 0 || i >= common.MaxRecipients {
		return s
	}
	for len(s) <= i {
		s = append(s, "")
	}
	s[i] = v
	return s
}
