package services

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sealdrop/internal/client/models"
	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/cryptox"
	"github.com/dmitrijs2005/sealdrop/internal/ledger"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
)

// SendRequest describes one file to distribute.
type SendRequest struct {
	Name           string
	MimeType       string
	Data           []byte
	Recipients     []string
	RecipientNames []string
	Description    string
	ChargeID       string
	OnProgress     ledger.ProgressFunc
}

// TransferService implements the send path (encrypt → wrap → tag → upload →
// invalidate) and the single-file read path (fetch → unwrap → decrypt →
// verify).
type TransferService struct {
	ledger   ledger.Client
	listings *ListingService
	log      logging.Logger

	now      func() time.Time
	newDocID func() string
}

func NewTransferService(lc ledger.Client, listings *ListingService, log logging.Logger) *TransferService {
	return &TransferService{
		ledger:   lc,
		listings: listings,
		log:      log,
		now:      time.Now,
		newDocID: uuid.NewString,
	}
}

// Send encrypts the payload for the sender and every recipient, uploads the
// envelope with its public tags, and invalidates the cached listings of every
// party so no stale listing is served after the write.
func (s *TransferService) Send(ctx context.Context, sender string, req SendRequest) (*models.FileRecord, error) {
	senderID, err := common.NormalizeIdentity(sender)
	if err != nil {
		return nil, err
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", common.ErrInvalidArgument)
	}
	if len(req.Recipients) > common.MaxRecipients {
		return nil, fmt.Errorf("%w: more than %d recipients", common.ErrInvalidArgument, common.MaxRecipients)
	}
	recipients, names, err := alignRecipients(req.Recipients, req.RecipientNames)
	if err != nil {
		return nil, err
	}

	documentID := s.newDocID()

	env, err := cryptox.EncryptEnvelope(req.Data, senderID, recipients, documentID)
	if err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}

	metadata := make(map[string][]byte, len(env.RecipientKeys))
	for identity, wrapped := range env.RecipientKeys {
		blob, err := cryptox.WrapMetadata(models.PrivateMetadata{
			WrappedKey:  wrapped,
			FileName:    req.Name,
			Description: req.Description,
		}, senderID, identity, documentID)
		if err != nil {
			return nil, fmt.Errorf("wrapping metadata for %s: %w", identity, err)
		}
		metadata[identity] = blob
	}

	payload, err := models.EncodePayload(env.Ciphertext, env.Nonce, metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	record := models.FileRecord{
		Name:           req.Name,
		MimeType:       req.MimeType,
		Size:           int64(len(req.Data)),
		Sender:         senderID,
		Recipients:     recipients,
		RecipientNames: names,
		Timestamp:      s.now().UTC().Truncate(time.Second),
		Description:    req.Description,
		Hash:           hex.EncodeToString(env.Hash),
		DocumentID:     documentID,
		ChargeID:       req.ChargeID,
		IV:             base64.StdEncoding.EncodeToString(env.Nonce),
	}

	contentID, err := s.ledger.Upload(ctx, payload, record.Tags(), req.OnProgress)
	if err != nil {
		return nil, fmt.Errorf("uploading envelope: %w", err)
	}
	record.ContentID = contentID

	if s.listings != nil {
		s.listings.Invalidate(senderID)
		for _, recipient := range recipients {
			s.listings.Invalidate(recipient)
		}
	}

	s.log.Info(ctx, "file distributed",
		"content_id", contentID, "document_id", documentID, "recipients", len(recipients))
	return &record, nil
}

// Fetch retrieves and decrypts one file as the given identity. The content
// hash recorded at write time is verified before any plaintext is returned;
// a caller without a wrapped key gets common.ErrPermissionDenied, never an
// empty result.
func (s *TransferService) Fetch(ctx context.Context, contentID, self string) ([]byte, *models.FileRecord, error) {
	selfID, err := common.NormalizeIdentity(self)
	if err != nil {
		return nil, nil, err
	}

	payload, tags, err := s.ledger.Fetch(ctx, contentID)
	if err != nil {
		return nil, nil, err
	}
	record := models.RecordFromTags(contentID, tags)

	p, err := models.DecodePayload(payload)
	if err != nil {
		return nil, nil, err
	}
	ciphertext, err := p.CiphertextBytes()
	if err != nil {
		return nil, nil, err
	}
	nonce, err := p.IVBytes()
	if err != nil {
		return nil, nil, err
	}

	digest, err := hex.DecodeString(record.Hash)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed sha256 tag", common.ErrIntegrity)
	}

	if p.IsLegacy() {
		// Old single-recipient records seal the payload directly under the
		// pairwise key. The hash tag, when present, still guards the bytes.
		if record.Hash != "" {
			if err := cryptox.VerifyHash(ciphertext, digest); err != nil {
				return nil, nil, err
			}
		}
		plaintext, err := cryptox.DecryptLegacy(ciphertext, nonce, record.Sender, selfID, record.DocumentID)
		if err != nil {
			return nil, nil, err
		}
		return plaintext, &record, nil
	}

	blob, err := p.MetadataFor(selfID)
	if err != nil {
		return nil, nil, err
	}
	var meta models.PrivateMetadata
	if err := cryptox.UnwrapMetadata(blob, record.Sender, selfID, record.DocumentID, &meta); err != nil {
		return nil, nil, err
	}

	env := &cryptox.Envelope{
		Ciphertext:    ciphertext,
		Nonce:         nonce,
		RecipientKeys: map[string][]byte{selfID: meta.WrappedKey},
		Hash:          digest,
	}
	plaintext, err := cryptox.DecryptEnvelope(env, record.Sender, selfID, record.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	return plaintext, &record, nil
}

// alignRecipients normalizes and deduplicates the recipient list while
// keeping each display name attached to its recipient, so the positional
// recipient and name tag slots stay in step after a duplicate is dropped.
func alignRecipients(recipients, names []string) ([]string, []string, error) {
	seen := make(map[string]struct{}, len(recipients))
	outIDs := make([]string, 0, len(recipients))
	outNames := make([]string, 0, len(recipients))
	for i, r := range recipients {
		id, err := common.NormalizeIdentity(r)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		outIDs = append(outIDs, id)
		if i < len(names) {
			outNames = append(outNames, names[i])
		} else {
			outNames = append(outNames, "")
		}
	}
	return outIDs, outNames, nil
}
