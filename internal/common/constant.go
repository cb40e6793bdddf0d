package common

// AppName is the fixed application marker attached to every transaction; the
// index only ever queries records carrying it.
const AppName = "sealdrop"

// MaxRecipients is the number of indexed recipient slots on a transaction.
const MaxRecipients = 10

// Ledger tag names. Sender and recipient values are always stored normalized
// (see NormalizeIdentity); everything else is stored as given.
const (
	TagAppName       = "App-Name"
	TagContentType   = "Content-Type"
	TagDocumentName  = "Document-Name"
	TagDocumentType  = "Document-Type"
	TagDocumentSize  = "Document-Size"
	TagSender        = "Sender"
	TagTimestamp     = "Timestamp"
	TagDescription   = "Description"
	TagIV            = "IV"
	TagSHA256        = "sha256"
	TagDocumentID    = "Document-Id"
	TagChargeID      = "Charge-Id"
	TagRecipient     = "Recipient-"      // + slot index 0..9
	TagRecipientName = "Recipient-Name-" // + slot index 0..9
)

// VaultPrefix marks records that belong to the private sub-container. Such
// records are hidden from default listings and from monitor snapshots.
const VaultPrefix = "vault:"
