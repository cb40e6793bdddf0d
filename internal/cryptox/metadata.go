package cryptox

import "encoding/json"

// WrapMetadata serializes v to JSON and encrypts it for one recipient under
// the pairwise key of (sender, recipient) with salt documentID + "_meta".
// The auxiliary metadata channel carries the recipient's wrapped master key
// and other private fields that must stay out of the public tag space.
func WrapMetadata(v any, sender, recipient, documentID string) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	key, err := DeriveKey(sender, recipient, []byte(documentID+MetaSaltSuffix))
	if err != nil {
		return nil, err
	}
	return seal(plaintext, key)
}

// UnwrapMetadata decrypts a metadata blob produced by WrapMetadata and
// unmarshals it into v. Errors mirror DecryptEnvelope: an AEAD failure is
// common.ErrDecryptionFailed.
func UnwrapMetadata(blob []byte, sender, recipient, documentID string, v any) error {
	key, err := DeriveKey(sender, recipient, []byte(documentID+MetaSaltSuffix))
	if err != nil {
		return err
	}
	plaintext, err := open(blob, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
