package envelope

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sealdrop/sealdrop/internal/cryptox"
)

// ErrMalformedEnvelope is the sentinel matched by errors.Is for every
// codec-stage failure. The concrete error names the offending field.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// MalformedEnvelopeError reports a missing or invalid manifest field.
type MalformedEnvelopeError struct {
	Field  string
	Reason string // "missing" or "invalid"
}

func (e *MalformedEnvelopeError) Error() string {
	return fmt.Sprintf("malformed envelope: %s field %q", e.Reason, e.Field)
}

func (e *MalformedEnvelopeError) Is(target error) bool {
	return target == ErrMalformedEnvelope
}

func missingField(name string) error {
	return &MalformedEnvelopeError{Field: name, Reason: "missing"}
}

func invalidField(name string) error {
	return &MalformedEnvelopeError{Field: name, Reason: "invalid"}
}

// The wire structs mirror the canonical manifest JSON bit-exactly:
// binary fields are standard base64, fileHash stays lowercase hex,
// timestamps are RFC 3339. Field names are a cross-language contract
// and must not change. Pointers distinguish absent fields from empty
// ones (an empty file legitimately has an empty ciphertext).
type wireCiphertext struct {
	Ciphertext *string `json:"ciphertext"`
	IV         *string `json:"iv"`
	AuthTag    *string `json:"authTag"`
}

type wireMetadata struct {
	OriginalFilename string `json:"originalFilename"`
	OriginalSize     int64  `json:"originalSize"`
	MimeType         string `json:"mimeType"`
	Timestamp        string `json:"timestamp"`
}

type wireManifest struct {
	Version             *string         `json:"version"`
	EncryptedFile       *wireCiphertext `json:"encryptedFile"`
	EncryptedSessionKey *string         `json:"encryptedSessionKey"`
	FileHash            *string         `json:"fileHash"`
	Signature           *string         `json:"signature"`
	UploaderPublicKey   *string         `json:"uploaderPublicKey"`
	Metadata            *wireMetadata   `json:"metadata"`
}

func b64ptr(b []byte) *string {
	s := base64.StdEncoding.EncodeToString(b)
	return &s
}

// Serialize renders the envelope in its canonical manifest form.
func Serialize(env *Envelope) ([]byte, error) {
	m := wireManifest{
		Version: &env.Version,
		EncryptedFile: &wireCiphertext{
			Ciphertext: b64ptr(env.EncryptedFile.Ciphertext),
			IV:         b64ptr(env.EncryptedFile.IV),
			AuthTag:    b64ptr(env.EncryptedFile.AuthTag),
		},
		EncryptedSessionKey: b64ptr(env.EncryptedSessionKey),
		FileHash:            &env.FileHash,
		Signature:           b64ptr(env.Signature),
		UploaderPublicKey:   &env.UploaderPublicKey,
		Metadata: &wireMetadata{
			OriginalFilename: env.Metadata.OriginalFilename,
			OriginalSize:     env.Metadata.OriginalSize,
			MimeType:         env.Metadata.MimeType,
			Timestamp:        env.Metadata.Timestamp.UTC().Format(time.RFC3339),
		},
	}
	return json.Marshal(m)
}

func decodeB64(field string, v *string) ([]byte, error) {
	if v == nil {
		return nil, missingField(field)
	}
	b, err := base64.StdEncoding.DecodeString(*v)
	if err != nil {
		return nil, invalidField(field)
	}
	return b, nil
}

// Deserialize parses canonical manifest text back into an envelope.
// Every required field must be present; a missing or undecodable field
// is reported as a MalformedEnvelopeError naming it, never as a generic
// parse error.
func Deserialize(data []byte) (*Envelope, error) {
	var m wireManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &MalformedEnvelopeError{Field: "manifest", Reason: "invalid"}
	}

	if m.Version == nil {
		return nil, missingField("version")
	}
	if m.EncryptedFile == nil {
		return nil, missingField("encryptedFile")
	}
	if m.FileHash == nil {
		return nil, missingField("fileHash")
	}
	if m.UploaderPublicKey == nil {
		return nil, missingField("uploaderPublicKey")
	}
	if m.Metadata == nil {
		return nil, missingField("metadata")
	}

	ciphertext, err := decodeB64("encryptedFile.ciphertext", m.EncryptedFile.Ciphertext)
	if err != nil {
		return nil, err
	}
	iv, err := decodeB64("encryptedFile.iv", m.EncryptedFile.IV)
	if err != nil {
		return nil, err
	}
	authTag, err := decodeB64("encryptedFile.authTag", m.EncryptedFile.AuthTag)
	if err != nil {
		return nil, err
	}
	sessionKey, err := decodeB64("encryptedSessionKey", m.EncryptedSessionKey)
	if err != nil {
		return nil, err
	}
	signature, err := decodeB64("signature", m.Signature)
	if err != nil {
		return nil, err
	}

	if _, err := hex.DecodeString(*m.FileHash); err != nil {
		return nil, invalidField("fileHash")
	}

	ts, err := time.Parse(time.RFC3339, m.Metadata.Timestamp)
	if err != nil {
		return nil, invalidField("metadata.timestamp")
	}

	return &Envelope{
		Version: *m.Version,
		EncryptedFile: cryptox.SymmetricCiphertext{
			Ciphertext: ciphertext,
			IV:         iv,
			AuthTag:    authTag,
		},
		EncryptedSessionKey: sessionKey,
		FileHash:            *m.FileHash,
		Signature:           signature,
		UploaderPublicKey:   *m.UploaderPublicKey,
		Metadata: Metadata{
			OriginalFilename: m.Metadata.OriginalFilename,
			OriginalSize:     m.Metadata.OriginalSize,
			MimeType:         m.Metadata.MimeType,
			Timestamp:        ts,
		},
	}, nil
}

// Validate performs schema-level checks on a decoded envelope. The
// protocol has no unsigned variant: a manifest without a signature is
// malformed here, not a softer "unverified" case.
func Validate(env *Envelope) error {
	if env.Version == "" {
		return missingField("version")
	}
	if len(env.EncryptedFile.IV) != cryptox.IVSize {
		return invalidField("encryptedFile.iv")
	}
	if len(env.EncryptedFile.AuthTag) != cryptox.AuthTagSize {
		return invalidField("encryptedFile.authTag")
	}
	if len(env.EncryptedSessionKey) == 0 {
		return missingField("encryptedSessionKey")
	}
	if len(env.FileHash) != 64 || env.FileHash != strings.ToLower(env.FileHash) {
		return invalidField("fileHash")
	}
	if len(env.Signature) == 0 {
		return missingField("signature")
	}
	if env.UploaderPublicKey == "" {
		return missingField("uploaderPublicKey")
	}
	if env.Metadata.Timestamp.IsZero() {
		return missingField("metadata.timestamp")
	}
	return nil
}
