package envelope

import (
	"time"

	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/sealdrop/sealdrop/internal/cryptox"
)

// Build turns plaintext into a complete envelope addressed to the holder
// of recipientPublicKey and signed by the holder of senderPrivateKey.
//
// The order of operations is part of the protocol: the plaintext is
// hashed and the hash signed before encryption, so the hash certifies
// what the sender actually saw. The session key exists only for the
// duration of the call and is wiped once wrapped.
//
// Primitive-layer failures propagate unchanged; Build introduces no
// error classes of its own.
func Build(plaintext []byte, filename, mimeType string, senderPrivateKey, recipientPublicKey string) (*Envelope, error) {

	fileHash := cryptox.Hash(plaintext)

	signature, err := cryptox.Sign(fileHash, senderPrivateKey)
	if err != nil {
		return nil, err
	}

	senderPublicKey, err := cryptox.PublicKeyFromPrivate(senderPrivateKey)
	if err != nil {
		return nil, err
	}

	sessionKey := cryptox.GenerateSessionKey()
	defer common.WipeByteArray(sessionKey)

	encryptedFile, err := cryptox.SymmetricEncrypt(plaintext, sessionKey)
	if err != nil {
		return nil, err
	}

	encryptedSessionKey, err := cryptox.AsymmetricEncrypt(sessionKey, recipientPublicKey)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Version:             Version,
		EncryptedFile:       *encryptedFile,
		EncryptedSessionKey: encryptedSessionKey,
		FileHash:            fileHash,
		Signature:           signature,
		UploaderPublicKey:   senderPublicKey,
		Metadata: Metadata{
			OriginalFilename: filename,
			OriginalSize:     int64(len(plaintext)),
			MimeType:         mimeType,
			// Second granularity: the wire form is RFC 3339 and a
			// serialize/deserialize cycle must reproduce the envelope
			// exactly.
			Timestamp: time.Now().UTC().Truncate(time.Second),
		},
	}, nil
}
