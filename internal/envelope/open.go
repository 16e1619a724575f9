package envelope

import (
	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/sealdrop/sealdrop/internal/cryptox"
)

// Open recovers the plaintext from an envelope using the recipient's
// private key and reports a verification verdict.
//
// The first two stages are fatal because they leave nothing to show the
// caller: unwrapping the session key fails with cryptox.ErrKeyMismatch
// when the wrong private key is supplied, and payload decryption fails
// with cryptox.ErrAuthenticationFailed when the ciphertext or tag was
// altered. The hash and signature checks that follow are non-fatal:
// there IS a recovered plaintext, it is just untrusted, and the caller
// decides whether to surface data that decrypted cleanly but failed its
// authenticity checks.
//
// Opening is read-only; the envelope is never mutated.
func Open(env *Envelope, recipientPrivateKey string) ([]byte, *VerificationResult, error) {

	sessionKey, err := cryptox.AsymmetricDecrypt(env.EncryptedSessionKey, recipientPrivateKey)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(sessionKey)

	plaintext, err := cryptox.SymmetricDecrypt(
		env.EncryptedFile.Ciphertext,
		sessionKey,
		env.EncryptedFile.IV,
		env.EncryptedFile.AuthTag,
	)
	if err != nil {
		return nil, nil, err
	}

	hashValid := cryptox.Hash(plaintext) == env.FileHash
	signatureValid := cryptox.Verify(env.Signature, env.FileHash, env.UploaderPublicKey)

	return plaintext, &VerificationResult{
		HashValid:      hashValid,
		SignatureValid: signatureValid,
		Verified:       hashValid && signatureValid,
	}, nil
}
