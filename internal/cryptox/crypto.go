// Package cryptox wraps the platform crypto primitives used by the
// envelope protocol: AES-256-GCM for file payloads, RSA-OAEP for session
// key wrapping, RSA-PSS for signatures and SHA-256 for hashing. All
// functions are stateless; key material is passed in explicitly.
package cryptox

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/sealdrop/sealdrop/internal/common"
)

const (
	// SessionKeySize is the size of the single-use symmetric key that
	// encrypts one file payload.
	SessionKeySize = 32

	// IVSize is the GCM nonce size used by this protocol. 16 bytes
	// rather than the Go default of 12, for wire compatibility.
	IVSize = 16

	// AuthTagSize is the GCM authentication tag size.
	AuthTagSize = 16

	// rsaBits is the RSA modulus size for generated key pairs.
	rsaBits = 2048

	// maxOAEPPayload is the largest message RSA-OAEP/SHA-256 can wrap
	// under a 2048-bit key: 256 - 2*32 - 2.
	maxOAEPPayload = 190
)

var (
	// ErrInvalidKeyLength is returned when a symmetric key is not
	// exactly SessionKeySize bytes.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrPayloadTooLarge is returned when data passed to
	// AsymmetricEncrypt exceeds the OAEP maximum for a 2048-bit key.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrAuthenticationFailed is returned when the GCM tag does not
	// verify, covering both corruption and deliberate tampering.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrKeyMismatch is returned when asymmetric decryption fails,
	// which in practice means the wrong private key was supplied.
	ErrKeyMismatch = errors.New("key mismatch")
)

// SymmetricCiphertext is the result of one AES-256-GCM encryption:
// ciphertext, the random IV it was produced under, and the tag that
// authenticates it.
type SymmetricCiphertext struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
}

// GenerateSessionKey returns a fresh 32-byte symmetric key. Each key
// encrypts exactly one payload and must be wiped after it is wrapped.
func GenerateSessionKey() []byte {
	return common.GenerateRandByteArray(SessionKeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != SessionKeySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}

// SymmetricEncrypt encrypts plaintext with AES-256-GCM under key,
// generating a fresh random IV. The key must be exactly 32 bytes.
// No additional authenticated data is used.
func SymmetricEncrypt(plaintext, key []byte) (*SymmetricCiphertext, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := common.GenerateRandByteArray(IVSize)

	// Seal appends the tag to the ciphertext; split it back out so the
	// wire format can carry the pieces separately.
	sealed := aead.Seal(nil, iv, plaintext, nil)
	n := len(sealed) - AuthTagSize

	return &SymmetricCiphertext{
		Ciphertext: sealed[:n],
		IV:         iv,
		AuthTag:    sealed[n:],
	}, nil
}

// SymmetricDecrypt reverses SymmetricEncrypt. It returns
// ErrAuthenticationFailed if the tag does not verify; no partial
// plaintext is ever returned.
func SymmetricDecrypt(ciphertext, key, iv, authTag []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != IVSize {
		return nil, ErrAuthenticationFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// AsymmetricEncrypt wraps data (normally a session key) with
// RSA-OAEP/SHA-256 under the recipient's public key.
func AsymmetricEncrypt(data []byte, publicKeyPEM string) ([]byte, error) {
	if len(data) > maxOAEPPayload {
		return nil, ErrPayloadTooLarge
	}
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, data, nil)
}

// AsymmetricDecrypt unwraps data with the recipient's private key.
// Decryption failure is reported as ErrKeyMismatch: OAEP gives no more
// detail than "wrong key or corrupted blob", and callers must not learn
// anything beyond that.
func AsymmetricDecrypt(data []byte, privateKeyPEM string) ([]byte, error) {
	priv, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), nil, priv, data, nil)
	if err != nil {
		return nil, ErrKeyMismatch
	}
	return plaintext, nil
}

// Hash returns the SHA-256 digest of data as 64 lowercase hex characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sign produces an RSA-PSS/SHA-256 signature over the hex digest string,
// with the salt length equal to the digest length.
func Sign(hashHex string, privateKeyPEM string) ([]byte, error) {
	priv, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256([]byte(hashHex))
	return rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
}

// Verify checks an RSA-PSS signature over the hex digest string.
//
// Verify is a boolean predicate by contract: a malformed key, a
// malformed signature or a failed check all yield false, never an error.
func Verify(signature []byte, hashHex string, publicKeyPEM string) bool {
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return false
	}
	digest := sha256.Sum256([]byte(hashHex))
	err = rsa.VerifyPSS(pub, crypto.SHA256, digest[:], signature, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	return err == nil
}

// Fingerprint returns a short identifier for a public key: the first 16
// hex characters of its SHA-256 digest. Used by the surrounding system
// to label keys without any crypto awareness.
func Fingerprint(publicKeyPEM string) string {
	return Hash([]byte(publicKeyPEM))[:16]
}
