package exchange

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

var (
	ErrPassphraseRequired = errors.New("document is encrypted: passphrase required")
	ErrWrongPassphrase    = errors.New("cannot decrypt document: wrong passphrase or corrupted data")
)

// scrypt parameters for passphrase keys.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	keyLength    = 32
	saltLength   = 16
	envelopeKind = "scrypt-aes-gcm"
)

type sealedEnvelope struct {
	Encrypted bool   `json:"encrypted"`
	KDF       string `json:"kdf"`
	Format    Format `json:"format"`
	Salt      string `json:"salt"`
	Nonce     string `json:"nonce"`
	Data      string `json:"data"`
}

// Seal encrypts an encoded document under passphrase and wraps it in a JSON
// envelope that records the inner format.
func Seal(payload []byte, format Format, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("seal: salt: %w", err)
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, payload, nil)
	return json.Marshal(sealedEnvelope{
		Encrypted: true,
		KDF:       envelopeKind,
		Format:    format,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Nonce:     base64.StdEncoding.EncodeToString(nonce),
		Data:      base64.StdEncoding.EncodeToString(ciphertext),
	})
}

// IsSealed reports whether data is an envelope produced by Seal.
func IsSealed(data []byte) bool {
	_, ok := parseEnvelope(data)
	return ok
}

// Open reverses Seal, returning the plaintext and its format.
func Open(data []byte, passphrase string) ([]byte, Format, error) {
	env, ok := parseEnvelope(data)
	if !ok {
		return nil, "", formatErr("envelope", "not an encrypted document")
	}
	if passphrase == "" {
		return nil, "", ErrPassphraseRequired
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, "", formatErr("envelope.salt", "invalid base64")
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, "", formatErr("envelope.nonce", "invalid base64")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, "", formatErr("envelope.data", "invalid base64")
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, "", formatErr("envelope.nonce", "wrong length")
	}
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, "", ErrWrongPassphrase
	}
	format := env.Format
	if format == "" {
		format = FormatJSON
	}
	return plain, format, nil
}

func parseEnvelope(data []byte) (sealedEnvelope, bool) {
	var env sealedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return sealedEnvelope{}, false
	}
	return env, env.Encrypted && env.KDF == envelopeKind
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
