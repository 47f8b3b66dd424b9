package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ReportSink
	config EncryptionConfig
}

// envelopeLabel marks the single entry that carries the encrypted violations.
const envelopeLabel = "encrypted"

// NewEncryptionMiddleware creates a middleware that encrypts the violations
// of every report using AES-GCM. ID, subject, mode and creation time stay in
// the clear so sinks can still index and order reports.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.ReportSink) ports.ReportSink {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Record(ctx context.Context, report violation.Report) error {
	// 1. Serialize real violations
	plainText, err := json.Marshal(report.Violations)
	if err != nil {
		return fmt.Errorf("failed to marshal violations: %w", err)
	}

	// 2. Encrypt
	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt report: %w", err)
	}

	// 3. Create envelope
	envelope := report
	envelope.Violations = []violation.Entry{{
		Label:   envelopeLabel,
		Message: base64.StdEncoding.EncodeToString(ciphertext),
	}}

	return m.next.Record(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (violation.Report, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return violation.Report{}, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) Recent(ctx context.Context, limit int) ([]violation.Report, error) {
	envelopes, err := m.next.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	reports := make([]violation.Report, len(envelopes))
	for i, envelope := range envelopes {
		if reports[i], err = m.open(envelope); err != nil {
			return nil, fmt.Errorf("report %s: %w", envelope.ID, err)
		}
	}
	return reports, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) open(envelope violation.Report) (violation.Report, error) {
	// Fail secure: a report without an envelope was not written by us.
	if len(envelope.Violations) != 1 || envelope.Violations[0].Label != envelopeLabel {
		return violation.Report{}, errors.New("report is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Violations[0].Message)
	if err != nil {
		return violation.Report{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	// Try Active, then Fallback
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return violation.Report{}, fmt.Errorf("failed to decrypt report: %w", err)
	}

	report := envelope
	// Decode into a fresh slice; the envelope's array may belong to the sink.
	report.Violations = nil
	if err := json.Unmarshal(plainText, &report.Violations); err != nil {
		return violation.Report{}, fmt.Errorf("failed to unmarshal decrypted violations: %w", err)
	}
	return report, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
