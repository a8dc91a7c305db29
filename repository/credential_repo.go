package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"gorm.io/gorm"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

// MaskedCredential is the only credential shape that leaves this package
// besides the raw secret handed to the LLM client.
type MaskedCredential struct {
	Backend   string `json:"backend"`
	HasKey    bool   `json:"has_key"`
	MaskedKey string `json:"masked_key,omitempty"`
}

// CredentialRepo stores one secret per backend, encrypted at rest with a
// key derived from the configured credential key.
type CredentialRepo struct {
	db  *gorm.DB
	key [32]byte
}

func NewCredentialRepo(db *gorm.DB, credentialKey string) *CredentialRepo {
	return &CredentialRepo{db: db, key: sha256.Sum256([]byte(credentialKey))}
}

// SetSecret overwrites any existing secret for the backend.
func (r *CredentialRepo) SetSecret(ctx context.Context, backend, secret string) error {
	sealed, err := r.seal(secret)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, err, "seal credential %s", backend)
	}
	cred := models.Credential{Backend: backend, Secret: sealed, UpdatedAt: time.Now()}
	err = r.db.WithContext(ctx).Save(&cred).Error
	return apperr.Wrap(apperr.KindPersistence, err, "set credential %s", backend)
}

// GetSecret returns ("", false, nil) when no secret is stored.
func (r *CredentialRepo) GetSecret(ctx context.Context, backend string) (string, bool, error) {
	var cred models.Credential
	err := r.db.WithContext(ctx).Where("backend = ?", backend).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Wrap(apperr.KindPersistence, err, "get credential %s", backend)
	}
	secret, err := r.open(cred.Secret)
	if err != nil {
		return "", false, apperr.Wrap(apperr.KindPersistence, err, "open credential %s", backend)
	}
	return secret, true, nil
}

func (r *CredentialRepo) DeleteSecret(ctx context.Context, backend string) error {
	err := r.db.WithContext(ctx).Where("backend = ?", backend).Delete(&models.Credential{}).Error
	return apperr.Wrap(apperr.KindPersistence, err, "delete credential %s", backend)
}

// ListMasked reports which of the given backends have a stored secret,
// exposing at most a masked preview.
func (r *CredentialRepo) ListMasked(ctx context.Context, backends []string) ([]MaskedCredential, error) {
	out := make([]MaskedCredential, 0, len(backends))
	for _, backend := range backends {
		secret, ok, err := r.GetSecret(ctx, backend)
		if err != nil {
			return nil, err
		}
		entry := MaskedCredential{Backend: backend, HasKey: ok}
		if ok {
			entry.MaskedKey = maskSecret(secret)
		}
		out = append(out, entry)
	}
	return out, nil
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (r *CredentialRepo) seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &r.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (r *CredentialRepo) open(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(raw) < 24 {
		return "", errors.New("sealed credential too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	opened, ok := secretbox.Open(nil, raw[24:], &nonce, &r.key)
	if !ok {
		return "", errors.New("credential decryption failed")
	}
	return string(opened), nil
}
