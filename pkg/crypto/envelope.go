// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // PBKDF2-HMAC-SHA1 matches the key derivation of existing deployments
	"crypto/sha256"
	"encoding/base64"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"github.com/stacklok/sentinel/pkg/errors"
)

const (
	envelopeIterations = 1000
	envelopeKeySize    = 32
	envelopeIVSize     = aes.BlockSize
	envelopeMACKeySize = 32
	envelopeTagSize    = sha256.Size
)

type envelope struct {
	aesKey []byte
	iv     []byte
	macKey []byte
}

// deriveEnvelope derives the AES-256 key, CBC IV and MAC key from key
// material. The salt is the key itself, so equal keys always yield equal
// envelopes; this is not a defense against key reuse.
func deriveEnvelope(key string) envelope {
	material := pbkdf2.Key([]byte(key), []byte(key), envelopeIterations,
		envelopeKeySize+envelopeIVSize+envelopeMACKeySize, sha1.New)
	return envelope{
		aesKey: material[:envelopeKeySize],
		iv:     material[envelopeKeySize : envelopeKeySize+envelopeIVSize],
		macKey: material[envelopeKeySize+envelopeIVSize:],
	}
}

func (e envelope) tag(ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, e.macKey)
	mac.Write(e.iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// Encrypt encrypts text with AES-256-CBC under a key derived from key and
// returns base64(ciphertext || HMAC-SHA256 tag).
func (p *SHA2Provider) Encrypt(text, key string) (string, error) {
	if key == "" {
		return "", errors.NewInvalidArgumentError("encryption key cannot be empty", nil)
	}

	env := deriveEnvelope(key)
	block, err := aes.NewCipher(env.aesKey)
	if err != nil {
		return "", errors.NewCryptoError("failed to create cipher", err)
	}

	plaintext := pkcs7Pad([]byte(text), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext), len(plaintext)+envelopeTagSize)
	cipher.NewCBCEncrypter(block, env.iv).CryptBlocks(ciphertext, plaintext)

	p.log.Debug("encrypted ticket", "bytes", len(ciphertext))
	return base64.StdEncoding.EncodeToString(append(ciphertext, env.tag(ciphertext)...)), nil
}

// Decrypt decrypts a ticket produced by Encrypt.
func (p *SHA2Provider) Decrypt(ticket, key string) (string, error) {
	if key == "" {
		return "", errors.NewInvalidArgumentError("decryption key cannot be empty", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(ticket)
	if err != nil {
		return "", errors.NewCryptoError("ticket is not valid base64", err)
	}
	if len(raw) < aes.BlockSize+envelopeTagSize || (len(raw)-envelopeTagSize)%aes.BlockSize != 0 {
		return "", errors.NewCryptoError("ticket has an invalid length", nil)
	}
	ciphertext, tag := raw[:len(raw)-envelopeTagSize], raw[len(raw)-envelopeTagSize:]

	env := deriveEnvelope(key)
	if !hmac.Equal(tag, env.tag(ciphertext)) {
		return "", errors.NewCryptoError("ticket authentication failed", nil)
	}

	block, err := aes.NewCipher(env.aesKey)
	if err != nil {
		return "", errors.NewCryptoError("failed to create cipher", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, env.iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", errors.NewCryptoError("decrypted ticket is not valid UTF-8", nil)
	}

	p.log.Debug("decrypted ticket")
	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.NewCryptoError("invalid ticket padding", nil)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.NewCryptoError("invalid ticket padding", nil)
		}
	}
	return data[:len(data)-n], nil
}
