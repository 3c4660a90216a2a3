// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Default argon2id parameters, matching the desktop application's historical hashes.
const (
	DefaultArgon2Memory      = 19 * 1024 // KiB
	DefaultArgon2Iterations  = 2
	DefaultArgon2Parallelism = 1
	DefaultArgon2SaltLen     = 16 // bytes
	DefaultArgon2KeyLen      = 32 // bytes
)

// Hard ceilings applied to parameters read from a stored hash. They bound the work
// an attacker-supplied hash string can cause and do not depend on current settings.
// They equal the largest costs the configuration accepts, so any hash this package
// can produce still verifies; a hostile hash can cost at most one 1 GiB, t=20 run.
const (
	maxHashMemory      = 1024 * 1024 // 1 GiB in KiB
	maxHashIterations  = 20
	maxHashParallelism = 64
	minHashSaltLen     = 8
	minHashKeyLen      = 16
	maxHashKeyLen      = 128
)

// hashEncoding rejects non-canonical trailing bits; newlines are rejected separately.
var hashEncoding = base64.RawStdEncoding.Strict()

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a self-describing hash of the password with a fresh salt.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an
	// AUTH_MALFORMED_HASH error when the hash does not parse.
	Verify(password, hash string) (bool, error)

	// NeedsRehash returns true if the hash was not produced with the
	// hasher's current parameters.
	NeedsRehash(hash string) bool
}

// Argon2idParams controls argon2id cost. MemoryKiB is in KiB as argon2.IDKey expects.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams returns the default hashing parameters.
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		MemoryKiB:   DefaultArgon2Memory,
		Iterations:  DefaultArgon2Iterations,
		Parallelism: DefaultArgon2Parallelism,
		SaltLength:  DefaultArgon2SaltLen,
		KeyLength:   DefaultArgon2KeyLen,
	}
}

// Validate checks that the parameters are usable for new hashes.
func (p Argon2idParams) Validate() error {
	switch {
	case p.MemoryKiB < 8*uint32(p.Parallelism) || p.MemoryKiB > maxHashMemory:
		return invalidParam("memory_kib", p.MemoryKiB)
	case p.Iterations == 0 || p.Iterations > maxHashIterations:
		return invalidParam("iterations", p.Iterations)
	case p.Parallelism == 0 || p.Parallelism > maxHashParallelism:
		return invalidParam("parallelism", p.Parallelism)
	case p.SaltLength < minHashSaltLen || p.SaltLength > 64:
		return invalidParam("salt_length", p.SaltLength)
	case p.KeyLength < minHashKeyLen || p.KeyLength > maxHashKeyLen:
		return invalidParam("key_length", p.KeyLength)
	}
	return nil
}

func invalidParam(name string, value any) error {
	return oops.Code(CodeInvalidConfig).
		With("param", name).
		With("value", value).
		Errorf("invalid argon2id parameter %s: %v", name, value)
}

// HasherOption configures an Argon2idHasher during construction.
type HasherOption func(*Argon2idHasher)

// WithSaltSource replaces crypto/rand as the source of salt bytes.
func WithSaltSource(r io.Reader) HasherOption {
	return func(h *Argon2idHasher) {
		h.rand = r
	}
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct {
	params Argon2idParams
	rand   io.Reader
}

// NewArgon2idHasher creates a hasher that produces new hashes with params.
// Hashes made with other parameters still verify using their embedded values.
func NewArgon2idHasher(params Argon2idParams, opts ...HasherOption) (*Argon2idHasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	h := &Argon2idHasher{
		params: params,
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Params returns the parameters used for new hashes.
func (h *Argon2idHasher) Params() Argon2idParams {
	return h.params
}

// Hash produces an argon2id hash of the password in PHC string format:
// $argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", oops.Code(CodeHashingFailed).
			With("operation", "read salt").
			With("requested_bytes", h.params.SaltLength).
			Wrap(err)
	}

	start := time.Now()
	key := argon2.IDKey([]byte(password), salt,
		h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)
	observeKDF(kdfOperationHash, time.Since(start))

	return encodeHash(h.params, salt, key), nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	rec, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	start := time.Now()
	computed := argon2.IDKey([]byte(password), rec.salt,
		rec.params.Iterations, rec.params.MemoryKiB, rec.params.Parallelism, rec.params.KeyLength)
	observeKDF(kdfOperationVerify, time.Since(start))

	return subtle.ConstantTimeCompare(computed, rec.key) == 1, nil
}

// NeedsRehash returns true if the hash does not parse or was produced with
// parameters other than the hasher's current ones.
func (h *Argon2idHasher) NeedsRehash(encodedHash string) bool {
	rec, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return rec.params != h.params
}

// hashRecord is the decoded form of an encoded hash.
type hashRecord struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func encodeHash(p Argon2idParams, salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.MemoryKiB,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeHash(encoded string) (hashRecord, error) {
	if strings.ContainsAny(encoded, "\r\n") {
		return hashRecord{}, errMalformedHash("unexpected line break")
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return hashRecord{}, errMalformedHash("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return hashRecord{}, oops.Code(CodeMalformedHash).
			With("algorithm", parts[1]).
			Errorf("unsupported hash algorithm: %s", parts[1])
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return hashRecord{}, errMalformedHash("unsupported argon2 version")
	}

	params, err := parseParams(parts[3])
	if err != nil {
		return hashRecord{}, err
	}

	salt, err := hashEncoding.DecodeString(parts[4])
	if err != nil {
		return hashRecord{}, oops.Code(CodeMalformedHash).With("field", "salt").Wrapf(err, "malformed password hash: invalid salt encoding")
	}
	if len(salt) < minHashSaltLen {
		return hashRecord{}, errMalformedHash("salt too short")
	}

	key, err := hashEncoding.DecodeString(parts[5])
	if err != nil {
		return hashRecord{}, oops.Code(CodeMalformedHash).With("field", "key").Wrapf(err, "malformed password hash: invalid key encoding")
	}
	if len(key) < minHashKeyLen || len(key) > maxHashKeyLen {
		return hashRecord{}, oops.Code(CodeMalformedHash).
			With("key_length", len(key)).
			Errorf("invalid hash key length: %d", len(key))
	}

	params.SaltLength = uint32(len(salt)) //nolint:gosec // bounded by the base64 segment length
	params.KeyLength = uint32(len(key))   //nolint:gosec // bounded by maxHashKeyLen above

	return hashRecord{params: params, salt: salt, key: key}, nil
}

// parseParams parses the "m=<m>,t=<t>,p=<p>" segment. Each value must be a
// plain decimal integer within the hard ceilings.
func parseParams(segment string) (Argon2idParams, error) {
	fields := strings.Split(segment, ",")
	if len(fields) != 3 {
		return Argon2idParams{}, errMalformedHash("invalid parameters format")
	}

	var values [3]uint64
	for i, name := range []string{"m=", "t=", "p="} {
		raw, ok := strings.CutPrefix(fields[i], name)
		if !ok {
			return Argon2idParams{}, errMalformedHash("invalid parameters format")
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			return Argon2idParams{}, oops.Code(CodeMalformedHash).
				With("param", strings.TrimSuffix(name, "=")).
				Errorf("invalid parameter value %q", raw)
		}
		values[i] = v
	}

	memory, iterations, threads := values[0], values[1], values[2]
	if threads > 255 {
		return Argon2idParams{}, oops.Code(CodeMalformedHash).
			With("threads", threads).
			Errorf("threads value %d exceeds uint8 max", threads)
	}
	if memory > maxHashMemory || iterations > maxHashIterations || threads > maxHashParallelism {
		return Argon2idParams{}, oops.Code(CodeMalformedHash).
			With("memory_kib", memory).
			With("iterations", iterations).
			With("threads", threads).
			Errorf("hash parameters exceed limits")
	}

	return Argon2idParams{
		MemoryKiB:   uint32(memory),
		Iterations:  uint32(iterations),
		Parallelism: uint8(threads),
	}, nil
}
