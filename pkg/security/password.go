package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// Encoded hashes look like $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
const hashPrefix = "$argon2id$v=19$"

const tempPasswordCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

var b64 = base64.RawStdEncoding

// ArgonParams are the cost settings embedded in every encoded hash.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// ParamsFromConfig clamps the configured costs to workable bounds.
func ParamsFromConfig(cfg config.PasswordConfig) ArgonParams {
	return ArgonParams{
		Memory:      clamp(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clamp(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     clamp(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clamp(cfg.ArgonKeyLen, 16, 64),
	}
}

func (p ArgonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
}

// HashPassword derives a fresh salted Argon2id hash for password.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	p := ParamsFromConfig(cfg)
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return fmt.Sprintf("%sm=%d,t=%d,p=%d$%s$%s", hashPrefix, p.Memory, p.Time, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(p.derive(password, salt))), nil
}

// VerifyPassword reports whether password matches encoded. A malformed hash is an error.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.derive(password, salt)) == 1, nil
}

// NeedsRehash reports whether encoded was produced with costs other than the
// configured ones. Unparseable hashes always need a rehash.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	got, _, _, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	want := ParamsFromConfig(cfg)
	return got.Memory != want.Memory || got.Time != want.Time ||
		got.Parallelism != want.Parallelism || got.KeyLen != want.KeyLen
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	rest, ok := strings.CutPrefix(encoded, hashPrefix)
	if !ok {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 3 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var p ArgonParams
	var threads uint32
	if _, err := fmt.Sscanf(fields[0], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	if p.Memory == 0 || p.Time == 0 || threads == 0 || threads > 255 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	p.Parallelism = uint8(threads)

	salt, err := b64.DecodeString(fields[1])
	if err != nil || len(salt) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(fields[2])
	if err != nil || len(key) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen, p.KeyLen = uint32(len(salt)), uint32(len(key))
	return p, salt, key, nil
}

func clamp(value, lo, hi int) uint32 {
	switch {
	case value < lo:
		return uint32(lo)
	case value > hi:
		return uint32(hi)
	}
	return uint32(value)
}

// GenerateTempPassword returns a random password of length characters drawn
// from an alphabet without look-alike glyphs (0/O, 1/l/I).
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	max := big.NewInt(int64(len(tempPasswordCharset)))
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(tempPasswordCharset[n.Int64()])
	}
	return sb.String(), nil
}
