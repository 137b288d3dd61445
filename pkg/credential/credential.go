// Package credential hashes and verifies account passwords. Every stored
// credential carries a method tag so the hashing scheme can be rotated
// without locking out users whose credentials were produced by an older
// scheme.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Method identifies the hashing scheme that produced a stored credential.
// The set is closed: verification dispatches on it exhaustively, so adding
// a method without updating Verify is a compile-visible change here rather
// than a runtime surprise.
type Method string

const (
	// MethodArgon2id is the current method. Encrypt always emits it.
	MethodArgon2id Method = "argon2id"

	// MethodBcrypt is kept for credentials written before the argon2id
	// rollout. Verify-only.
	MethodBcrypt Method = "bcrypt"
)

// Encrypted is a stored credential: the method tag plus the encoded hash.
// Both fields travel together; persistence must never write one without
// the other.
type Encrypted struct {
	Method Method
	Hash   string
}

var (
	// ErrMismatch reports that the supplied password does not match the
	// stored credential. This is an authentication failure, not a
	// programming error.
	ErrMismatch = errors.New("credential: password mismatch")

	// ErrUnsupportedMethod reports a method tag outside the closed set.
	// Seeing it means the stored data and this binary disagree.
	ErrUnsupportedMethod = errors.New("credential: unsupported method")

	// ErrMalformed reports a credential blob that cannot be parsed for
	// its tagged method.
	ErrMalformed = errors.New("credential: malformed hash")
)

// Argon2id parameters, following the OWASP minimum-cost guidance.
const (
	argonMemory      uint32 = 19 * 1024 // KiB
	argonIterations  uint32 = 2
	argonParallelism uint8  = 1
	argonKeyLength   uint32 = 32
	argonSaltLength         = 16
)

// Codec encrypts new passwords with the current method and verifies
// passwords against any supported method. The zero value is ready to use.
type Codec struct{}

// New returns a Codec.
func New() *Codec { return &Codec{} }

// Encrypt derives a salted credential from password using the current
// method. Two calls with the same password produce different hashes.
func (c *Codec) Encrypt(password string) (Encrypted, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return Encrypted{}, fmt.Errorf("credential: generating salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		argonIterations,
		argonMemory,
		argonParallelism,
		argonKeyLength,
	)

	// PHC string format: $argon2id$v=19$m=..,t=..,p=..$salt$hash
	hash := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return Encrypted{Method: MethodArgon2id, Hash: hash}, nil
}

// Verify compares password against the stored credential, dispatching on
// its method tag. It returns nil on a match, ErrMismatch on a wrong
// password, and ErrUnsupportedMethod or ErrMalformed for credentials this
// binary cannot interpret.
func (c *Codec) Verify(cred Encrypted, password string) error {
	switch cred.Method {
	case MethodArgon2id:
		return verifyArgon2id(cred.Hash, password)
	case MethodBcrypt:
		return verifyBcrypt(cred.Hash, password)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, cred.Method)
	}
}

func verifyArgon2id(encodedHash, password string) error {
	parts := strings.Split(encodedHash, "$")
	// ["", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash]
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return fmt.Errorf("%w: not a PHC argon2id string", ErrMalformed)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return fmt.Errorf("%w: version: %v", ErrMalformed, err)
	}
	if version != argon2.Version {
		return fmt.Errorf("%w: argon2 version %d", ErrMalformed, version)
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: parameters: %v", ErrMalformed, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrMalformed, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: hash: %v", ErrMalformed, err)
	}
	if len(want) == 0 {
		return fmt.Errorf("%w: empty hash", ErrMalformed)
	}

	got := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

func verifyBcrypt(encodedHash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
