// Package verify authenticates release artifacts against detached
// sidecar files placed next to them: minisign signatures, PGP
// signatures, and SHA-256 checksum files, tried in that order. A method
// that fails rejects the artifact outright; a method whose sidecar or
// key material is absent hands over to the next one.
package verify

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/jedisct1/go-minisign"
)

// Method names reported for a successful verification.
const (
	MethodMinisign = "minisign"
	MethodPGP      = "pgp"
	MethodSHA256   = "sha256"
)

// Mode controls how strictly artifacts are verified.
type Mode int

const (
	// ModeAuto verifies with whatever sidecar material exists and accepts
	// artifacts that ship none.
	ModeAuto Mode = iota
	// ModeOff skips verification entirely.
	ModeOff
	// ModeRequired rejects artifacts that no method can vouch for.
	ModeRequired
)

// String returns the mode's configuration spelling.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeRequired:
		return "required"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a configuration value into a Mode. The empty string
// means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "off":
		return ModeOff, nil
	case "required":
		return ModeRequired, nil
	default:
		return ModeAuto, fmt.Errorf("unknown verification mode %q (want off, auto, or required)", s)
	}
}

// Sidecar names probed next to the artifact.
const minisignSuffix = ".minisig"

var (
	pgpSuffixes               = []string{".asc", ".sig"}
	dedicatedChecksumSuffixes = []string{".sha256", ".sha256sum"}
	sharedChecksumNames       = []string{"SHA256SUMS", "checksums.txt"}
)

// errNoChecksumEntry marks a checksum file that parses fine but has no
// line for the artifact.
var errNoChecksumEntry = errors.New("checksum entry not found")

// Verifier checks artifacts using detached sidecar files found next to
// them. The zero value verifies opportunistically with no key material,
// which in practice means checksums only.
type Verifier struct {
	mode        Mode
	minisignKey string
	pgpKeyring  string
}

// Config holds construction options for a Verifier.
type Config struct {
	// Mode selects off, auto, or required behavior.
	Mode Mode
	// MinisignKey is the path to a minisign public key file. Empty
	// disables the minisign method.
	MinisignKey string
	// PGPKeyring is the path to an armored or binary PGP public keyring.
	// Empty disables the PGP method.
	PGPKeyring string
}

// NewVerifier creates a verifier from config.
func NewVerifier(config Config) *Verifier {
	return &Verifier{
		mode:        config.Mode,
		minisignKey: config.MinisignKey,
		pgpKeyring:  config.PGPKeyring,
	}
}

// Verify authenticates the artifact at artifactPath and reports the
// method that vouched for it. An empty method with a nil error means no
// method applied and the mode tolerates that.
func (v *Verifier) Verify(ctx context.Context, artifactPath string) (string, error) {
	if v.mode == ModeOff {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("verification cancelled: %w", err)
	}

	applied, err := v.verifyMinisign(artifactPath)
	if err != nil {
		return "", err
	}
	if applied {
		return MethodMinisign, nil
	}

	applied, err = v.verifyPGP(artifactPath)
	if err != nil {
		return "", err
	}
	if applied {
		return MethodPGP, nil
	}

	applied, err = v.verifySHA256(artifactPath)
	if err != nil {
		return "", err
	}
	if applied {
		return MethodSHA256, nil
	}

	if v.mode == ModeRequired {
		return "", fmt.Errorf("no signature or checksum vouches for %s and verification is required",
			filepath.Base(artifactPath))
	}
	return "", nil
}

// verifyMinisign checks a .minisig sidecar against the configured public
// key. Applies only when both the sidecar and the key are present.
func (v *Verifier) verifyMinisign(artifactPath string) (bool, error) {
	if v.minisignKey == "" {
		return false, nil
	}
	sigPath := artifactPath + minisignSuffix
	exists, err := fileExists(sigPath)
	if err != nil || !exists {
		return false, err
	}

	pubKey, err := minisign.NewPublicKeyFromFile(v.minisignKey)
	if err != nil {
		return false, fmt.Errorf("read minisign key: %w", err)
	}
	sig, err := minisign.NewSignatureFromFile(sigPath)
	if err != nil {
		return false, fmt.Errorf("read minisign signature: %w", err)
	}
	content, err := os.ReadFile(artifactPath)
	if err != nil {
		return false, fmt.Errorf("read artifact: %w", err)
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return false, fmt.Errorf("minisign verification: %w", err)
	}
	if !valid {
		return false, fmt.Errorf("minisign signature for %s did not verify", filepath.Base(artifactPath))
	}
	return true, nil
}

// verifyPGP checks an .asc or .sig sidecar against the configured
// keyring, trying the armored reading first and falling back to binary.
func (v *Verifier) verifyPGP(artifactPath string) (bool, error) {
	if v.pgpKeyring == "" {
		return false, nil
	}
	var sigPath string
	for _, suffix := range pgpSuffixes {
		candidate := artifactPath + suffix
		exists, err := fileExists(candidate)
		if err != nil {
			return false, err
		}
		if exists {
			sigPath = candidate
			break
		}
	}
	if sigPath == "" {
		return false, nil
	}

	keyring, err := loadKeyring(v.pgpKeyring)
	if err != nil {
		return false, fmt.Errorf("load keyring: %w", err)
	}

	artifactFile, err := os.Open(artifactPath)
	if err != nil {
		return false, fmt.Errorf("open artifact: %w", err)
	}
	defer artifactFile.Close()

	sigFile, err := os.Open(sigPath)
	if err != nil {
		return false, fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, artifactFile, sigFile, nil)
	if err != nil {
		// Try non-armored signature
		artifactFile.Seek(0, io.SeekStart)
		sigFile.Seek(0, io.SeekStart)
		_, err = openpgp.CheckDetachedSignature(keyring, artifactFile, sigFile, nil)
	}
	if err != nil {
		return false, fmt.Errorf("pgp signature for %s did not verify: %w", filepath.Base(artifactPath), err)
	}
	return true, nil
}

// verifySHA256 compares the artifact's digest against the first checksum
// source that mentions it: a dedicated sidecar, then the shared checksum
// files of the directory. A shared file without an entry hands over to
// the next source; a dedicated sidecar without one is corrupt.
func (v *Verifier) verifySHA256(artifactPath string) (bool, error) {
	sources, err := v.checksumSources(artifactPath)
	if err != nil {
		return false, err
	}
	filename := filepath.Base(artifactPath)

	for _, source := range sources {
		expected, err := expectedChecksum(source.path, filename, source.dedicated)
		if err != nil {
			if !source.dedicated && errors.Is(err, errNoChecksumEntry) {
				continue
			}
			return false, err
		}

		actual, err := fileSHA256(artifactPath)
		if err != nil {
			return false, fmt.Errorf("hash artifact: %w", err)
		}
		if !strings.EqualFold(actual, expected) {
			return false, fmt.Errorf("checksum mismatch for %s:\nactual:   %s\nexpected: %s",
				filename, actual, expected)
		}
		return true, nil
	}
	return false, nil
}

// checksumSource is one candidate checksum file. Dedicated sidecars may
// hold a bare digest; shared files must name the artifact.
type checksumSource struct {
	path      string
	dedicated bool
}

func (v *Verifier) checksumSources(artifactPath string) ([]checksumSource, error) {
	var sources []checksumSource
	for _, suffix := range dedicatedChecksumSuffixes {
		path := artifactPath + suffix
		exists, err := fileExists(path)
		if err != nil {
			return nil, err
		}
		if exists {
			sources = append(sources, checksumSource{path: path, dedicated: true})
		}
	}
	dir := filepath.Dir(artifactPath)
	for _, name := range sharedChecksumNames {
		path := filepath.Join(dir, name)
		exists, err := fileExists(path)
		if err != nil {
			return nil, err
		}
		if exists {
			sources = append(sources, checksumSource{path: path})
		}
	}
	return sources, nil
}

// loadKeyring loads a PGP public keyring, armored or binary.
func loadKeyring(keyringPath string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		// Try reading as non-armored keyring
		keyringFile.Seek(0, io.SeekStart)
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return keyring, nil
}

// expectedChecksum extracts the digest for filename from a checksum file.
// Lines follow the sha256sum convention of "digest  name", with the
// binary-mode "*name" marker tolerated. Dedicated sidecars may instead
// hold a single bare digest.
func expectedChecksum(checksumPath, filename string, dedicated bool) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		if len(parts) == 1 {
			if dedicated && isHexDigest(parts[0]) {
				return parts[0], nil
			}
			continue
		}

		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("%w for %s in %s", errNoChecksumEntry, filename, filepath.Base(checksumPath))
}

// fileSHA256 returns the hex SHA-256 digest of a file.
func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}
