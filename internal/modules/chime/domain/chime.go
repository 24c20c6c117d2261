package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

var (
	ErrChecksumMismatch = errors.New("chime plugin checksum mismatch")
	ErrPluginTimeout    = errors.New("chime plugin timeout")

	// ErrPluginUnavailable is returned while the plugin process is starting
	// or after it failed to start.
	ErrPluginUnavailable = errors.New("chime plugin unavailable")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest pins an out-of-process chime plugin to a binary and its digest.
type Manifest struct {
	Name   string `json:"name" yaml:"name"`
	Binary string `json:"binary" yaml:"binary"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("chime plugin name is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("chime plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("chime plugin sha256 must be lowercase 64-char hex")
	}
	return nil
}

// VerifyChecksum hashes the binary and compares it with the pinned digest.
func (m Manifest) VerifyChecksum() error {
	f, err := os.Open(m.Binary)
	if err != nil {
		return fmt.Errorf("open chime plugin binary: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash chime plugin binary: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != m.SHA256 {
		return ErrChecksumMismatch
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
	Sound   string
}
