package model

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"

	// onionV3Version is the version byte embedded in v3 onion addresses.
	onionV3Version = 0x03
)

// onionV3Pattern matches v3 onion hosts: 56 base32 characters plus the
// .onion suffix. Base32 uses lowercase a-z and digits 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// onionV2Pattern matches the deprecated v2 format (16 base32 characters).
// V2 services were retired from the Tor network in 2021; we accept the
// format as syntactically valid input but fetches will fail upstream.
var onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)

// v3ChecksumPrefix is the prefix used in v3 checksum calculation, per
// the Tor rendezvous specification.
var v3ChecksumPrefix = []byte(".onion checksum")

// IsOnionHost reports whether the host names a Tor hidden service.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), OnionSuffix)
}

// ValidOnionHost reports whether the host is a well-formed onion
// address. V3 addresses get full checksum verification; v2 addresses
// only a format check.
//
// Design decision: We verify the v3 checksum rather than stopping at
// the regex because a typo'd address wastes a whole Tor circuit and a
// long timeout before failing. Rejecting it before any I/O is the
// fetcher's cheapest failure path.
func ValidOnionHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if onionV2Pattern.MatchString(host) {
		return true
	}
	return IsValidV3Address(host)
}

// IsValidV3Address checks format and checksum of a v3 onion address.
// The address must include the ".onion" suffix.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	// The 56 base32 characters decode to exactly 35 bytes:
	// 32-byte ed25519 public key, 2-byte checksum, 1-byte version.
	base := strings.TrimSuffix(address, OnionSuffix)
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(base))
	if err != nil || len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]
	if version != onionV3Version {
		return false
	}

	// checksum = first 2 bytes of SHA3-256(".onion checksum" || pubkey || version)
	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum returns the two checksum bytes for a v3 address.
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(v3ChecksumPrefix)+len(pubkey)+1)
	data = append(data, v3ChecksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}
