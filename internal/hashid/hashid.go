// Package hashid computes the content digest carried on every entry in the
// symbol inventory. It follows the digest -> encode -> truncate shape of the
// Astro compiler's internal/hash.go (which hashes a rendered AST subtree
// with xxhash and truncates a base32 encoding), substituting a cryptographic
// digest family and URL-safe base64 alphabet.
package hashid

import (
	"crypto/sha256"
	"encoding/base64"
)

// Length is the number of characters a digest is truncated to.
const Length = 12

// encoding is URL-safe, padding-free, so digests are shell- and
// filename-safe without escaping.
var encoding = base64.RawURLEncoding

// OfBytes computes the digest over an exact byte range. There is no
// normalisation: whitespace, comments, and quoting are all significant.
//
// RawURLEncoding emits ceil(n*8/6) characters per n input bytes, so the
// first 8 sum bytes alone only yield 11 — one short of Length. Encoding
// 9 bytes produces exactly 12, with no slice to truncate.
func OfBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return encoding.EncodeToString(sum[:9])
}

// OfSpan hashes source[byteStart:byteEnd). Callers are expected to have
// already validated the range lies within source.
func OfSpan(source []byte, byteStart, byteEnd int) string {
	return OfBytes(source[byteStart:byteEnd])
}
