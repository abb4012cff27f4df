// Package codec defines the pluggable key and payload codecs a
// diskcache.Cache uses to turn caller keys into filenames and caller values
// into bytes, plus the default implementations.
package codec

import "strings"

// KeyEncoder turns a caller key into a filesystem-safe filename.
type KeyEncoder func(key string) string

// KeyDecoder reverses a KeyEncoder.
type KeyDecoder func(name string) string

// Serializer turns a caller value into bytes, parameterized by the key it
// is being stored under.
type Serializer func(key string, value []byte) ([]byte, error)

// Deserializer reverses a Serializer.
type Deserializer func(key string, raw []byte) ([]byte, error)

const hexDigits = "0123456789ABCDEF"

// escapeSet names characters that matter in file paths or in the encoding
// itself; listed here only for documentation — the encoder escapes every
// non-alphanumeric byte, so these are always among the escaped set, not
// treated specially.
const escapeSet = ".:/% "

// DefaultKeyEncoder percent-encodes every byte that is not an ASCII letter
// or digit. An empty key encodes to the empty string.
func DefaultKeyEncoder(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if isAlnum(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

// DefaultKeyDecoder reverses DefaultKeyEncoder's percent-encoding. Malformed
// escape sequences are passed through literally rather than erroring, since
// key decoding has no error return in the public contract.
func DefaultKeyDecoder(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '%' || i+2 >= len(name) {
			b.WriteByte(c)
			continue
		}
		hi, okHi := hexVal(name[i+1])
		lo, okLo := hexVal(name[i+2])
		if !okHi || !okLo {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return b.String()
}

// DefaultSerializer archives the value verbatim; the core never interprets
// payload bytes.
func DefaultSerializer(_ string, value []byte) ([]byte, error) {
	return value, nil
}

// DefaultDeserializer reverses DefaultSerializer.
func DefaultDeserializer(_ string, raw []byte) ([]byte, error) {
	return raw, nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	default:
		return 0, false
	}
}
