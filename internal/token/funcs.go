package token

import (
	"crypto/md5"  //nolint:gosec // digest choice belongs to the specification author
	"crypto/sha1" //nolint:gosec // digest choice belongs to the specification author
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"text/template"

	"golang.org/x/crypto/bcrypt"
)

var funcs = template.FuncMap{
	"hash":   hashValue,
	"encode": encodeValue,
}

var digests = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// hashValue implements hash(algo, data[, format[, cost]]). Digests are
// base64 unless format says hex. bcrypt ignores the format unless it is
// hex, and accepts an optional cost in place of a salt.
func hashValue(algo string, data any, opts ...any) (string, error) {
	format := "base64"
	if len(opts) > 0 {
		format = fmt.Sprint(opts[0])
	}
	input := []byte(fmt.Sprint(data))

	if algo == "bcrypt" {
		cost := bcrypt.DefaultCost
		if len(opts) > 1 {
			if n, ok := opts[1].(int); ok && n >= bcrypt.MinCost && n <= bcrypt.MaxCost {
				cost = n
			}
		}
		out, err := bcrypt.GenerateFromPassword(input, cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		if format == "hex" {
			return hex.EncodeToString(out), nil
		}
		return string(out), nil
	}

	newHash, ok := digests[algo]
	if !ok {
		return "", fmt.Errorf("unsupported hash algorithm %q", algo)
	}
	h := newHash()
	h.Write(input)
	return encodeBytes(h.Sum(nil), format)
}

// encodeValue implements encode(data, encoding).
func encodeValue(data any, encoding string) (string, error) {
	return encodeBytes([]byte(fmt.Sprint(data)), encoding)
}

func encodeBytes(b []byte, encoding string) (string, error) {
	switch encoding {
	case "base64":
		return base64.StdEncoding.EncodeToString(b), nil
	case "hex":
		return hex.EncodeToString(b), nil
	case "utf8", "ascii", "binary":
		return string(b), nil
	}
	return "", fmt.Errorf("unsupported encoding %q", encoding)
}
