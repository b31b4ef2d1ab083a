package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// hashKey builds "prefix:<sha256 of the JSON-encoded parts>". Struct parts
// encode their fields in declaration order, so equal options give equal keys.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashSource hashes circuit source text with CRLF line endings folded to LF,
// so a file saved on Windows shares cache entries with its Unix copy.
func HashSource(src string) string {
	return Hash([]byte(strings.ReplaceAll(src, "\r\n", "\n")))
}
