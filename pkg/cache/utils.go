package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, param := range params {
		fmt.Fprintf(&b, ":%v", param)
	}
	return b.String()
}

// HashKey generates MD5 hash of a key.
func HashKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// SetKey is an order-insensitive key for a set of symbols.
func SetKey(symbols []string) string {
	uniq := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		uniq[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for s := range uniq {
		if s != "" {
			sorted = append(sorted, s)
		}
	}
	sort.Strings(sorted)
	return HashKey(strings.Join(sorted, ","))
}

// BuildPattern creates a pattern matching every key under prefix.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
