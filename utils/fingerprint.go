package utils

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Fingerprint hashes an operation template with its whitespace collapsed,
// so the same statement logs the same id whatever its parameters.
func Fingerprint(operation string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(strings.Fields(operation), " ")))
	return strconv.FormatUint(h.Sum64(), 16)
}
