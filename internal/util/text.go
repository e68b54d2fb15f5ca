package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

func StringPtr(v string) *string {
	return &v
}

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func HashBytes(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// SanitizeFileName turns a source path into a name safe to embed in an output file name.
func SanitizeFileName(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_", "#", "_")
	out := repl.Replace(base)
	if len(out) > 120 {
		out = out[:120]
	}
	if out == "" {
		out = "dataset"
	}
	return out
}
