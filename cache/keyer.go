package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResponseKey derives the response-cache key for a prompt routed to a target.
// Format: resp:<target>:<hash>
// where hash is the first 16 hex characters of SHA-256(prompt).
func ResponseKey(target, prompt string) string {
	return fmt.Sprintf("resp:%s:%s", target, promptHash(prompt))
}

// ContextKey derives the context-cache key for a prompt.
// Format: ctx:<hash>
func ContextKey(prompt string) string {
	return "ctx:" + promptHash(prompt)
}

// promptHash returns the first 8 bytes of SHA-256(prompt) hex encoded.
// 64 bits is enough to make collisions negligible at cache scale while
// keeping keys short.
func promptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}
