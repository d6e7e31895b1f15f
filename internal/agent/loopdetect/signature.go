package loopdetect

import (
	"crypto/sha256"
	"encoding/hex"
)

// ToolCallSignature derives a stable signature for a tool invocation: the
// tool name plus its raw JSON arguments, hashed so a large input payload
// (e.g. a long file write) doesn't bloat the detector's count map.
func ToolCallSignature(toolName string, rawInput []byte) string {
	h := sha256.New()
	h.Write([]byte(toolName))
	h.Write([]byte{0})
	h.Write(rawInput)
	return toolName + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}
