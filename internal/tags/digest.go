package tags

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ostafen/audiometa/model"
)

// BuildDigest always computes the SHA-256 of payload; it embeds the raw
// bytes alongside the digest only when includeBinaryData is set and the
// payload doesn't exceed maxBinaryTagBytes, so the digest's presence is
// independent of whether the caller asked to embed data.
func BuildDigest(payload []byte, mime string, includeBinaryData bool, maxBinaryTagBytes int) *model.BinaryDigest {
	sum := sha256.Sum256(payload)
	d := &model.BinaryDigest{
		Size:   len(payload),
		MIME:   mime,
		SHA256: hex.EncodeToString(sum[:]),
	}
	if includeBinaryData && len(payload) <= maxBinaryTagBytes {
		d.Data = append([]byte(nil), payload...)
	}
	return d
}
