package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a strong ETag over its JSON
// encoding, or 304 when the client already holds that representation.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	etag := etagFor(body)
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "no-cache")

	if status == http.StatusOK && etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func etagFor(body []byte) string {
	sum := sha256.Sum256(body)

	// 16 bytes of the digest are plenty to tell representations apart
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches implements the weak comparison If-None-Match asks for.
func etagMatches(header, current string) bool {
	header = strings.TrimSpace(header)
	if header == "" || current == "" {
		return false
	}

	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == current {
			return true
		}
	}

	return false
}
