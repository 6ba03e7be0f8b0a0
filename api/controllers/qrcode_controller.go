package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/diary-upload-go/api/models"
	"github.com/moyoez/diary-upload-go/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// HandleSessionQRCode returns a PNG QR code of the session snapshot link,
// so the upload can be followed from a phone on the same machine's network.
// GET ?size=200x200
func HandleSessionQRCode(c *gin.Context) {
	sessionId := c.Param("sessionId")
	if _, ok := models.LookupSession(sessionId); !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(tool.BuildSnapshotURL(c.Request.Host, sessionId), qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
