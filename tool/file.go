package tool

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/diary-upload-go/types"
)

const (
	MaxUploadFileSize = 5 * 1024 * 1024 // 5 MB
	sniffLen          = 2048
)

// AllowedUploadTypes lists the MIME types the diary server imports.
var AllowedUploadTypes = []string{
	"text/plain",
	"application/json",
	"text/csv",
	"application/vnd.ms-excel", // excel-style csv
}

// CheckUploadContent validates size and sniffed type of data.
// It returns the detected MIME without parameters.
func CheckUploadContent(size int64, head []byte) (string, error) {
	if size > MaxUploadFileSize {
		return "", fmt.Errorf("File size exceeds 5 MB limit")
	}
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(mimetype.Detect(head).String(), ";", 2)[0]))
	if !slices.Contains(AllowedUploadTypes, mime) {
		if mime == "" {
			mime = "unknown"
		}
		return "", fmt.Errorf("File type “%s” not allowed", mime)
	}
	return mime, nil
}

// CheckUploadFile stats and sniffs a file on disk before it is submitted.
func CheckUploadFile(path string) (*types.FileCheckResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %v", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	mime, err := CheckUploadContent(info.Size(), head[:n])
	if err != nil {
		return nil, err
	}
	return &types.FileCheckResult{
		FileName: filepath.Base(path),
		Size:     info.Size(),
		FileType: mime,
	}, nil
}

// CheckUploadBytes is CheckUploadContent for an in-memory payload.
func CheckUploadBytes(fileName string, data []byte) (*types.FileCheckResult, error) {
	mime, err := CheckUploadContent(int64(len(data)), data)
	if err != nil {
		return nil, err
	}
	return &types.FileCheckResult{
		FileName: filepath.Base(fileName),
		Size:     int64(len(data)),
		FileType: mime,
	}, nil
}

// ReadAllLimited reads r but fails once more than limit bytes are seen.
func ReadAllLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("File size exceeds 5 MB limit")
	}
	return buf.Bytes(), nil
}
