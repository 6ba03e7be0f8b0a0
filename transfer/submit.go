package transfer

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

// UploadFieldName is the multipart field the diary server reads the file from.
const UploadFieldName = "file"

// maxResponseBody caps how much of a JSON answer is read.
const maxResponseBody = 1 << 20

// UploadFile is the payload of one submission.
type UploadFile struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Submit sends file to the upload endpoint and then follows the server-side
// job until it completes, fails or the poll bounds run out. It returns nil
// only when the session reached StatusCompleted; otherwise the error is a
// *SessionError.
func (s *Session) Submit(ctx context.Context, file UploadFile) error {
	if file.Data == nil {
		return fmt.Errorf("invalid parameters: data must not be nil")
	}
	if file.FileName == "" {
		return fmt.Errorf("invalid parameters: fileName must not be empty")
	}
	if err := s.begin(file.FileName); err != nil {
		return err
	}

	s.presenter.SetVisible(true)
	s.presenter.SetValue(0)
	tool.DefaultLogger.Infof("[Upload] session %s: submitting %s (%d bytes)", s.id, file.FileName, file.Size)

	uploadId, serr := s.submit(ctx, file)
	if serr != nil {
		return s.fail(serr, fmt.Sprintf(textErrorFmt, serr.Message), true)
	}

	s.markInProgress(uploadId)
	tool.DefaultLogger.Infof("[Upload] session %s: accepted as upload %s", s.id, uploadId)
	return s.poll(ctx)
}

func (s *Session) submit(ctx context.Context, file UploadFile) (string, *SessionError) {
	url, err := tool.BuildUploadURL(s.endpoints.BaseURL, s.endpoints.UploadPath)
	if err != nil {
		return "", newSessionError(KindTransportError, fmt.Sprintf("failed to build upload URL: %v", err), err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(ctx, mw, file))
	}()
	// unblocks the writer if the request ends before the body is consumed
	defer pr.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return "", newSessionError(KindTransportError, fmt.Sprintf("failed to create upload request: %v", err), err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", newSessionError(KindCancelled, textCancelled, ctx.Err())
		}
		return "", newSessionError(KindTransportError, fmt.Sprintf("failed to send upload request: %v", err), err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		if ctx.Err() != nil {
			return "", newSessionError(KindCancelled, textCancelled, ctx.Err())
		}
		return "", newSessionError(KindTransportError, fmt.Sprintf("failed to read upload response: %v", err), err)
	}
	tool.DefaultLogger.Debugf("[Upload] upload response (%s): %s", resp.Status, string(body))

	var answer types.UploadSubmitResponse
	if err := sonic.Unmarshal(body, &answer); err != nil {
		return "", newSessionError(KindTransportError, fmt.Sprintf("failed to parse upload response (%s): %v", resp.Status, err), err)
	}
	if answer.Error != "" {
		return "", newSessionError(KindSubmissionRejected, answer.Error, nil)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", newSessionError(KindTransportError, fmt.Sprintf("upload request failed: %s", resp.Status), nil)
	}
	if answer.UploadId == "" {
		return "", newSessionError(KindTransportError, "upload response missing upload_id", nil)
	}
	return answer.UploadId, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeMultipart(ctx context.Context, mw *multipart.Writer, file UploadFile) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(UploadFieldName), quoteEscaper.Replace(file.FileName)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create multipart part: %v", err)
	}
	if _, err := tool.CopyWithContext(ctx, part, file.Data); err != nil {
		return fmt.Errorf("failed to write file data: %v", err)
	}
	return mw.Close()
}
