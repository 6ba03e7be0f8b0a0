package controllers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/diary-upload-go/api/models"
	"github.com/moyoez/diary-upload-go/notify"
	"github.com/moyoez/diary-upload-go/presenter"
	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/transfer"
	"github.com/moyoez/diary-upload-go/types"
)

// UploadController starts upload sessions against the diary server and
// exposes their snapshots.
type UploadController struct {
	ctx       context.Context
	endpoints transfer.Endpoints
	poll      transfer.PollOptions
	client    *http.Client
}

// NewUploadController binds sessions to ctx: cancelling it cancels every
// running upload.
func NewUploadController(ctx context.Context, endpoints transfer.Endpoints, poll transfer.PollOptions, client *http.Client) *UploadController {
	if client == nil {
		client = tool.GetHttpClient()
	}
	return &UploadController{
		ctx:       ctx,
		endpoints: endpoints,
		poll:      poll,
		client:    client,
	}
}

// HandleUpload accepts a multipart "file", validates it and starts a session.
// The session runs in the background; progress goes out over notify-ws.
func (ctrl *UploadController) HandleUpload(c *gin.Context) {
	fh, err := c.FormFile(transfer.UploadFieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		tool.DefaultLogger.Errorf("[Upload] failed to open form file: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read file"))
		return
	}
	data, err := tool.ReadAllLimited(f, tool.MaxUploadFileSize)
	_ = f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	check, err := tool.CheckUploadBytes(fh.Filename, data)
	if err != nil {
		tool.DefaultLogger.Warnf("[Upload] rejected %s before submission: %v", fh.Filename, err)
		c.JSON(http.StatusBadRequest, tool.FastReturnErrorWithData(err.Error(), gin.H{"fileName": fh.Filename}))
		return
	}

	sessionId := tool.GenerateShortSessionID()
	view := presenter.Multi{
		presenter.NewNotify(sessionId, check.FileName),
		presenter.NewLog(tool.DefaultLogger, check.FileName),
	}
	session := transfer.NewSession(ctrl.endpoints, view,
		transfer.WithSessionId(sessionId),
		transfer.WithPollOptions(ctrl.poll),
		transfer.WithHTTPClient(ctrl.client),
	)
	models.StoreSession(session)

	file := transfer.UploadFile{
		FileName:    check.FileName,
		ContentType: check.FileType,
		Size:        check.Size,
		Data:        bytes.NewReader(data),
	}
	go func() {
		defer models.FinishSession(session)
		if err := session.Submit(ctrl.ctx, file); err != nil {
			tool.DefaultLogger.Warnf("[Upload] session %s ended: %v", session.Id(), err)
		}
		notify.SendUploadEndNotification(session.Snapshot())
	}()

	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(types.UploadStartResponse{
		SessionId: sessionId,
		StatusUrl: tool.BuildSnapshotURL(c.Request.Host, sessionId),
	}))
}

// HandleSnapshot returns the current state of one session.
func (ctrl *UploadController) HandleSnapshot(c *gin.Context) {
	session, ok := models.LookupSession(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(session.Snapshot()))
}

// HandleRemove forgets a finished session. A running one cannot be removed.
func (ctrl *UploadController) HandleRemove(c *gin.Context) {
	sessionId := c.Param("sessionId")
	session, ok := models.LookupSession(sessionId)
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return
	}
	if !session.Status().Terminal() {
		c.JSON(http.StatusConflict, tool.FastReturnError("Upload still running"))
		return
	}
	models.RemoveSession(sessionId)
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
