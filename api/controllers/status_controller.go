package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/diary-upload-go/api/models"
	"github.com/moyoez/diary-upload-go/tool"
)

// HandleStatus reports that the agent is up and how many uploads are running.
func HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"running":        true,
		"runningUploads": models.RunningUploads(),
	}))
}
