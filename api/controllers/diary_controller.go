package controllers

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/diary-upload-go/diary"
	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

// HandleDiarySort orders posted cards newest first.
func HandleDiarySort(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read request body"))
		return
	}
	var request types.DiarySortRequest
	if err := sonic.Unmarshal(body, &request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(diary.SortCards(request.Cards)))
}

// HandleDiaryValidate runs the entry form checks.
func HandleDiaryValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read request body"))
		return
	}
	var request types.DiaryValidateRequest
	if err := sonic.Unmarshal(body, &request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(diary.Validate(request)))
}
