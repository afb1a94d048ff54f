package handler

import (
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// UploadHandler 预上传媒体，返回可直接放入发帖请求的文件描述
type UploadHandler struct {
	uploader uploader.Uploader
}

func NewUploadHandler(u uploader.Uploader) *UploadHandler {
	return &UploadHandler{uploader: u}
}

// UploadFile 上传文件 (支持批量)
// @Summary 上传文件到 OSS (支持批量)
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]uploader.StoredFile}
// @Router /upload [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.FromError(c, apperror.Validation("Invalid form data"))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.FromError(c, apperror.Validation("No files uploaded"))
		return
	}
	if len(files) > uploader.MaxFilesPerRequest {
		response.FromError(c, apperror.Validation("Too many files"))
		return
	}

	if h.uploader == nil {
		response.FromError(c, apperror.Infrastructure("upload", uploader.ErrNotConfigured))
		return
	}

	stored, err := uploader.UploadAll(c.Request.Context(), h.uploader, files)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stored)
}
