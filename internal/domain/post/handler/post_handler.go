package handler

import (
	"encoding/json"
	"strings"

	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/model"
	"github.com/Christentimmy/CasaRanche-Backend/internal/domain/post/service"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/middleware"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/response"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type PostHandler struct {
	service  service.PostService
	uploader uploader.Uploader
}

func NewPostHandler(s service.PostService, u uploader.Uploader) *PostHandler {
	return &PostHandler{service: s, uploader: u}
}

// ReactionInput 表情回应
type ReactionInput struct {
	Type  model.ReactionType `json:"type" binding:"required"`
	Emoji string             `json:"emoji"`
}

// CreatePost 发帖
// @Summary 发帖（JSON 或 multipart，文件字段为 files）
// @Tags Post
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} response.Response "id"
// @Router /api/post [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		response.FromError(c, apperror.Auth("Unauthorized"))
		return
	}

	req, err := h.bindCreateRequest(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	req.AuthorID = userID

	post, err := h.service.CreatePost(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, "Post created successfully", gin.H{"id": post.ID})
}

func (h *PostHandler) bindCreateRequest(c *gin.Context) (*service.CreatePostRequest, error) {
	var req service.CreatePostRequest

	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, apperror.Validation("Invalid request body")
		}
		if err := h.verifyFiles(req.Files); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		return nil, apperror.Validation("Invalid form data")
	}

	// multipart 中的对象字段以 JSON 字符串传递
	if err := decodeFormJSON(c, "poll", &req.Poll); err != nil {
		return nil, err
	}
	if err := decodeFormJSON(c, "formatting", &req.Formatting); err != nil {
		return nil, err
	}
	if err := decodeFormJSON(c, "location", &req.Location); err != nil {
		return nil, err
	}
	req.AllowedVerificationTypes = formList(req.AllowedVerificationTypes)
	req.CustomHashtags = formList(req.CustomHashtags)
	req.MentionedUserIDs = formList(req.MentionedUserIDs)

	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid form data")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return &req, nil
	}
	if len(files) > uploader.MaxFilesPerRequest {
		return nil, apperror.Validation("Too many files")
	}
	if h.uploader == nil {
		return nil, apperror.Infrastructure("upload media", uploader.ErrNotConfigured)
	}

	stored, err := uploader.UploadAll(c.Request.Context(), h.uploader, files)
	if err != nil {
		return nil, err
	}
	req.Files = stored
	return &req, nil
}

// verifyFiles JSON 请求只能引用 /upload 返回的文件描述
func (h *PostHandler) verifyFiles(files []uploader.StoredFile) error {
	if len(files) == 0 {
		return nil
	}
	if len(files) > uploader.MaxFilesPerRequest {
		return apperror.Validation("Too many files")
	}
	if h.uploader == nil {
		return apperror.Infrastructure("verify media", uploader.ErrNotConfigured)
	}
	for _, f := range files {
		if err := h.uploader.Verify(f); err != nil {
			return apperror.Validation("Invalid media descriptor")
		}
	}
	return nil
}

func decodeFormJSON(c *gin.Context, field string, dst interface{}) error {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return apperror.Validation("Invalid " + field + " format")
	}
	return nil
}

// formList 兼容重复字段和单个 JSON 数组字符串两种写法
func formList(values []string) []string {
	if len(values) != 1 || !strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		return values
	}
	var list []string
	if err := json.Unmarshal([]byte(values[0]), &list); err != nil {
		return values
	}
	return list
}

// GetPost 获取帖子
// @Summary 获取帖子
// @Tags Post
// @Produce json
// @Param id path string true "帖子ID"
// @Router /api/post/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post)
}

// ListByHashtag 话题下的帖子
// @Summary 按话题分页查询
// @Tags Post
// @Produce json
// @Param tag path string true "话题"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Router /api/post/hashtag/{tag} [get]
func (h *PostHandler) ListByHashtag(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.FromError(c, apperror.Validation("Invalid pagination"))
		return
	}

	result, err := h.service.ListByHashtag(c.Request.Context(), c.Param("tag"), page)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// React 添加表情回应
// @Router /api/post/{id}/reactions [post]
func (h *PostHandler) React(c *gin.Context) {
	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.FromError(c, apperror.Validation("Invalid reaction"))
		return
	}

	post, err := h.service.React(c.Request.Context(), c.Param("id"), middleware.UserID(c), input.Type, input.Emoji)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post.Engagement)
}

// Unreact 取消表情回应
// @Router /api/post/{id}/reactions/{type} [delete]
func (h *PostHandler) Unreact(c *gin.Context) {
	post, err := h.service.Unreact(c.Request.Context(), c.Param("id"), middleware.UserID(c), model.ReactionType(c.Param("type")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, post.Engagement)
}
