package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/config"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/apperror"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// 资源类型
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceAudio = "audio"
)

// 并发上传数
const uploadConcurrency = 5

// MaxFilesPerRequest 单次请求可携带的文件数上限
const MaxFilesPerRequest = 10

var (
	// ErrNotConfigured 未配置对象存储
	ErrNotConfigured = errors.New("object storage not configured")
	// ErrForeignFile 文件描述不是本服务上传的
	ErrForeignFile = errors.New("file was not uploaded by this service")
)

// StoredFile 已上传文件的描述
type StoredFile struct {
	URL          string  `json:"url"`
	ResourceType string  `json:"resourceType"`
	Format       string  `json:"format"`
	MimeType     string  `json:"mimeType"`
	Size         int64   `json:"size"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	OriginalName string  `json:"originalName"`
}

type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*StoredFile, error)
	// Verify 校验客户端回传的文件描述确实来自 Upload
	Verify(file StoredFile) error
}

// objectStore 是 *oss.Bucket 用到的子集
type objectStore interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

type AliyunOSSUploader struct {
	bucket   objectStore
	baseURL  string
	maxBytes int64
}

func NewAliyunOSSUploader(cfg config.OSSConfig, maxUploadMB int64) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return newUploader(bucket, fmt.Sprintf("https://%s.%s", cfg.BucketName, cfg.Endpoint), maxUploadMB), nil
}

func newUploader(store objectStore, baseURL string, maxUploadMB int64) *AliyunOSSUploader {
	return &AliyunOSSUploader{
		bucket:   store,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxUploadMB << 20,
	}
}

// Upload 上传单个文件，返回资源描述
func (u *AliyunOSSUploader) Upload(ctx context.Context, file *multipart.FileHeader) (*StoredFile, error) {
	if u.maxBytes > 0 && file.Size > u.maxBytes {
		return nil, apperror.Validation(fmt.Sprintf("File %s exceeds the upload limit", file.Filename))
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperror.Infrastructure("open upload", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperror.Infrastructure("read upload", err)
	}

	stored, err := describe(data)
	if err != nil {
		return nil, err
	}
	stored.OriginalName = file.Filename

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// YYYYMMDD/<kind>/uuid.ext
	key := fmt.Sprintf("%s/%s/%s.%s", time.Now().Format("20060102"), stored.ResourceType, uuid.New().String(), stored.Format)
	if err := u.bucket.PutObject(key, bytes.NewReader(data), oss.ContentType(stored.MimeType)); err != nil {
		return nil, apperror.Infrastructure("upload to object storage", err)
	}

	stored.URL = u.baseURL + "/" + key
	return stored, nil
}

// Verify URL 必须在本桶下，且对象键中的资源类型与描述一致
func (u *AliyunOSSUploader) Verify(file StoredFile) error {
	key, ok := strings.CutPrefix(file.URL, u.baseURL+"/")
	if !ok {
		return ErrForeignFile
	}
	// YYYYMMDD/<kind>/uuid.ext
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[1] != file.ResourceType || strings.Contains(key, "..") {
		return ErrForeignFile
	}
	return nil
}

// UploadAll 并发上传，结果顺序与输入一致
func UploadAll(ctx context.Context, u Uploader, files []*multipart.FileHeader) ([]StoredFile, error) {
	out := make([]StoredFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			stored, err := u.Upload(gctx, f)
			if err != nil {
				return err
			}
			out[i] = *stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// describe 根据文件内容识别资源类型
func describe(data []byte) (*StoredFile, error) {
	mt := mimetype.Detect(data)
	mime := mt.String()
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}

	stored := &StoredFile{
		MimeType: mime,
		Format:   strings.TrimPrefix(mt.Extension(), "."),
		Size:     int64(len(data)),
	}

	switch {
	case strings.HasPrefix(mime, "image/"):
		stored.ResourceType = ResourceImage
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			stored.Width = cfg.Width
			stored.Height = cfg.Height
		}
	case strings.HasPrefix(mime, "video/"):
		stored.ResourceType = ResourceVideo
	case strings.HasPrefix(mime, "audio/"):
		stored.ResourceType = ResourceAudio
	default:
		return nil, apperror.Validation("Unsupported file type: " + mime)
	}

	if stored.Format == "" {
		stored.Format = stored.ResourceType
	}
	return stored, nil
}
