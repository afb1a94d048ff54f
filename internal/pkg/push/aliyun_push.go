package push

import (
	"encoding/json"
	"errors"

	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
	"go.uber.org/zap"
)

// ErrNotConfigured 推送配置缺失
var ErrNotConfigured = errors.New("push config is missing")

type PushService interface {
	PushToAccount(accountID string, title, body string, extParameters map[string]string) error
}

// pushClient 是 *push.Client 用到的子集
type pushClient interface {
	Push(request *push.PushRequest) (*push.PushResponse, error)
}

type AliyunPushService struct {
	client pushClient
	appKey int64
}

func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, ErrNotConfigured
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushService{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

// PushToAccount 按账号推送通知
func (s *AliyunPushService) PushToAccount(accountID string, title, body string, extParameters map[string]string) error {
	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger64(s.appKey)
	request.Target = "ACCOUNT"
	request.TargetValue = accountID
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"  // iOS & Android
	request.PushType = "NOTICE" // 通知

	// 扩展参数 (JSON 序列化)
	if len(extParameters) > 0 {
		extJSON, err := json.Marshal(extParameters)
		if err != nil {
			return err
		}
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	_, err := s.client.Push(request)
	return err
}

// LogPushService 未配置推送时使用，只记录日志
type LogPushService struct {
	log *zap.Logger
}

func NewLogPushService(log *zap.Logger) *LogPushService {
	return &LogPushService{log: log}
}

func (s *LogPushService) PushToAccount(accountID string, title, body string, extParameters map[string]string) error {
	s.log.Info("push skipped, no provider configured",
		zap.String("account", accountID),
		zap.String("title", title),
		zap.Any("ext", extParameters),
	)
	return nil
}

// New 根据配置选择推送实现
func New(cfg config.PushConfig, log *zap.Logger) PushService {
	svc, err := NewAliyunPushService(cfg)
	if err != nil {
		log.Warn("aliyun push disabled", zap.Error(err))
		return NewLogPushService(log)
	}
	return svc
}
