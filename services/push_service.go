package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"gorm.io/gorm"
)

// PushService delivers washout reminders to registered devices through SNS.
// Both platforms go through the FCM platform application.
type PushService struct {
	db          *gorm.DB
	client      *sns.Client
	platformArn string
}

func NewPushService(db *gorm.DB) (*PushService, error) {
	arn := os.Getenv("SNS_FCM_ARN")
	if arn == "" {
		return nil, errors.New("SNS_FCM_ARN not set")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(envOr("AWS_REGION", "ap-south-1")))
	if err != nil {
		return nil, err
	}
	return &PushService{db: db, client: sns.NewFromConfig(cfg), platformArn: arn}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hashDeviceToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RegisterDevice creates (or refreshes) the SNS endpoint for a device token
// and upserts the device row keyed by the token hash. Raw tokens are never
// stored.
func (p *PushService) RegisterDevice(userID uint, platform, token string) (*models.UserDevice, error) {
	platform = strings.ToLower(platform)
	if platform != "android" && platform != "ios" {
		return nil, errors.New("unknown platform")
	}

	ep, err := p.client.CreatePlatformEndpoint(context.TODO(), &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.platformArn),
		Token:                  aws.String(token),
	})
	if err != nil {
		return nil, err
	}

	dev := models.UserDevice{
		UserID:    userID,
		TokenHash: hashDeviceToken(token),
	}
	err = p.db.
		Where("user_id = ? AND token_hash = ?", dev.UserID, dev.TokenHash).
		Assign(models.UserDevice{
			Platform:    platform,
			EndpointARN: aws.ToString(ep.EndpointArn),
			Enabled:     true,
			UpdatedAt:   time.Now(),
		}).
		FirstOrCreate(&dev).Error
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

// PushToUser fans the reminder out to every enabled device of the user.
// A dead endpoint gets its device row disabled; other publish failures are
// logged and skipped so one bad device cannot block the sweep. The reminder
// row stays the source of truth either way.
func (p *PushService) PushToUser(userID uint, title, body string, data map[string]string) {
	var devices []models.UserDevice
	err := p.db.Where("user_id = ? AND enabled = ?", userID, true).Find(&devices).Error
	if err != nil || len(devices) == 0 {
		return
	}

	payload := reminderPayload(title, body, data)
	for _, dev := range devices {
		_, err := p.client.Publish(context.TODO(), &sns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(payload),
			TargetArn:        aws.String(dev.EndpointARN),
		})
		if err == nil {
			continue
		}
		if strings.Contains(err.Error(), "EndpointDisabled") {
			p.db.Model(&dev).Update("enabled", false)
			continue
		}
		log.Printf("push: publish to device %d: %v", dev.ID, err)
	}
}

// reminderPayload builds the per-protocol SNS message envelope. The "default"
// key is what SNS falls back to for unmatched protocols.
func reminderPayload(title, body string, data map[string]string) string {
	raw, _ := json.Marshal(map[string]any{
		"default": body,
		"GCM": map[string]any{
			"notification": map[string]string{"title": title, "body": body},
			"data":         data,
		},
	})
	return string(raw)
}
