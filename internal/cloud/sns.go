package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes alert notifications to a topic.
type SNSClient struct {
	svc      snsAPI
	topicArn string
}

// NewSNSClient creates a new SNS client instance
func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &SNSClient{svc: sns.NewFromConfig(cfg), topicArn: topicArn}, nil
}

// SendAlert sends an alert notification via SNS
func (c *SNSClient) SendAlert(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("alert sent")
	return nil
}

// LowLevelAlert notifies the topic whenever a reading's fill percentage drops
// below Threshold.
type LowLevelAlert struct {
	Client    *SNSClient
	Threshold float64
}

func (a *LowLevelAlert) Name() string { return "sns" }

func (a *LowLevelAlert) ReadingRegistered(ctx context.Context, tank *domain.Tank, reading *domain.TankReading) error {
	if reading.Percentage >= a.Threshold {
		return nil
	}
	subject, message := lowLevelMessage(tank, reading)
	return a.Client.SendAlert(ctx, subject, message)
}

func lowLevelMessage(tank *domain.Tank, reading *domain.TankReading) (string, string) {
	location := "unknown"
	if tank.Location != nil {
		location = *tank.Location
	}
	subject := fmt.Sprintf("Low level: %s (%s)", tank.Name, tank.SerialNumber)
	message := fmt.Sprintf(
		"Tank Low Level Alert\n\n"+
			"Tank: %s\n"+
			"Serial: %s\n"+
			"Location: %s\n"+
			"Level: %.1f cm\n"+
			"Volume: %.1f L of %.1f L\n"+
			"Fill: %.1f%%\n"+
			"Time: %s\n\n"+
			"Please schedule a refill.",
		tank.Name,
		tank.SerialNumber,
		location,
		reading.LiquidLevel,
		reading.Volume,
		tank.Capacity,
		reading.Percentage,
		reading.ReadingTimestamp.Format(time.RFC3339),
	)
	return subject, message
}
