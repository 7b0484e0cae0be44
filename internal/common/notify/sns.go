// Package notify publishes eligibility outcomes for downstream loan processing.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const EventEligibilityEvaluated = "loan.eligibility.evaluated"

// OutcomeEvent is emitted once a session has every slot filled and has been evaluated.
type OutcomeEvent struct {
	EventType       string             `json:"event_type"`
	SessionID       string             `json:"session_id"`
	Summary         models.LoanSummary `json:"summary"`
	Warnings        []string           `json:"warnings"`
	ApprovalMessage string             `json:"approval_message,omitempty"`
	OccurredAt      time.Time          `json:"occurred_at"`
}

func NewOutcomeEvent(sessionID string, summary models.LoanSummary, result models.EligibilityResult) OutcomeEvent {
	return OutcomeEvent{
		EventType:       EventEligibilityEvaluated,
		SessionID:       sessionID,
		Summary:         summary,
		Warnings:        result.Warnings,
		ApprovalMessage: result.ApprovalMessage,
		OccurredAt:      time.Now().UTC(),
	}
}

type Publisher interface {
	PublishOutcome(ctx context.Context, event OutcomeEvent) error
}

// SNSService is the subset of the SNS client the publisher needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSService
	topicARN string
}

func NewSNSPublisher(client SNSService, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

// NewSNSClient builds an SNS client from the default AWS credential chain.
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(cfg), nil
}

func (p *SNSPublisher) PublishOutcome(ctx context.Context, event OutcomeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewOutcomePublishFailedError(fmt.Errorf("marshal event: %w", err))
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(event.EventType),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": stringAttr(event.EventType),
			"loan_type":  stringAttr(string(event.Summary.LoanType)),
			"eligible":   stringAttr(strconv.FormatBool(event.Summary.IsEligible)),
		},
	})
	if err != nil {
		return apperrors.NewOutcomePublishFailedError(err)
	}
	return nil
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}

// NoopPublisher drops events. Used when notifications are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOutcome(context.Context, OutcomeEvent) error { return nil }
