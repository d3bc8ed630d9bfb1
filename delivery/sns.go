package delivery

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSSender delivers codes as SMS messages via AWS SNS. The destination
// passed to Deliver must be an E.164 phone number.
type SNSSender struct {
	client *sns.Client
}

// NewSNSSender loads the default AWS credential chain for the given region.
func NewSNSSender(ctx context.Context, region string) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, err
	}
	return &SNSSender{client: sns.NewFromConfig(awsCfg)}, nil
}

// NewSNSSenderFromClient wraps an already-configured SNS client; useful when
// the caller shares one AWS config across services.
func NewSNSSenderFromClient(client *sns.Client) *SNSSender {
	return &SNSSender{client: client}
}

// Deliver publishes one SMS per code.
func (s *SNSSender) Deliver(ctx context.Context, destination, code, purpose string) error {
	message := FormatMessage(code, purpose)
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &destination,
		Message:     &message,
	})
	return err
}
