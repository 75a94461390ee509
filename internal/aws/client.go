package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ecs"

	awsecs "tasnim.dev/opfyx/internal/aws/ecs"
	awslogs "tasnim.dev/opfyx/internal/aws/logs"
)

// Options selects the account, region and endpoint the clients talk to.
type Options struct {
	Profile string
	Region  string
	// EndpointURL points every client at a single endpoint, e.g. a local
	// ECS simulator.
	EndpointURL string
}

// ServiceClient bundles the API clients. It is read-only after
// construction and shared by every command.
type ServiceClient struct {
	Config aws.Config
	ECS    *awsecs.Client
	Logs   *awslogs.Client
}

func NewServiceClient(ctx context.Context, opts Options) (*ServiceClient, error) {
	cfg, err := LoadConfig(ctx, opts.Profile, opts.Region)
	if err != nil {
		return nil, fmt.Errorf("initializing AWS clients: %w", err)
	}
	return newServiceClient(cfg, opts.EndpointURL), nil
}

func newServiceClient(cfg aws.Config, endpointURL string) *ServiceClient {
	ecsOpts := func(o *ecs.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	}
	logsOpts := func(o *cloudwatchlogs.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	}

	return &ServiceClient{
		Config: cfg,
		ECS:    awsecs.NewClient(ecs.NewFromConfig(cfg, ecsOpts)),
		Logs:   awslogs.NewClient(cloudwatchlogs.NewFromConfig(cfg, logsOpts)),
	}
}
