// Package aws implements the engine collaborators on top of the AWS SDK:
// Cloud Control for listing and detail fetches, the CloudFormation registry for the
// type universe, and the account-scoped capability checks.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/auditmanager"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
)

// Default retry policy of all clients.
const (
	DefaultMaxAttempts = 4
	DefaultRetryMode   = aws.RetryModeAdaptive
)

// SessionOptions selects the credentials and region of a session.
type SessionOptions struct {
	// Region overrides the region from the environment or the shared config.
	Region string

	// Profile selects a shared config profile.
	Profile string

	// MaxAttempts overrides DefaultMaxAttempts.
	MaxAttempts int
}

// NewAWSConfig loads the SDK configuration with the inventory retry policy.
func NewAWSConfig(ctx context.Context, opts SessionOptions) (aws.Config, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(maxAttempts),
		config.WithRetryMode(DefaultRetryMode),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, fmt.Errorf("no AWS region configured")
	}
	return cfg, nil
}

// Clients bundles the SDK clients used by the provider.
type Clients struct {
	CloudControl   CloudControlAPI
	CloudFormation CloudFormationAPI
	STS            STSAPI
	QuickSight     QuickSightAPI
	AuditManager   AuditManagerAPI
}

// NewClients creates every client from cfg.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		CloudControl:   cloudcontrol.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
		STS:            sts.NewFromConfig(cfg),
		QuickSight:     quicksight.NewFromConfig(cfg),
		AuditManager:   auditmanager.NewFromConfig(cfg),
	}
}

// Provider wires the AWS collaborators of one session.
type Provider struct {
	// Region is the session region.
	Region string

	// Service lists and fetches resources.
	Service *CloudControl

	// Types enumerates the type universe.
	Types *Registry

	clients Clients
	logger  zerolog.Logger
}

// NewProvider creates a provider from already constructed clients.
func NewProvider(region string, clients Clients, logger zerolog.Logger) *Provider {
	logger = logger.With().Str("component", "aws").Str("region", region).Logger()
	return &Provider{
		Region:  region,
		Service: NewCloudControl(clients.CloudControl),
		Types:   NewRegistry(clients.CloudFormation, logger),
		clients: clients,
		logger:  logger,
	}
}

// Connect loads the SDK configuration and creates a provider for it.
func Connect(ctx context.Context, opts SessionOptions, logger zerolog.Logger) (*Provider, error) {
	cfg, err := NewAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewProvider(cfg.Region, NewClients(cfg), logger), nil
}
