package aws

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/auditmanager"
	amtypes "github.com/aws/aws-sdk-go-v2/service/auditmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
)

// STSAPI is the subset of the STS client used by the capabilities.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// QuickSightAPI is the subset of the QuickSight client used by the capabilities.
type QuickSightAPI interface {
	ListAnalyses(ctx context.Context, params *quicksight.ListAnalysesInput, optFns ...func(*quicksight.Options)) (*quicksight.ListAnalysesOutput, error)
}

// AuditManagerAPI is the subset of the Audit Manager client used by the capabilities.
type AuditManagerAPI interface {
	GetAccountStatus(ctx context.Context, params *auditmanager.GetAccountStatusInput, optFns ...func(*auditmanager.Options)) (*auditmanager.GetAccountStatusOutput, error)
}

// CloudFrontRegion is the only region where global CLOUDFRONT scoped WAFv2 resources are listed.
const CloudFrontRegion = "us-east-1"

// Capabilities returns a registry with every capability referenced by the built-in catalog.
func (p *Provider) Capabilities() *engine.CapabilityRegistry {
	return RegisterCapabilities(engine.NewCapabilityRegistry(), p.Region, p.clients)
}

// RegisterCapabilities registers the AWS capabilities into reg and returns it.
func RegisterCapabilities(reg *engine.CapabilityRegistry, region string, clients Clients) *engine.CapabilityRegistry {
	identity := &callerIdentity{client: clients.STS}

	reg.RegisterSource(catalog.SourceWAFv2Scopes, func(context.Context) ([]engine.Properties, error) {
		return WAFv2Scopes(region), nil
	})

	reg.RegisterSource(catalog.SourceCallerIdentities, func(ctx context.Context) ([]engine.Properties, error) {
		out, err := identity.get(ctx)
		if err != nil {
			return nil, err
		}
		return []engine.Properties{{
			"Account": aws.ToString(out.Account),
			"Arn":     aws.ToString(out.Arn),
			"UserId":  aws.ToString(out.UserId),
		}}, nil
	})

	reg.RegisterSource(catalog.SourceQuickSightAccounts, func(ctx context.Context) ([]engine.Properties, error) {
		out, err := identity.get(ctx)
		if err != nil {
			return nil, err
		}
		account := aws.ToString(out.Account)

		_, err = clients.QuickSight.ListAnalyses(ctx, &quicksight.ListAnalysesInput{
			AwsAccountId: aws.String(account),
		})
		if err != nil {
			var unsubscribed *qstypes.UnsupportedUserEditionException
			if errors.As(err, &unsubscribed) || hasErrorCode(err, "UnsupportedUserEditionException") {
				return []engine.Properties{}, nil
			}
			return nil, classifyError(err, "", "quicksight:ListAnalyses")
		}
		return []engine.Properties{{"Account": account}}, nil
	})

	reg.RegisterGate(catalog.GateAuditManagerEnabled, func(ctx context.Context) (bool, error) {
		out, err := clients.AuditManager.GetAccountStatus(ctx, &auditmanager.GetAccountStatusInput{})
		if err != nil {
			return false, classifyError(err, "", "auditmanager:GetAccountStatus")
		}
		return out.Status == amtypes.AccountStatusActive, nil
	})

	reg.RegisterGate(catalog.GateCloudFormationPublisher, func(ctx context.Context) (bool, error) {
		_, err := clients.CloudFormation.DescribePublisher(ctx, &cloudformation.DescribePublisherInput{})
		if err != nil {
			var notPublisher *cftypes.CFNRegistryException
			if errors.As(err, &notPublisher) || hasErrorCode(err, "CFNRegistryException") {
				return false, nil
			}
			return false, classifyError(err, "", "cloudformation:DescribePublisher")
		}
		return true, nil
	})

	return reg
}

// WAFv2Scopes returns the scopes WAFv2 resources are listed under in region.
func WAFv2Scopes(region string) []engine.Properties {
	scopes := []engine.Properties{{"Scope": "REGIONAL"}}
	if region == CloudFrontRegion {
		scopes = append(scopes, engine.Properties{"Scope": "CLOUDFRONT"})
	}
	return scopes
}

// callerIdentity memoizes a successful GetCallerIdentity response.
type callerIdentity struct {
	client STSAPI

	mu  sync.Mutex
	out *sts.GetCallerIdentityOutput
}

func (c *callerIdentity) get(ctx context.Context) (*sts.GetCallerIdentityOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out != nil {
		return c.out, nil
	}

	out, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, classifyError(err, "", "sts:GetCallerIdentity")
	}
	c.out = out
	return out, nil
}
