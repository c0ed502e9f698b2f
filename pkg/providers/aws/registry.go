package aws

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

// CloudFormationAPI is the subset of the CloudFormation client used by the provider.
type CloudFormationAPI interface {
	cloudformation.ListTypesAPIClient
	DescribePublisher(ctx context.Context, params *cloudformation.DescribePublisherInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribePublisherOutput, error)
}

// listing is one registry query contributing to the type universe.
type listing struct {
	provisioning cftypes.ProvisioningType
	visibility   cftypes.Visibility
	category     cftypes.Category
}

// listings covers AWS-owned, activated third party and private types that
// can be read through Cloud Control.
var listings = func() []listing {
	var out []listing
	for _, p := range []cftypes.ProvisioningType{cftypes.ProvisioningTypeFullyMutable, cftypes.ProvisioningTypeImmutable} {
		out = append(out,
			listing{provisioning: p, visibility: cftypes.VisibilityPublic, category: cftypes.CategoryAwsTypes},
			listing{provisioning: p, visibility: cftypes.VisibilityPublic, category: cftypes.CategoryActivated},
			listing{provisioning: p, visibility: cftypes.VisibilityPrivate},
		)
	}
	return out
}()

// Registry implements engine.TypeCatalog over the CloudFormation registry.
type Registry struct {
	client CloudFormationAPI
	logger zerolog.Logger

	// Prefixes restricts the universe to types with one of the prefixes
	// (e.g. "AWS::S3::"). Empty means all types.
	Prefixes []string
}

// NewRegistry creates a new registry type catalog.
func NewRegistry(client CloudFormationAPI, logger zerolog.Logger) *Registry {
	return &Registry{
		client: client,
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// ListResourceTypes implements engine.TypeCatalog. Every type is yielded once.
func (r *Registry) ListResourceTypes(ctx context.Context) iter.Seq2[engine.ResourceType, error] {
	return func(yield func(engine.ResourceType, error) bool) {
		seen := make(map[engine.ResourceType]struct{})

		for _, l := range listings {
			input := &cloudformation.ListTypesInput{
				Type:             cftypes.RegistryTypeResource,
				Visibility:       l.visibility,
				ProvisioningType: l.provisioning,
				DeprecatedStatus: cftypes.DeprecatedStatusLive,
			}
			if l.category != "" {
				input.Filters = &cftypes.TypeFilters{Category: l.category}
			}

			paginator := cloudformation.NewListTypesPaginator(r.client, input)
			for paginator.HasMorePages() {
				page, err := paginator.NextPage(ctx)
				if err != nil {
					yield("", engine.NewRemoteError(
						fmt.Sprintf("failed to list %s %s registry types", l.visibility, l.provisioning), err).
						WithOperation("list-types"))
					return
				}

				for _, summary := range page.TypeSummaries {
					t := engine.ResourceType(aws.ToString(summary.TypeName))
					if t == "" || !r.matches(t) {
						continue
					}
					if _, dup := seen[t]; dup {
						continue
					}
					seen[t] = struct{}{}
					if !yield(t, nil) {
						return
					}
				}
			}
		}

		r.logger.Debug().Int("types", len(seen)).Msg("Listed registry types")
	}
}

func (r *Registry) matches(t engine.ResourceType) bool {
	if len(r.Prefixes) == 0 {
		return true
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(string(t), p) {
			return true
		}
	}
	return false
}

// Universe collects the registry types into a sorted slice.
func Universe(ctx context.Context, catalog engine.TypeCatalog) ([]engine.ResourceType, error) {
	var types []engine.ResourceType
	for t, err := range catalog.ListResourceTypes(ctx) {
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return engine.SortTypes(types), nil
}
