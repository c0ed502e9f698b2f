package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"

	"github.com/openfroyo/inventory/pkg/engine"
)

// CloudControlAPI is the subset of the Cloud Control client used by CloudControl.
type CloudControlAPI interface {
	ListResources(ctx context.Context, params *cloudcontrol.ListResourcesInput, optFns ...func(*cloudcontrol.Options)) (*cloudcontrol.ListResourcesOutput, error)
	GetResource(ctx context.Context, params *cloudcontrol.GetResourceInput, optFns ...func(*cloudcontrol.Options)) (*cloudcontrol.GetResourceOutput, error)
}

// CloudControl implements engine.ResourceService over the Cloud Control API.
// Retries are handled by the SDK client according to its retry configuration.
type CloudControl struct {
	client CloudControlAPI
}

// NewCloudControl creates a new Cloud Control service.
func NewCloudControl(client CloudControlAPI) *CloudControl {
	return &CloudControl{client: client}
}

// ListResources implements engine.ResourceService.
func (c *CloudControl) ListResources(ctx context.Context, req engine.ListRequest) (*engine.ListPage, error) {
	input := &cloudcontrol.ListResourcesInput{
		TypeName: aws.String(string(req.Type)),
	}
	if len(req.Model) > 0 {
		model, err := json.Marshal(req.Model)
		if err != nil {
			return nil, engine.NewConfigurationError("failed to encode resource model", err).
				WithCode(engine.ErrCodeInvalidMapping).
				WithResource(string(req.Type))
		}
		input.ResourceModel = aws.String(string(model))
	}
	if req.NextToken != "" {
		input.NextToken = aws.String(req.NextToken)
	}

	out, err := c.client.ListResources(ctx, input)
	if err != nil {
		return nil, classifyError(err, req.Type, engine.OperationList)
	}

	page := &engine.ListPage{
		NextToken:    aws.ToString(out.NextToken),
		Descriptions: make([]engine.ResourceDescription, 0, len(out.ResourceDescriptions)),
	}
	for _, d := range out.ResourceDescriptions {
		page.Descriptions = append(page.Descriptions, engine.ResourceDescription{
			Identifier: aws.ToString(d.Identifier),
			Properties: aws.ToString(d.Properties),
		})
	}
	return page, nil
}

// GetResource implements engine.ResourceService.
func (c *CloudControl) GetResource(ctx context.Context, t engine.ResourceType, identifier string) (*engine.ResourceDescription, error) {
	out, err := c.client.GetResource(ctx, &cloudcontrol.GetResourceInput{
		TypeName:   aws.String(string(t)),
		Identifier: aws.String(identifier),
	})
	if err != nil {
		return nil, classifyError(err, t, engine.OperationGet)
	}
	if out.ResourceDescription == nil {
		return nil, engine.NewRemoteError(fmt.Sprintf("no description returned for %s", identifier), nil).
			WithCode(engine.ErrCodeGetFailed).
			WithResource(string(t))
	}

	return &engine.ResourceDescription{
		Identifier: aws.ToString(out.ResourceDescription.Identifier),
		Properties: aws.ToString(out.ResourceDescription.Properties),
	}, nil
}
