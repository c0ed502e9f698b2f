package aws

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/auditmanager"
	amtypes "github.com/aws/aws-sdk-go-v2/service/auditmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	cctypes "github.com/aws/aws-sdk-go-v2/service/cloudcontrol/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/quicksight"
	qstypes "github.com/aws/aws-sdk-go-v2/service/quicksight/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/catalog"
	"github.com/openfroyo/inventory/pkg/engine"
)

type fakeCloudControl struct {
	lists []*cloudcontrol.ListResourcesInput
	pages map[string]*cloudcontrol.ListResourcesOutput
	err   error

	getOut *cloudcontrol.GetResourceOutput
	getErr error
}

func (f *fakeCloudControl) ListResources(_ context.Context, in *cloudcontrol.ListResourcesInput, _ ...func(*cloudcontrol.Options)) (*cloudcontrol.ListResourcesOutput, error) {
	f.lists = append(f.lists, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[aws.ToString(in.NextToken)], nil
}

func (f *fakeCloudControl) GetResource(_ context.Context, _ *cloudcontrol.GetResourceInput, _ ...func(*cloudcontrol.Options)) (*cloudcontrol.GetResourceOutput, error) {
	return f.getOut, f.getErr
}

type fakeCloudFormation struct {
	mu           sync.Mutex
	inputs       []*cloudformation.ListTypesInput
	types        func(in *cloudformation.ListTypesInput) *cloudformation.ListTypesOutput
	listErr      error
	publisherErr error
}

func (f *fakeCloudFormation) ListTypes(_ context.Context, in *cloudformation.ListTypesInput, _ ...func(*cloudformation.Options)) (*cloudformation.ListTypesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.types == nil {
		return &cloudformation.ListTypesOutput{}, nil
	}
	return f.types(in), nil
}

func (f *fakeCloudFormation) DescribePublisher(context.Context, *cloudformation.DescribePublisherInput, ...func(*cloudformation.Options)) (*cloudformation.DescribePublisherOutput, error) {
	if f.publisherErr != nil {
		return nil, f.publisherErr
	}
	return &cloudformation.DescribePublisherOutput{PublisherId: aws.String("pub")}, nil
}

type fakeSTS struct {
	calls int
	err   error
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/ops"),
		UserId:  aws.String("AIDA"),
	}, nil
}

type fakeQuickSight struct {
	account string
	err     error
}

func (f *fakeQuickSight) ListAnalyses(_ context.Context, in *quicksight.ListAnalysesInput, _ ...func(*quicksight.Options)) (*quicksight.ListAnalysesOutput, error) {
	f.account = aws.ToString(in.AwsAccountId)
	if f.err != nil {
		return nil, f.err
	}
	return &quicksight.ListAnalysesOutput{}, nil
}

type fakeAuditManager struct {
	status amtypes.AccountStatus
	err    error
}

func (f *fakeAuditManager) GetAccountStatus(context.Context, *auditmanager.GetAccountStatusInput, ...func(*auditmanager.Options)) (*auditmanager.GetAccountStatusOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &auditmanager.GetAccountStatusOutput{Status: f.status}, nil
}

func TestCloudControl_ListResources(t *testing.T) {
	fake := &fakeCloudControl{pages: map[string]*cloudcontrol.ListResourcesOutput{
		"": {
			ResourceDescriptions: []cctypes.ResourceDescription{
				{Identifier: aws.String("b-1"), Properties: aws.String(`{"AppId":"a"}`)},
				{Identifier: aws.String("b-2")},
			},
			NextToken: aws.String("t1"),
		},
	}}
	svc := NewCloudControl(fake)

	page, err := svc.ListResources(context.Background(), engine.ListRequest{
		Type:  "AWS::Amplify::Branch",
		Model: engine.Model{"AppId": "a"},
	})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}

	want := &engine.ListPage{
		NextToken: "t1",
		Descriptions: []engine.ResourceDescription{
			{Identifier: "b-1", Properties: `{"AppId":"a"}`},
			{Identifier: "b-2"},
		},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}

	in := fake.lists[0]
	if aws.ToString(in.TypeName) != "AWS::Amplify::Branch" {
		t.Errorf("Expected type name to be passed, got %q", aws.ToString(in.TypeName))
	}
	if aws.ToString(in.ResourceModel) != `{"AppId":"a"}` {
		t.Errorf("Expected encoded resource model, got %q", aws.ToString(in.ResourceModel))
	}
	if in.NextToken != nil {
		t.Errorf("Expected no token on the first page, got %q", aws.ToString(in.NextToken))
	}
}

func TestCloudControl_ListResourcesWithoutModel(t *testing.T) {
	fake := &fakeCloudControl{pages: map[string]*cloudcontrol.ListResourcesOutput{
		"t1": {},
	}}
	svc := NewCloudControl(fake)

	page, err := svc.ListResources(context.Background(), engine.ListRequest{Type: "AWS::S3::Bucket", NextToken: "t1"})
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(page.Descriptions) != 0 || page.NextToken != "" {
		t.Errorf("Expected empty last page, got %+v", page)
	}
	if fake.lists[0].ResourceModel != nil {
		t.Error("Expected no resource model for an unscoped listing")
	}
	if aws.ToString(fake.lists[0].NextToken) != "t1" {
		t.Error("Expected the continuation token to be passed")
	}
}

func TestCloudControl_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantClass engine.ErrorClass
		wantCode  string
	}{
		{
			name:      "typed unsupported action",
			err:       &cctypes.UnsupportedActionException{Message: aws.String("no list")},
			wantClass: engine.ErrorClassUnsupported,
			wantCode:  engine.ErrCodeUnsupportedAction,
		},
		{
			name:      "generic unsupported action",
			err:       &smithy.GenericAPIError{Code: "UnsupportedActionException"},
			wantClass: engine.ErrorClassUnsupported,
			wantCode:  engine.ErrCodeUnsupportedAction,
		},
		{
			name:      "throttling",
			err:       &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"},
			wantClass: engine.ErrorClassRemote,
			wantCode:  engine.ErrCodeThrottled,
		},
		{
			name:      "other api error",
			err:       &smithy.GenericAPIError{Code: "AccessDeniedException"},
			wantClass: engine.ErrorClassRemote,
			wantCode:  "",
		},
		{
			name:      "transport error",
			err:       errors.New("connection reset"),
			wantClass: engine.ErrorClassRemote,
			wantCode:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCloudControl(&fakeCloudControl{err: tt.err})

			_, err := svc.ListResources(context.Background(), engine.ListRequest{Type: "AWS::S3::Bucket"})
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := engine.ClassOf(err); got != tt.wantClass {
				t.Errorf("ClassOf() = %v, want %v", got, tt.wantClass)
			}
			if tt.wantCode != "" && engine.CodeOf(err) != tt.wantCode {
				t.Errorf("CodeOf() = %q, want %q", engine.CodeOf(err), tt.wantCode)
			}
			if tt.wantClass == engine.ErrorClassUnsupported && !errors.Is(err, engine.ErrUnsupportedAction) {
				t.Error("Expected error to match ErrUnsupportedAction")
			}
			if !errors.Is(err, tt.err) {
				t.Error("Expected the SDK error to be wrapped")
			}
		})
	}
}

func TestCloudControl_GetResource(t *testing.T) {
	svc := NewCloudControl(&fakeCloudControl{getOut: &cloudcontrol.GetResourceOutput{
		ResourceDescription: &cctypes.ResourceDescription{
			Identifier: aws.String("bucket-1"),
			Properties: aws.String(`{"BucketName":"bucket-1"}`),
		},
	}})

	got, err := svc.GetResource(context.Background(), "AWS::S3::Bucket", "bucket-1")
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	want := &engine.ResourceDescription{Identifier: "bucket-1", Properties: `{"BucketName":"bucket-1"}`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("description mismatch (-want +got):\n%s", diff)
	}
}

func TestCloudControl_GetResourceMissingDescription(t *testing.T) {
	svc := NewCloudControl(&fakeCloudControl{getOut: &cloudcontrol.GetResourceOutput{}})

	_, err := svc.GetResource(context.Background(), "AWS::S3::Bucket", "bucket-1")
	if engine.CodeOf(err) != engine.ErrCodeGetFailed {
		t.Errorf("Expected GET_FAILED, got %v", err)
	}
}

func TestRegistry_ListResourceTypes(t *testing.T) {
	fake := &fakeCloudFormation{
		types: func(in *cloudformation.ListTypesInput) *cloudformation.ListTypesOutput {
			switch {
			case in.Visibility == cftypes.VisibilityPrivate:
				return &cloudformation.ListTypesOutput{TypeSummaries: []cftypes.TypeSummary{
					{TypeName: aws.String("Acme::Widget::Thing")},
				}}
			case in.ProvisioningType == cftypes.ProvisioningTypeFullyMutable && aws.ToString(in.NextToken) == "":
				return &cloudformation.ListTypesOutput{
					TypeSummaries: []cftypes.TypeSummary{
						{TypeName: aws.String("AWS::S3::Bucket")},
						{TypeName: aws.String("AWS::EC2::VPC")},
					},
					NextToken: aws.String("more"),
				}
			case in.ProvisioningType == cftypes.ProvisioningTypeFullyMutable:
				return &cloudformation.ListTypesOutput{TypeSummaries: []cftypes.TypeSummary{
					{TypeName: aws.String("AWS::Lambda::Function")},
				}}
			default:
				return &cloudformation.ListTypesOutput{TypeSummaries: []cftypes.TypeSummary{
					{TypeName: aws.String("AWS::S3::Bucket")},
					{TypeName: aws.String("AWS::Logs::LogGroup")},
				}}
			}
		},
	}
	reg := NewRegistry(fake, zerolog.Nop())

	got, err := Universe(context.Background(), reg)
	if err != nil {
		t.Fatalf("Universe() error = %v", err)
	}

	want := []engine.ResourceType{
		"AWS::EC2::VPC",
		"AWS::Lambda::Function",
		"AWS::Logs::LogGroup",
		"AWS::S3::Bucket",
		"Acme::Widget::Thing",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Universe() mismatch (-want +got):\n%s", diff)
	}

	for _, in := range fake.inputs {
		if in.Type != cftypes.RegistryTypeResource {
			t.Errorf("Expected RESOURCE registry type, got %q", in.Type)
		}
		if in.DeprecatedStatus != cftypes.DeprecatedStatusLive {
			t.Errorf("Expected LIVE types only, got %q", in.DeprecatedStatus)
		}
		if in.Visibility == cftypes.VisibilityPrivate && in.Filters != nil {
			t.Error("Expected no category filter for private types")
		}
	}
}

func TestRegistry_Prefixes(t *testing.T) {
	fake := &fakeCloudFormation{
		types: func(*cloudformation.ListTypesInput) *cloudformation.ListTypesOutput {
			return &cloudformation.ListTypesOutput{TypeSummaries: []cftypes.TypeSummary{
				{TypeName: aws.String("AWS::S3::Bucket")},
				{TypeName: aws.String("AWS::EC2::VPC")},
			}}
		},
	}
	reg := NewRegistry(fake, zerolog.Nop())
	reg.Prefixes = []string{"AWS::S3::"}

	got, err := Universe(context.Background(), reg)
	if err != nil {
		t.Fatalf("Universe() error = %v", err)
	}
	if diff := cmp.Diff([]engine.ResourceType{"AWS::S3::Bucket"}, got); diff != "" {
		t.Errorf("Universe() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Error(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry(&fakeCloudFormation{listErr: boom}, zerolog.Nop())

	_, err := Universe(context.Background(), reg)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped error, got %v", err)
	}
	if !engine.IsRemote(err) {
		t.Errorf("Expected remote error, got %v", err)
	}
}

func TestWAFv2Scopes(t *testing.T) {
	tests := []struct {
		region string
		want   []engine.Properties
	}{
		{region: "eu-west-1", want: []engine.Properties{{"Scope": "REGIONAL"}}},
		{region: "us-east-1", want: []engine.Properties{{"Scope": "REGIONAL"}, {"Scope": "CLOUDFRONT"}}},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, WAFv2Scopes(tt.region)); diff != "" {
				t.Errorf("WAFv2Scopes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func newTestCapabilities(clients Clients) *engine.CapabilityRegistry {
	return RegisterCapabilities(engine.NewCapabilityRegistry(), "eu-west-1", clients)
}

func TestCapabilities_CoverCatalog(t *testing.T) {
	reg := newTestCapabilities(Clients{})
	if missing := catalog.Default().MissingCapabilities(reg); len(missing) != 0 {
		t.Errorf("Expected all catalog capabilities to be registered, missing %v", missing)
	}
}

func TestCapabilities_QuickSight(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []engine.Properties
	}{
		{
			name: "subscribed",
			want: []engine.Properties{{"Account": "123456789012"}},
		},
		{
			name: "not subscribed",
			err:  &qstypes.UnsupportedUserEditionException{Message: aws.String("standard edition")},
			want: []engine.Properties{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := &fakeQuickSight{err: tt.err}
			reg := newTestCapabilities(Clients{STS: &fakeSTS{}, QuickSight: qs})

			got, err := reg.ListSource(context.Background(), catalog.SourceQuickSightAccounts)
			if err != nil {
				t.Fatalf("ListSource() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ListSource() mismatch (-want +got):\n%s", diff)
			}
			if qs.account != "123456789012" {
				t.Errorf("Expected caller account to be queried, got %q", qs.account)
			}
		})
	}
}

func TestCapabilities_QuickSightError(t *testing.T) {
	reg := newTestCapabilities(Clients{
		STS:        &fakeSTS{},
		QuickSight: &fakeQuickSight{err: &smithy.GenericAPIError{Code: "AccessDeniedException"}},
	})

	if _, err := reg.ListSource(context.Background(), catalog.SourceQuickSightAccounts); !engine.IsRemote(err) {
		t.Errorf("Expected remote error, got %v", err)
	}
}

func TestCapabilities_CallerIdentityIsMemoized(t *testing.T) {
	st := &fakeSTS{}
	reg := newTestCapabilities(Clients{STS: st, QuickSight: &fakeQuickSight{}})

	got, err := reg.ListSource(context.Background(), catalog.SourceCallerIdentities)
	if err != nil {
		t.Fatalf("ListSource() error = %v", err)
	}
	if got[0]["Account"] != "123456789012" {
		t.Errorf("Expected account in identity, got %v", got[0])
	}
	if _, err := reg.ListSource(context.Background(), catalog.SourceQuickSightAccounts); err != nil {
		t.Fatalf("ListSource() error = %v", err)
	}
	if st.calls != 1 {
		t.Errorf("Expected 1 GetCallerIdentity call, got %d", st.calls)
	}
}

func TestCapabilities_AuditManager(t *testing.T) {
	tests := []struct {
		status amtypes.AccountStatus
		want   bool
	}{
		{status: amtypes.AccountStatusActive, want: true},
		{status: amtypes.AccountStatusInactive, want: false},
		{status: amtypes.AccountStatusPendingActivation, want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			reg := newTestCapabilities(Clients{AuditManager: &fakeAuditManager{status: tt.status}})

			got, err := reg.CheckGate(context.Background(), catalog.GateAuditManagerEnabled)
			if err != nil {
				t.Fatalf("CheckGate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckGate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCapabilities_CloudFormationPublisher(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "registered", want: true},
		{name: "not a publisher", err: &cftypes.CFNRegistryException{Message: aws.String("not registered")}},
		{name: "failure", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestCapabilities(Clients{CloudFormation: &fakeCloudFormation{publisherErr: tt.err}})

			got, err := reg.CheckGate(context.Background(), catalog.GateCloudFormationPublisher)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckGate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CheckGate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	p := NewProvider("us-east-1", Clients{
		CloudControl:   &fakeCloudControl{},
		CloudFormation: &fakeCloudFormation{},
	}, zerolog.Nop())

	if p.Service == nil || p.Types == nil {
		t.Fatal("Expected service and type catalog to be wired")
	}
	sources, gates := p.Capabilities().Names()
	if len(sources) != 3 || len(gates) != 2 {
		t.Errorf("Expected 3 sources and 2 gates, got %v and %v", sources, gates)
	}

	var _ engine.ResourceService = p.Service
	var _ engine.TypeCatalog = p.Types
}
