package catalog

import "github.com/openfroyo/inventory/pkg/engine"

// excludes are types that are never enumerated.
var excludes = []engine.ResourceType{
	// Error in the provider
	// https://github.com/aws-cloudformation/aws-cloudformation-resource-providers-cloudformation/issues/82
	"AWS::AppSync::DomainName",                           // security token
	"AWS::Chatbot::MicrosoftTeamsChannelConfiguration",   // security token
	"AWS::CloudFormation::HookVersion",                   // security token
	"AWS::CodeGuruReviewer::RepositoryAssociation",       // security token
	"AWS::Evidently::Segment",                            // security token
	"AWS::MediaTailor::PlaybackConfiguration",            // security token
	"AWS::Pipes::Pipe",                                   // security token
	"AWS::RolesAnywhere::TrustAnchor",                    // security token
	"AWS::Route53Resolver::FirewallDomainList",           // security token
	"AWS::Route53Resolver::FirewallRuleGroup",            // security token
	"AWS::Route53Resolver::FirewallRuleGroupAssociation", // security token
	"AWS::SageMaker::DataQualityJobDefinition",           // security token
	"AWS::SageMaker::ModelBiasJobDefinition",             // security token
	"AWS::SageMaker::ModelExplainabilityJobDefinition",   // security token
	"AWS::SageMaker::ModelQualityJobDefinition",          // security token
	// Blocked by AWS::AutoScaling::AutoScalingGroup not supporting List
	"AWS::AutoScaling::LifecycleHook",
	// Blocked by there not being an CloudControl Resource for Types
	"AWS::CloudFormation::ResourceVersion",
	"AWS::CloudFormation::ResourceDefaultVersion",
	// Blocked by AWS::CertificateManager::Certificate not supporting List
	"AWS::EC2::EnclaveCertificateIamRoleAssociation",
	// Blocked by AWS::ElasticLoadBalancingV2::LoadBalancer not supporting list
	"AWS::ElasticLoadBalancingV2::Listener",
	// Blocked by AWS::QLDB::Ledger not being supported in cloud control
	"AWS::QLDB::Stream",
	// Blocked by AWS::Transfer::Server not supporting list
	"AWS::Transfer::Agreement",
	// Other
	"AWS::ApiGatewayV2::Route",                              // Property at /properties/RouteId is null
	"AWS::AppFlow::Connector",                               // Connector with label S3 not found
	"AWS::Budgets::BudgetsAction",                           // Maybe AccessDenied from linked accounts
	"AWS::CE::CostCategory",                                 // Maybe AccessDenied from linked accounts
	"AWS::DevOpsGuru::ResourceCollection",                   // Can throw failure because No CustomerResourceFilter present
	"AWS::EC2::CarrierGateway",                              // not available in every region
	"AWS::ECS::TaskSet",                                     // requires Cluster, Service, Id instead of only Cluster, Service, like the CLI
	"AWS::EFS::MountTarget",                                 // fileSystemId or a mountTargetId
	"AWS::FMS::ResourceSet",                                 // Account needs to be delegated by AWS FM
	"AWS::FMS::NotificationChannel",                         // Account needs to be delegated by AWS FM
	"AWS::FMS::Policy",                                      // Account needs to be delegated by AWS FM
	"AWS::Glue::SchemaVersion",                              // Needs inputs
	"AWS::IdentityStore::Group",                             // identityStoreId needed as input, no resource for that
	"AWS::IdentityStore::GroupMembership",                   // identityStoreId needed as input, no resource for that
	"AWS::ImageBuilder::Component",                          // InternalFailure
	"AWS::ImageBuilder::Image",                              // InternalFailure
	"AWS::IoTWireless::TaskDefinition",                      // GeneralServiceException
	"AWS::Lex::ResourcePolicy",                              // InternalFailure
	"AWS::LicenseManager::Grant",                            // Access denied for operation 'List:License
	"AWS::LicenseManager::License",                          // Access denied for operation 'List:License
	"AWS::Macie::AllowList",                                 // InternalFailure
	"AWS::Macie::CustomDataIdentifier",                      // Fails when not enabled in region
	"AWS::Macie::FindingsFilter",                            // Fails when not enabled in region
	"AWS::Organizations::Account",                           // AccessDeniedException when not management account
	"AWS::Organizations::OrganizationalUnit",                // AccessDeniedException when not management account
	"AWS::Organizations::Policy",                            // not in management account
	"AWS::Organizations::ResourcePolicy",                    // not in management account
	"AWS::RoboMaker::Fleet",                                 // support for the AWS RoboMaker application deployment feature has ended
	"AWS::RoboMaker::Robot",                                 // support for the AWS RoboMaker application deployment feature has ended
	"AWS::S3::MultiRegionAccessPointPolicy",                 // InternalFailure
	"AWS::S3Outposts::Bucket",                               // Required property: [OutpostId]
	"AWS::Scheduler::ScheduleGroup",                         // ResourceArn must not be null (but is not a property)
	"AWS::ServiceCatalog::ServiceActionAssociation",         // InternalFailure
	"AWS::SSMContacts::Contact",                             // NotFound
	"AWS::SSMContacts::ContactChannel",                      // NotFound
	"AWS::SSMContacts::Rotation",                            // Account not found
	"AWS::SSO::Assignment",                                  // Required property: [InstanceArn, PermissionSetArn, PrincipalId, PrincipalType, TargetId, TargetType]
	"AWS::SSO::InstanceAccessControlAttributeConfiguration", // Required property: [InstanceArn] and not type for SSOInstance
	"AWS::SSO::PermissionSet",                               // Required property: [InstanceArn, PermissionSetArn]
	"AWS::XRay::Group",                                      // InternalFailure
}

// excludesGet are types whose detail fetch is never attempted.
var excludesGet = []engine.ResourceType{
	"AWS::Athena::DataCatalog",               // ResourceNotFoundException - same problem with cli
	"AWS::CodePipeline::CustomActionType",    // ResourceNotFoundException on default resources
	"AWS::EC2::PrefixList",                   // InternalFailure on GetResource
	"AWS::ECS::CapacityProvider",             // InternalFailure on GetResource
	"AWS::Route53Resolver::ResolverRule",     // InvalidRequestException - Cannot tag Auto Defined Rule.
	"AWS::CloudFormation::PublicTypeVersion", // GeneralServiceException - Account is not registered as a publisher
	"AWS::RAM::Permission",                   // Cannot deserialize in handler
	// There are a lot of these, and it is easy to run into downstream throttling.
	// We probably should improve the tool to do things more spread between resources.
	"AWS::SSM::Document",
}

// dependencies declares how the inputs of each type are obtained.
// Only one parent per type is supported.
var dependencies = map[engine.ResourceType]engine.Dependency{
	// Amplify
	"AWS::Amplify::Branch":             engine.ParentDependency{Parent: "AWS::Amplify::App", Mapping: engine.Map("AppId")},
	"AWS::Amplify::Domain":             engine.ParentDependency{Parent: "AWS::Amplify::App", Mapping: engine.Map("AppId")},
	"AWS::AmplifyUIBuilder::Component": engine.ParentDependency{Parent: "AWS::Amplify::App", Mapping: engine.Map("AppId")},
	"AWS::AmplifyUIBuilder::Theme":     engine.ParentDependency{Parent: "AWS::Amplify::App", Mapping: engine.Map("AppId")},
	"AWS::AmplifyUIBuilder::Form":      engine.ParentDependency{Parent: "AWS::Amplify::App", Mapping: engine.Map("AppId")},

	// ApiGateway
	"AWS::ApiGateway::Authorizer":           engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::BasePathMapping":      engine.ParentDependency{Parent: "AWS::ApiGateway::DomainName", Mapping: engine.Map("DomainName")},
	"AWS::ApiGateway::Deployment":           engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::DocumentationPart":    engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::DocumentationVersion": engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::Model":                engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::RequestValidator":     engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::Resource":             engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::Stage":                engine.ParentDependency{Parent: "AWS::ApiGateway::RestApi", Mapping: engine.Map("RestApiId")},
	"AWS::ApiGateway::UsagePlanKey":         engine.ParentDependency{Parent: "AWS::ApiGateway::UsagePlan", Mapping: []engine.PropertyMapping{{Child: "UsagePlanId", Parent: "Id"}}},
	"AWS::ApiGatewayV2::Authorizer":         engine.ParentDependency{Parent: "AWS::ApiGatewayV2::Api", Mapping: engine.Map("ApiId")},
	"AWS::ApiGatewayV2::Deployment":         engine.ParentDependency{Parent: "AWS::ApiGatewayV2::Api", Mapping: engine.Map("ApiId")},
	"AWS::ApiGatewayV2::Model":              engine.ParentDependency{Parent: "AWS::ApiGatewayV2::Api", Mapping: engine.Map("ApiId")},
	"AWS::ApiGatewayV2::Route":              engine.ParentDependency{Parent: "AWS::ApiGatewayV2::Api", Mapping: engine.Map("ApiId")},

	// APS
	"AWS::APS::RuleGroupsNamespace": engine.ParentDependency{Parent: "AWS::APS::Workspace", Mapping: []engine.PropertyMapping{{Child: "Workspace", Parent: "WorkspaceId"}}},

	// Athena
	"AWS::Athena::PreparedStatement": engine.ParentDependency{Parent: "AWS::Athena::WorkGroup", Mapping: []engine.PropertyMapping{{Child: "WorkGroup", Parent: "Name"}}},

	// AuditManager
	"AWS::AuditManager::Assessment": engine.FeatureGate{Check: GateAuditManagerEnabled},

	// CloudFormation
	"AWS::CloudFormation::Publisher":          engine.FeatureGate{Check: GateCloudFormationPublisher},
	"AWS::CloudFormation::HookDefaultVersion": engine.ParentDependency{Parent: "AWS::CloudFormation::HookVersion", Mapping: engine.Map("TypeName")},
	"AWS::CloudFormation::HookTypeConfig":     engine.ParentDependency{Parent: "AWS::CloudFormation::HookVersion", Mapping: engine.Map("TypeName")},

	// DevOpsGuru
	"AWS::DevOpsGuru::ResourceCollection": engine.StaticDependency{Key: "ResourceCollectionType", Values: []string{"AWS_CLOUD_FORMATION", "AWS_TAGS"}},

	// EC2
	"AWS::EC2::IPAMAllocation":                           engine.ParentDependency{Parent: "AWS::EC2::IPAMPool", Mapping: engine.Map("IpamPoolId")},
	"AWS::EC2::IPAMPoolCidr":                             engine.ParentDependency{Parent: "AWS::EC2::IPAMPool", Mapping: engine.Map("IpamPoolId")},
	"AWS::EC2::TransitGatewayMulticastDomainAssociation": engine.ParentDependency{Parent: "AWS::EC2::TransitGatewayMulticastDomain", Mapping: engine.Map("TransitGatewayMulticastDomainId")},
	"AWS::EC2::TransitGatewayMulticastGroupMember":       engine.ParentDependency{Parent: "AWS::EC2::TransitGatewayMulticastDomain", Mapping: engine.Map("TransitGatewayMulticastDomainId")},
	"AWS::EC2::TransitGatewayMulticastGroupSource":       engine.ParentDependency{Parent: "AWS::EC2::TransitGatewayMulticastDomain", Mapping: engine.Map("TransitGatewayMulticastDomainId")},

	// ECS
	"AWS::ECS::TaskSet": engine.ParentDependency{Parent: "AWS::ECS::Service", Mapping: []engine.PropertyMapping{{Child: "Cluster", Parent: "Cluster"}, {Child: "Service", Parent: "ServiceName"}}},

	// EFS
	"AWS::EFS::MountTarget": engine.ParentDependency{Parent: "AWS::EFS::FileSystem", Mapping: engine.Map("FileSystemId")},

	// EKS
	"AWS::EKS::Addon":                  engine.ParentDependency{Parent: "AWS::EKS::Cluster", Mapping: []engine.PropertyMapping{{Child: "ClusterName", Parent: "Name"}}},
	"AWS::EKS::FargateProfile":         engine.ParentDependency{Parent: "AWS::EKS::Cluster", Mapping: []engine.PropertyMapping{{Child: "ClusterName", Parent: "Name"}}},
	"AWS::EKS::IdentityProviderConfig": engine.ParentDependency{Parent: "AWS::EKS::Cluster", Mapping: []engine.PropertyMapping{{Child: "ClusterName", Parent: "Name"}}},
	"AWS::EKS::Nodegroup":              engine.ParentDependency{Parent: "AWS::EKS::Cluster", Mapping: []engine.PropertyMapping{{Child: "ClusterName", Parent: "Name"}}},

	// ElasticLoadBalancing
	"AWS::ElasticLoadBalancingV2::ListenerRule": engine.ParentDependency{Parent: "AWS::ElasticLoadBalancingV2::Listener", Mapping: engine.Map("ListenerArn")},

	// GlobalAccelerator
	"AWS::GlobalAccelerator::EndpointGroup": engine.ParentDependency{Parent: "AWS::GlobalAccelerator::Listener", Mapping: engine.Map("ListenerArn")},
	"AWS::GlobalAccelerator::Listener":      engine.ParentDependency{Parent: "AWS::GlobalAccelerator::Accelerator", Mapping: engine.Map("AcceleratorArn")},

	// Glue
	"AWS::Glue::SchemaVersionMetadata": engine.ParentDependency{Parent: "AWS::Glue::SchemaVersion", Mapping: []engine.PropertyMapping{{Child: "SchemaVersionId", Parent: "VersionId"}}},

	// IotTwinMaker
	"AWS::IoTTwinMaker::ComponentType": engine.ParentDependency{Parent: "AWS::IoTTwinMaker::Workspace", Mapping: engine.Map("WorkspaceId")},
	"AWS::IoTTwinMaker::Entity":        engine.ParentDependency{Parent: "AWS::IoTTwinMaker::Workspace", Mapping: engine.Map("WorkspaceId")},
	"AWS::IoTTwinMaker::Scene":         engine.ParentDependency{Parent: "AWS::IoTTwinMaker::Workspace", Mapping: engine.Map("WorkspaceId")},
	"AWS::IoTTwinMaker::SyncJob":       engine.ParentDependency{Parent: "AWS::IoTTwinMaker::Workspace", Mapping: engine.Map("WorkspaceId")},

	// IotSiteWise
	"AWS::IoTSiteWise::AccessPolicy": engine.ParentDependency{Parent: "AWS::IoTSiteWise::Project", Mapping: []engine.PropertyMapping{{Child: "AccessPolicyResource.Project.Id", Parent: "ProjectId"}}},
	"AWS::IoTSiteWise::Dashboard":    engine.ParentDependency{Parent: "AWS::IoTSiteWise::Project", Mapping: engine.Map("ProjectId")},
	"AWS::IoTSiteWise::Project":      engine.ParentDependency{Parent: "AWS::IoTSiteWise::Portal", Mapping: engine.Map("PortalId")},

	// Kendra
	"AWS::Kendra::DataSource": engine.ParentDependency{Parent: "AWS::Kendra::Index", Mapping: []engine.PropertyMapping{{Child: "IndexId", Parent: "Id"}}},
	"AWS::Kendra::Faq":        engine.ParentDependency{Parent: "AWS::Kendra::Index", Mapping: []engine.PropertyMapping{{Child: "IndexId", Parent: "Id"}}},

	// Lambda
	"AWS::Lambda::Url": engine.ParentDependency{Parent: "AWS::Lambda::Function", Mapping: []engine.PropertyMapping{{Child: "TargetFunctionArn", Parent: "Arn"}}},

	// Lex
	"AWS::Lex::BotAlias":   engine.ParentDependency{Parent: "AWS::Lex::Bot", Mapping: []engine.PropertyMapping{{Child: "BotId", Parent: "Id"}}},
	"AWS::Lex::BotVersion": engine.ParentDependency{Parent: "AWS::Lex::Bot", Mapping: []engine.PropertyMapping{{Child: "BotId", Parent: "Id"}}},

	// Lightsail
	"AWS::Lightsail::LoadBalancerTlsCertificate": engine.ParentDependency{Parent: "AWS::Lightsail::LoadBalancerTlsCertificate", Mapping: engine.Map("LoadBalancerName")},

	// Location
	"AWS::Location::TrackerConsumer": engine.ParentDependency{Parent: "AWS::Location::Tracker", Mapping: engine.Map("TrackerName")},

	// Logs
	"AWS::Logs::LogStream":          engine.ParentDependency{Parent: "AWS::Logs::LogGroup", Mapping: engine.Map("LogGroupName")},
	"AWS::Logs::SubscriptionFilter": engine.ParentDependency{Parent: "AWS::Logs::LogGroup", Mapping: engine.Map("LogGroupName")},

	// MediaConnect
	"AWS::MediaConnect::FlowEntitlement":  engine.ParentDependency{Parent: "AWS::MediaConnect::Flow", Mapping: engine.Map("FlowArn")},
	"AWS::MediaConnect::FlowOutput":       engine.ParentDependency{Parent: "AWS::MediaConnect::Flow", Mapping: engine.Map("FlowArn")},
	"AWS::MediaConnect::FlowSource":       engine.ParentDependency{Parent: "AWS::MediaConnect::Flow", Mapping: engine.Map("FlowArn")},
	"AWS::MediaConnect::FlowVpcInterface": engine.ParentDependency{Parent: "AWS::MediaConnect::Flow", Mapping: engine.Map("FlowArn")},

	// MediaPackage
	"AWS::MediaPackage::Asset":                  engine.ParentDependency{Parent: "AWS::MediaPackage::PackagingGroup", Mapping: []engine.PropertyMapping{{Child: "PackagingGroupId", Parent: "Id"}}},
	"AWS::MediaPackage::PackagingConfiguration": engine.ParentDependency{Parent: "AWS::MediaPackage::PackagingGroup", Mapping: []engine.PropertyMapping{{Child: "PackagingGroupId", Parent: "Id"}}},

	// MSK
	"AWS::MSK::BatchScramSecret": engine.ParentDependency{Parent: "AWS::MSK::Cluster", Mapping: []engine.PropertyMapping{{Child: "ClusterArn", Parent: "Arn"}}},

	// NetworkFirewall
	"AWS::NetworkFirewall::LoggingConfiguration": engine.ParentDependency{Parent: "AWS::NetworkFirewall::Firewall", Mapping: engine.Map("FirewallArn")},

	// NetworkManager
	"AWS::NetworkManager::CustomerGatewayAssociation": engine.ParentDependency{Parent: "AWS::NetworkManager::GlobalNetwork", Mapping: []engine.PropertyMapping{{Child: "GlobalNetworkId", Parent: "Id"}}},
	"AWS::NetworkManager::Device":                     engine.ParentDependency{Parent: "AWS::NetworkManager::GlobalNetwork", Mapping: []engine.PropertyMapping{{Child: "GlobalNetworkId", Parent: "Id"}}},
	"AWS::NetworkManager::Link":                       engine.ParentDependency{Parent: "AWS::NetworkManager::GlobalNetwork", Mapping: []engine.PropertyMapping{{Child: "GlobalNetworkId", Parent: "Id"}}},
	"AWS::NetworkManager::LinkAssociation":            engine.ParentDependency{Parent: "AWS::NetworkManager::GlobalNetwork", Mapping: []engine.PropertyMapping{{Child: "GlobalNetworkId", Parent: "Id"}}},
	"AWS::NetworkManager::Site":                       engine.ParentDependency{Parent: "AWS::NetworkManager::GlobalNetwork", Mapping: []engine.PropertyMapping{{Child: "GlobalNetworkId", Parent: "Id"}}},
	"AWS::NetworkManager::TransitGatewayRegistration": engine.ParentDependency{Parent: "AWS::NetworkManager::GlobalNetwork", Mapping: []engine.PropertyMapping{{Child: "GlobalNetworkId", Parent: "Id"}}},

	// OpenSearch
	"AWS::OpenSearchServerless::AccessPolicy":   engine.StaticDependency{Key: "Type", Values: []string{"data"}},
	"AWS::OpenSearchServerless::SecurityConfig": engine.StaticDependency{Key: "Type", Values: []string{"saml"}},
	"AWS::OpenSearchServerless::SecurityPolicy": engine.StaticDependency{Key: "Type", Values: []string{"encryption", "network"}},

	// QLDB
	"AWS::QLDB::Stream": engine.ParentDependency{Parent: "AWS::QLDB::Ledger", Mapping: []engine.PropertyMapping{{Child: "LedgerName", Parent: "Name"}}},

	// QuickSight
	"AWS::QuickSight::Analysis":        engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},
	"AWS::QuickSight::Dashboard":       engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},
	"AWS::QuickSight::DataSet":         engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},
	"AWS::QuickSight::DataSource":      engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},
	"AWS::QuickSight::RefreshSchedule": engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},
	"AWS::QuickSight::Template":        engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},
	"AWS::QuickSight::Theme":           engine.DynamicDependency{Source: SourceQuickSightAccounts, Mapping: []engine.PropertyMapping{{Child: "AwsAccountId", Parent: "Account"}}},

	// RDS
	"AWS::RDS::DBProxyTargetGroup": engine.ParentDependency{Parent: "AWS::RDS::DBProxy", Mapping: engine.Map("DBProxyName")},

	// RefactorSpaces
	"AWS::RefactorSpaces::Application": engine.ParentDependency{Parent: "AWS::RefactorSpaces::Environment", Mapping: engine.Map("EnvironmentIdentifier")},
	"AWS::RefactorSpaces::Route":       engine.ParentDependency{Parent: "AWS::RefactorSpaces::Application", Mapping: engine.Map("ApplicationIdentifier")},
	"AWS::RefactorSpaces::Service":     engine.ParentDependency{Parent: "AWS::RefactorSpaces::Application", Mapping: engine.Map("ApplicationIdentifier")},

	// S3Outpost
	"AWS::S3Outposts::AccessPoint": engine.ParentDependency{Parent: "AWS::S3Outposts::Bucket", Mapping: []engine.PropertyMapping{{Child: "Bucket", Parent: "Arn"}}},

	// SageMaker
	"AWS::SageMaker::ImageVersion": engine.ParentDependency{Parent: "AWS::SageMaker::Image", Mapping: engine.Map("ImageName")},

	// Signer
	"AWS::Signer::ProfilePermission": engine.ParentDependency{Parent: "AWS::Signer::SigningProfile", Mapping: engine.Map("ProfileName")},

	// VPC Latice
	"AWS::VpcLattice::AccessLogSubscription":            engine.ParentDependency{Parent: "AWS::VpcLattice::Service", Mapping: []engine.PropertyMapping{{Child: "ResourceIdentifier", Parent: "Id"}}},
	"AWS::VpcLattice::Listener":                         engine.ParentDependency{Parent: "AWS::VpcLattice::Service", Mapping: []engine.PropertyMapping{{Child: "ServiceIdentifier", Parent: "Id"}}},
	"AWS::VpcLattice::Rule":                             engine.ParentDependency{Parent: "AWS::VpcLattice::Listener", Mapping: []engine.PropertyMapping{{Child: "listenerIdentifier", Parent: "Id"}}},
	"AWS::VpcLattice::ServiceNetworkServiceAssociation": engine.ParentDependency{Parent: "AWS::VpcLattice::Service", Mapping: []engine.PropertyMapping{{Child: "ServiceIdentifier", Parent: "Id"}}},
	"AWS::VpcLattice::ServiceNetworkVpcAssociation":     engine.ParentDependency{Parent: "AWS::VpcLattice::ServiceNetwork", Mapping: []engine.PropertyMapping{{Child: "ServiceNetworkIdentifier", Parent: "Id"}}},

	// WAF
	"AWS::WAFv2::IPSet":           engine.DynamicDependency{Source: SourceWAFv2Scopes, Mapping: engine.Map("Scope")},
	"AWS::WAFv2::RegexPatternSet": engine.DynamicDependency{Source: SourceWAFv2Scopes, Mapping: engine.Map("Scope")},
	"AWS::WAFv2::RuleGroup":       engine.DynamicDependency{Source: SourceWAFv2Scopes, Mapping: engine.Map("Scope")},
	"AWS::WAFv2::WebACL":          engine.DynamicDependency{Source: SourceWAFv2Scopes, Mapping: engine.Map("Scope")},
}
