package policy

import (
	"github.com/openfroyo/inventory/pkg/engine"
)

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		s3VersioningPolicy(),
		openIngressPolicy(),
		ebsEncryptionPolicy(),
	}
}

// s3VersioningPolicy requires versioning on S3 buckets.
func s3VersioningPolicy() Policy {
	return Policy{
		Name:        "s3-bucket-versioning",
		Description: "S3 buckets should have versioning enabled",
		Severity:    SeverityWarning,
		Enabled:     true,
		Types:       []engine.ResourceType{"AWS::S3::Bucket"},
		Rego: `package inventory.s3_versioning

import rego.v1

deny contains msg if {
	input.type == "AWS::S3::Bucket"
	not versioning_enabled
	msg := sprintf("S3 bucket %s does not have versioning enabled", [input.identifier])
}

versioning_enabled if {
	input.properties.VersioningConfiguration.Status == "Enabled"
}
`,
	}
}

// openIngressPolicy flags security groups reachable from anywhere on
// ports other than HTTP and HTTPS.
func openIngressPolicy() Policy {
	return Policy{
		Name:        "security-group-open-ingress",
		Description: "Security groups must not allow ingress from the whole internet except for HTTP and HTTPS",
		Severity:    SeverityError,
		Enabled:     true,
		Types:       []engine.ResourceType{"AWS::EC2::SecurityGroup"},
		Rego: `package inventory.open_ingress

import rego.v1

web_ports := {80, 443}

deny contains msg if {
	input.type == "AWS::EC2::SecurityGroup"
	some rule in input.properties.SecurityGroupIngress
	open_to_world(rule)
	not web_port(rule)
	msg := sprintf("Security group %s allows ingress from %s on ports %v-%v", [
		input.identifier,
		object.get(rule, "CidrIp", object.get(rule, "CidrIpv6", "")),
		object.get(rule, "FromPort", -1),
		object.get(rule, "ToPort", -1),
	])
}

open_to_world(rule) if rule.CidrIp == "0.0.0.0/0"

open_to_world(rule) if rule.CidrIpv6 == "::/0"

web_port(rule) if {
	rule.FromPort == rule.ToPort
	rule.FromPort in web_ports
}
`,
	}
}

// ebsEncryptionPolicy requires encrypted EBS volumes.
func ebsEncryptionPolicy() Policy {
	return Policy{
		Name:        "ebs-volume-encryption",
		Description: "EBS volumes must be encrypted",
		Severity:    SeverityError,
		Enabled:     true,
		Types:       []engine.ResourceType{"AWS::EC2::Volume"},
		Rego: `package inventory.ebs_encryption

import rego.v1

deny contains msg if {
	input.type == "AWS::EC2::Volume"
	not input.properties.Encrypted == true
	msg := sprintf("EBS volume %s is not encrypted", [input.identifier])
}
`,
	}
}
