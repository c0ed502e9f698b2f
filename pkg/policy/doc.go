// Package policy evaluates Open Policy Agent (OPA) rules over inventoried resources.
//
// Each policy is a Rego module defining a "deny" set. Entries are either
// message strings or objects with "message" and an optional "severity". A
// policy is evaluated once per resource instance with this input:
//
//	{
//	    "type":       "AWS::S3::Bucket",
//	    "identifier": "my-bucket",
//	    "properties": { ... }
//	}
//
// # Usage
//
// Creating a policy engine with the built-in policies:
//
//	eng, err := policy.NewEngine(logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Loading custom policies from a directory of .rego files:
//
//	if err := eng.LoadDir(ctx, "/etc/inventory/policies"); err != nil {
//	    log.Fatal(err)
//	}
//
// Auditing a run by adding an Auditor to the result sinks:
//
//	auditor := policy.NewAuditor(eng, logger)
//	sink := stores.MultiSink{fileStore, auditor}
//
// # Built-in Policies
//
//   - s3-bucket-versioning: S3 buckets should have versioning enabled (warning)
//   - security-group-open-ingress: no world-open ingress except ports 80 and 443 (error)
//   - ebs-volume-encryption: EBS volumes must be encrypted (error)
package policy
