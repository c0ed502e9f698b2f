// Package config loads the inventory tool configuration.
//
// Configuration files are written in CUE or YAML. CUE files are unified with
// a closed #Config schema before decoding, so misspelled fields and out of
// range values are reported with their file position:
//
//	aws: region: "eu-west-1"
//
//	prefixes: ["AWS::S3::", "AWS::EC2::"]
//	exclude: ["AWS::EC2::LaunchTemplate"]
//
//	parallelism: 8
//	fan_out:     4
//
//	output: {
//		dir:         "inventory"
//		sqlite_path: "inventory.db"
//	}
//
//	policies: {
//		enabled: true
//		fail_on: "error"
//	}
//
// The equivalent YAML uses the same field names. After decoding, unset fields
// take their Default value and the configuration is validated with
// go-playground/validator. Problems are returned as a *LoadError listing
// every ValidationError found.
package config
