package aws

import (
	"errors"
	"fmt"

	cctypes "github.com/aws/aws-sdk-go-v2/service/cloudcontrol/types"
	"github.com/aws/smithy-go"

	"github.com/openfroyo/inventory/pkg/engine"
)

// throttlingCodes are the API error codes reported when the retry budget was exhausted.
var throttlingCodes = map[string]bool{
	"ThrottlingException":       true,
	"Throttling":                true,
	"TooManyRequestsException":  true,
	"RequestLimitExceeded":      true,
	"ServiceLimitExceeded":      true,
	"ThrottledException":        true,
	"RequestThrottledException": true,
}

// classifyError converts an SDK error into a classified engine error.
func classifyError(err error, t engine.ResourceType, operation string) error {
	if err == nil {
		return nil
	}

	var unsupported *cctypes.UnsupportedActionException
	if errors.As(err, &unsupported) {
		return engine.NewUnsupportedError(fmt.Sprintf("%s not supported", operation), err).
			WithResource(string(t)).
			WithOperation(operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case code == "UnsupportedActionException":
			return engine.NewUnsupportedError(fmt.Sprintf("%s not supported", operation), err).
				WithResource(string(t)).
				WithOperation(operation)
		case throttlingCodes[code]:
			return engine.NewRemoteError("request throttled", err).
				WithCode(engine.ErrCodeThrottled).
				WithResource(string(t)).
				WithOperation(operation).
				WithDetail("aws_code", code)
		default:
			return engine.NewRemoteError(apiErr.ErrorMessage(), err).
				WithResource(string(t)).
				WithOperation(operation).
				WithDetail("aws_code", code)
		}
	}

	return engine.NewRemoteError(fmt.Sprintf("%s request failed", operation), err).
		WithResource(string(t)).
		WithOperation(operation)
}

// hasErrorCode reports whether err is an API error with the given code.
func hasErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
