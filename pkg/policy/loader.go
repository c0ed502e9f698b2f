package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Loader loads policies from .rego files.
//
// Leading comment lines of a file may carry metadata:
//
//	# severity: error
//	# types: AWS::S3::Bucket, AWS::S3::AccessPoint
//	# Any other comment line becomes part of the description.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a new policy loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "policy-loader").Logger(),
	}
}

// LoadDir loads all .rego files from a directory recursively, ordered by path.
func (l *Loader) LoadDir(dirPath string) ([]Policy, error) {
	var policies []Policy

	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".rego") || strings.HasSuffix(path, "_test.rego") {
			return nil
		}

		policy, err := l.LoadFile(path)
		if err != nil {
			return err
		}

		policies = append(policies, *policy)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return policies, nil
}

// LoadFile loads a policy from a single file. The policy is named after the file.
func (l *Loader) LoadFile(filePath string) (*Policy, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	policy := parseRegoFile(filePath, string(data))

	l.logger.Debug().
		Str("path", filePath).
		Str("policy", policy.Name).
		Msg("Policy loaded from file")

	return policy, nil
}

// parseRegoFile parses a .rego file into a Policy.
func parseRegoFile(filePath, content string) *Policy {
	policy := &Policy{
		Name:     strings.TrimSuffix(filepath.Base(filePath), ".rego"),
		Rego:     content,
		Severity: SeverityWarning,
		Enabled:  true,
		Source:   filePath,
	}

	var description []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			// Stop at first non-comment line
			break
		}

		comment := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		key, value, found := strings.Cut(comment, ":")
		switch {
		case found && strings.EqualFold(strings.TrimSpace(key), "severity"):
			policy.Severity = Severity(strings.ToLower(strings.TrimSpace(value)))
		case found && strings.EqualFold(strings.TrimSpace(key), "types"):
			for _, t := range strings.Split(value, ",") {
				if t = strings.TrimSpace(t); t != "" {
					policy.Types = append(policy.Types, engine.ResourceType(t))
				}
			}
		case comment != "":
			description = append(description, comment)
		}
	}
	policy.Description = strings.Join(description, " ")

	return policy
}
