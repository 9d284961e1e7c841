package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
)

// rawRule keeps pointers so that absent keys can be told apart from zero values.
type rawRule struct {
	Severities *[]string `yaml:"severities"`
	MaxAllowed *int      `yaml:"max_allowed"`
}

type rawPolicy struct {
	FailOn map[string]*rawRule `yaml:"fail_on"`
}

// LoadPolicy reads and validates a Policy from a YAML file.
// A missing file yields POLICY-001, bad YAML POLICY-003 and a structurally
// incomplete document POLICY-002.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, gerrors.NewPolicyNotFoundError(path, err)
		}
		return nil, gerrors.Wrap(gerrors.ErrCodeFileReadFailed, fmt.Sprintf("read policy file: %s", path), err)
	}

	var raw rawPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, gerrors.NewPolicyUnmarshalError(path, err)
	}

	return fromRaw(raw)
}

// ParsePolicy validates a Policy from YAML bytes.
func ParsePolicy(data []byte) (*Policy, error) {
	var raw rawPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, gerrors.NewPolicyUnmarshalError("<inline>", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawPolicy) (*Policy, error) {
	if raw.FailOn == nil {
		return nil, gerrors.NewPolicyInvalidError("missing required section fail_on")
	}

	p := &Policy{}
	for _, s := range Scanners {
		rr := raw.FailOn[string(s)]
		if rr == nil {
			return nil, gerrors.NewPolicyInvalidError(fmt.Sprintf("fail_on.%s is required", s))
		}
		if rr.MaxAllowed == nil {
			return nil, gerrors.NewPolicyInvalidError(fmt.Sprintf("fail_on.%s.max_allowed is required", s))
		}
		r := p.rulePtr(s)
		r.MaxAllowed = *rr.MaxAllowed

		if !s.SeverityFiltered() {
			if rr.Severities != nil && len(*rr.Severities) > 0 {
				p.Warnings = append(p.Warnings, fmt.Sprintf("fail_on.%s.severities is ignored; every finding counts", s))
			}
			continue
		}
		if rr.Severities == nil {
			return nil, gerrors.NewPolicyInvalidError(fmt.Sprintf("fail_on.%s.severities is required", s))
		}
		r.Severities = *rr.Severities
	}

	var unknown []string
	for key := range raw.FailOn {
		switch Scanner(key) {
		case ScannerBandit, ScannerPipAudit, ScannerGitleaks:
		default:
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		p.Warnings = append(p.Warnings, fmt.Sprintf("fail_on.%s is not a recognized scanner and is ignored", key))
	}

	if err := p.Validate(); err != nil {
		return nil, gerrors.NewPolicyInvalidError(err.Error())
	}
	return p, nil
}

// SavePolicy writes a Policy to a YAML file
func SavePolicy(p *Policy, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return gerrors.NewFileWriteError(path, err)
	}

	return nil
}
