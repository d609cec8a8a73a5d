// internal/models/framework.go
package models

import "fmt"

// Framework identifies one compliance domain with its own pattern and weight table.
type Framework string

const (
	FrameworkSanctions      Framework = "sanctions"
	FrameworkAMLCFT         Framework = "aml_cft"
	FrameworkGDPR           Framework = "gdpr"
	FrameworkPCIDSS         Framework = "pci_dss"
	FrameworkSOX            Framework = "sox"
	FrameworkFinancialCrime Framework = "financial_crime"
	FrameworkCybersecurity  Framework = "cybersecurity"
)

// Frameworks lists every supported framework in a stable order.
var Frameworks = []Framework{
	FrameworkSanctions,
	FrameworkAMLCFT,
	FrameworkGDPR,
	FrameworkPCIDSS,
	FrameworkSOX,
	FrameworkFinancialCrime,
	FrameworkCybersecurity,
}

// ParseFramework converts a string into a Framework. An unknown name is a
// programmer error, not a data-quality issue, so it returns an error.
func ParseFramework(s string) (Framework, error) {
	f := Framework(s)
	for _, known := range Frameworks {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown compliance framework: %q", s)
}

func (f Framework) String() string {
	return string(f)
}
