package domain

import (
	"strings"

	"github.com/fatih/camelcase"
)

// Policy is a named, opt-in exemption from one specific validation rule.
type Policy string

const (
	PolicyEmptyPackage        Policy = "EmptyPackage"
	PolicyEmptyIncludeFolder  Policy = "EmptyIncludeFolder"
	PolicyDllsWithoutLibs     Policy = "DllsWithoutLibs"
	PolicyAllowObsoleteMsvcrt Policy = "AllowObsoleteMsvcrt"
	PolicyOnlyReleaseCrt      Policy = "OnlyReleaseCrt"
)

// AllPolicies lists the closed set of recognized policies.
var AllPolicies = []Policy{
	PolicyEmptyPackage,
	PolicyEmptyIncludeFolder,
	PolicyDllsWithoutLibs,
	PolicyAllowObsoleteMsvcrt,
	PolicyOnlyReleaseCrt,
}

// CMakeVariable returns the build-system variable a recipe sets to enable the
// policy, e.g. VCPKG_POLICY_DLLS_WITHOUT_LIBS.
func (p Policy) CMakeVariable() string {
	words := camelcase.Split(string(p))
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	return "VCPKG_POLICY_" + strings.Join(words, "_")
}

// ParsePolicy resolves a policy from its canonical name, its build-system
// variable, or its BUILD_INFO key (Policy prefix). Matching is
// case-insensitive.
func ParsePolicy(name string) (Policy, bool) {
	for _, p := range AllPolicies {
		if strings.EqualFold(name, string(p)) ||
			strings.EqualFold(name, p.CMakeVariable()) ||
			strings.EqualFold(name, "Policy"+string(p)) {
			return p, true
		}
	}
	return "", false
}

// PolicySet is a sparse set of enabled policies. Unset names are disabled:
// the world is closed and default-deny. A PolicySet is built once before
// validation and read-only afterwards.
type PolicySet struct {
	enabled map[Policy]bool
}

// NewPolicySet builds a PolicySet with the given policies enabled.
func NewPolicySet(enabled ...Policy) PolicySet {
	m := make(map[Policy]bool, len(enabled))
	for _, p := range enabled {
		m[p] = true
	}
	return PolicySet{enabled: m}
}

// IsEnabled reports whether the policy was enabled for this run.
func (s PolicySet) IsEnabled(p Policy) bool {
	return s.enabled[p]
}

// Enabled returns the enabled policies in canonical order.
func (s PolicySet) Enabled() []Policy {
	var out []Policy
	for _, p := range AllPolicies {
		if s.enabled[p] {
			out = append(out, p)
		}
	}
	return out
}
