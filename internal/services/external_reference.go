package services

import (
	"fmt"
	"regexp"
	"strings"

	"mibe/pkg/utils"
)

var (
	subscriptionRefPattern = regexp.MustCompile(`^company_([\w-]+)_plan_([\w-]+)$`)
	companyRefPattern      = regexp.MustCompile(`^company_([\w-]+)$`)
)

// ExternalReference is the identity encoded in a gateway charge's
// externalReference: company_{companyID}_plan_{planID}.
type ExternalReference struct {
	CompanyID string
	PlanID    string
}

func (r ExternalReference) String() string {
	return BuildExternalReference(r.CompanyID, r.PlanID)
}

// BuildExternalReference is the value set on gateway charges when a
// subscription checkout starts.
func BuildExternalReference(companyID, planID string) string {
	return fmt.Sprintf("company_%s_plan_%s", companyID, planID)
}

// ResolveExternalReference picks the raw reference for a payment. The
// top-level field wins; the metadata copy is only read when the top-level
// one is blank.
func ResolveExternalReference(p GatewayPayment) (string, bool) {
	if ref := strings.TrimSpace(p.ExternalReference); ref != "" {
		return ref, true
	}
	if ref := strings.TrimSpace(p.MetadataReference); ref != "" {
		return ref, true
	}
	return "", false
}

// ParseExternalReference matches the whole string. Ids are word characters
// and hyphens, so a trailing suffix such as "_extra!" fails instead of being
// folded into the plan id.
func ParseExternalReference(ref string) (ExternalReference, error) {
	m := subscriptionRefPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return ExternalReference{}, fmt.Errorf("%w: %q", utils.ErrMalformedReference, ref)
	}
	return ExternalReference{CompanyID: m[1], PlanID: m[2]}, nil
}

// ParseCompanyReference extracts only the company. It accepts the full
// company_{id}_plan_{id} form as well as a bare company_{id}.
func ParseCompanyReference(ref string) (string, error) {
	if full, err := ParseExternalReference(ref); err == nil {
		return full.CompanyID, nil
	}
	m := companyRefPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return "", fmt.Errorf("%w: %q", utils.ErrMalformedReference, ref)
	}
	return m[1], nil
}
