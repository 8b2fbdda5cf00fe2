package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mibe/pkg/utils"
)

func TestParseExternalReference(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		company string
		plan    string
		wantErr bool
	}{
		{name: "short ids", ref: "company_A_plan_P1", company: "A", plan: "P1"},
		{
			name:    "uuids",
			ref:     "company_3f1c2a9e-8d4b-4c55-9a77-1b2c3d4e5f60_plan_0b7e5c1a-2f3d-4e6a-8b9c-0d1e2f3a4b5c",
			company: "3f1c2a9e-8d4b-4c55-9a77-1b2c3d4e5f60",
			plan:    "0b7e5c1a-2f3d-4e6a-8b9c-0d1e2f3a4b5c",
		},
		{name: "surrounding whitespace", ref: "  company_7_plan_9\n", company: "7", plan: "9"},
		{name: "not a reference", ref: "not-a-valid-format", wantErr: true},
		{name: "missing plan", ref: "company_A", wantErr: true},
		{name: "prefix garbage", ref: "xcompany_A_plan_P1", wantErr: true},
		{name: "trailing garbage", ref: "company_A_plan_P1!", wantErr: true},
		{name: "empty plan id", ref: "company_A_plan_", wantErr: true},
		{name: "space inside id", ref: "company_A B_plan_P1", wantErr: true},
		{name: "empty", ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExternalReference(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, utils.ErrMalformedReference)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.company, got.CompanyID)
			assert.Equal(t, tt.plan, got.PlanID)
		})
	}
}

func TestParseExternalReferenceSplitsOnLastPlanMarker(t *testing.T) {
	// Ids may contain underscores; the pattern backtracks to the last
	// _plan_ so the plan id is always a single token.
	got, err := ParseExternalReference("company_a_plan_b_plan_c")
	require.NoError(t, err)
	assert.Equal(t, "a_plan_b", got.CompanyID)
	assert.Equal(t, "c", got.PlanID)
}

func TestBuildExternalReferenceRoundTrip(t *testing.T) {
	ref := BuildExternalReference("c-1", "p-2")
	assert.Equal(t, "company_c-1_plan_p-2", ref)

	parsed, err := ParseExternalReference(ref)
	require.NoError(t, err)
	assert.Equal(t, ExternalReference{CompanyID: "c-1", PlanID: "p-2"}, parsed)
	assert.Equal(t, ref, parsed.String())
}

func TestResolveExternalReferencePrecedence(t *testing.T) {
	ref, ok := ResolveExternalReference(GatewayPayment{
		ExternalReference: "company_A_plan_P1",
		MetadataReference: "company_B_plan_P2",
	})
	require.True(t, ok)
	assert.Equal(t, "company_A_plan_P1", ref)

	ref, ok = ResolveExternalReference(GatewayPayment{
		ExternalReference: "   ",
		MetadataReference: "company_B_plan_P2",
	})
	require.True(t, ok)
	assert.Equal(t, "company_B_plan_P2", ref)

	_, ok = ResolveExternalReference(GatewayPayment{})
	assert.False(t, ok)
}

func TestParseCompanyReference(t *testing.T) {
	id, err := ParseCompanyReference("company_C_plan_P1")
	require.NoError(t, err)
	assert.Equal(t, "C", id)

	id, err = ParseCompanyReference("company_C")
	require.NoError(t, err)
	assert.Equal(t, "C", id)

	_, err = ParseCompanyReference("order_123")
	assert.ErrorIs(t, err, utils.ErrMalformedReference)
}
