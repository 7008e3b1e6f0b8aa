package roles

import (
	"context"
	"testing"

	"manage-breast-screening/internal/ports/capabilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_DefaultGrants(t *testing.T) {
	r := NewResolver(nil, false)
	ctx := context.Background()

	tests := []struct {
		roles []string
		cap   capabilities.Capability
		want  bool
	}{
		{[]string{"clinical"}, capabilities.AppointmentsRecordOutcome, true},
		{[]string{"Clinical "}, capabilities.AppointmentsCheckIn, true},
		{[]string{"clinical"}, capabilities.ClinicsManage, false},
		{[]string{"administrative"}, capabilities.AppointmentsRecordOutcome, false},
		{[]string{"administrative", "clinical"}, capabilities.AppointmentsRecordOutcome, true},
		{[]string{"superuser"}, capabilities.AuditRead, true},
		{nil, capabilities.AppointmentsCheckIn, false},
		{[]string{"unknown"}, capabilities.AppointmentsCheckIn, false},
	}

	for _, tt := range tests {
		got, err := r.HasFeature(ctx, capabilities.CapabilityCheck{UserID: "u", Roles: tt.roles, Capability: tt.cap})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v %s", tt.roles, tt.cap)
	}
}

func TestResolver_AllowAll(t *testing.T) {
	r := NewResolver(nil, true)
	ok, err := r.HasFeature(context.Background(), capabilities.CapabilityCheck{Capability: capabilities.AuditRead})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolver_CapabilityRequired(t *testing.T) {
	_, err := NewResolver(nil, true).HasFeature(context.Background(), capabilities.CapabilityCheck{})
	assert.ErrorIs(t, err, ErrCapabilityRequired)
}
