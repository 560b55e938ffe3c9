package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusConstants(t *testing.T) {
	assert.Equal(t, "active", StatusActive)
	assert.Equal(t, "suspended", StatusSuspended)
}

func TestTenantTypeConstants(t *testing.T) {
	assert.Equal(t, "standalone", TenantTypeStandalone)
	assert.Equal(t, "msp", TenantTypeMSP)
	assert.Equal(t, "sub_tenant", TenantTypeSubTenant)
}
