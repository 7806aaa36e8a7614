package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transfigure/cli/internal/units"
)

func TestBounds(t *testing.T) {
	request, limit := Bounds("> .5 < 1.5")
	require.NotNil(t, request)
	require.NotNil(t, limit)
	assert.Equal(t, Bound{Amount: .5}, *request)
	assert.Equal(t, Bound{Amount: 1.5}, *limit)

	request, limit = Bounds("< 2Gi")
	assert.Nil(t, request)
	assert.Equal(t, Bound{Amount: 2, Unit: "Gi"}, *limit)
}

func TestResourcesCPU(t *testing.T) {
	var req units.Requirements
	Resources("cpu", "> 50% < 1.25", &req)
	assert.Equal(t, map[string]string{"cpu": "500m"}, req.Requests)
	assert.Equal(t, map[string]string{"cpu": "1250m"}, req.Limits)
}

func TestResourcesRAM(t *testing.T) {
	var req units.Requirements
	Resources("ram", "> 500Mi < 1Gi", &req)
	assert.Equal(t, map[string]string{"memory": "500Mi"}, req.Requests)
	assert.Equal(t, map[string]string{"memory": "1024Mi"}, req.Limits)
}

func TestResourcesSpacedUnits(t *testing.T) {
	var req units.Requirements
	Resources("ram", "> 256 Mi", &req)
	assert.Equal(t, map[string]string{"memory": "256Mi"}, req.Requests)
	assert.Nil(t, req.Limits)
}

func TestResourcesCombined(t *testing.T) {
	var req units.Requirements
	Resources("cpu", "> .75 < 1.5", &req)
	Resources("ram", "> 1Gi < 2Gi", &req)
	assert.Equal(t, map[string]string{"cpu": "750m", "memory": "1024Mi"}, req.Requests)
	assert.Equal(t, map[string]string{"cpu": "1500m", "memory": "2048Mi"}, req.Limits)
}

func TestResourcesUnknownUnitDropped(t *testing.T) {
	var req units.Requirements
	Resources("ram", "> 10 < 1Gi", &req)
	assert.Nil(t, req.Requests)
	assert.Equal(t, map[string]string{"memory": "1024Mi"}, req.Limits)

	Resources("disk", "> 10Gi", &req)
	assert.NotContains(t, req.Requests, "disk")
}
