package site_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tankadesign/iis-site-manager/internal/site"
)

func TestDedicatedPoolName(t *testing.T) {
	assert.Equal(t, "Contoso_nvQuickSite", site.DedicatedPoolName("Contoso"))
	assert.Equal(t, "shop.example.com_nvQuickSite", site.DedicatedPoolName("shop.example.com"))
}

func TestIsToolPool(t *testing.T) {
	tests := []struct {
		name string
		pool string
		want bool
	}{
		{"tool pool", "Contoso_nvQuickSite", true},
		{"bare marker with separator", "_nvQuickSite", true},
		{"foreign pool", "DefaultAppPool", false},
		{"marker without separator", "ContosonvQuickSite", false},
		{"marker in the middle", "Contoso_nvQuickSite_backup", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, site.IsToolPool(tt.pool))
		})
	}
}
