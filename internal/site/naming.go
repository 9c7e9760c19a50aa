package site

import "strings"

// ToolMarker tags application pools provisioned by this tool. Pools created
// by earlier releases carry the same literal, so it must not change.
const ToolMarker = "nvQuickSite"

const poolSuffix = "_" + ToolMarker

// DedicatedPoolName returns the name of the dedicated application pool for a
// site, following the tool's naming convention.
func DedicatedPoolName(siteName string) string {
	return siteName + poolSuffix
}

// IsToolPool reports whether poolName matches the naming convention of pools
// created by this tool. The suffix is the only provenance marker the store
// offers.
func IsToolPool(poolName string) bool {
	return strings.HasSuffix(poolName, poolSuffix)
}
