package client

import (
	"strings"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
)

const mediaTypePrefix = "application/vnd.hedtech.integration.v"

// VersionMediaType expands a bare version such as "12" or "12.1.0" into the
// versioned media type. Values that already are media types pass through.
func VersionMediaType(version string) string {
	version = strings.TrimSpace(version)
	switch {
	case version == "":
		return pagination.DefaultVersion
	case strings.Contains(version, "/"):
		return version
	default:
		return mediaTypePrefix + strings.TrimPrefix(version, "v") + "+json"
	}
}

// AcceptHeaders builds the headers for reading a resource at version.
func AcceptHeaders(version string) map[string]string {
	return map[string]string{"Accept": VersionMediaType(version)}
}

// ContentTypeHeaders builds the headers for writing a resource at version.
func ContentTypeHeaders(version string) map[string]string {
	mt := VersionMediaType(version)
	return map[string]string{"Accept": mt, "Content-Type": mt}
}
