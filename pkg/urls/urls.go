// Package urls builds integration API URLs for a region or a custom base URL.
package urls

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
)

// Region identifies a hosted integration API deployment.
type Region string

const (
	RegionUS          Region = "us"
	RegionCanada      Region = "ca"
	RegionEurope      Region = "eu"
	RegionAsiaPacific Region = "ap"
	RegionSelfHosted  Region = "self_hosted"
)

const (
	defaultRegion = RegionUS

	apiPath     = "/api/"
	authPath    = "/auth"
	paramOffset = "offset"
	paramLimit  = "limit"
)

var regionBaseURLs = map[Region]string{
	RegionUS:          "https://integrate.elluciancloud.com",
	RegionCanada:      "https://integrate.elluciancloud.ca",
	RegionEurope:      "https://integrate.elluciancloud.ie",
	RegionAsiaPacific: "https://integrate.elluciancloud.com.au",
}

// ParseRegion converts a configuration value to a Region. Unknown values map to US.
func ParseRegion(s string) Region {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := regionBaseURLs[r]; ok || r == RegionSelfHosted {
		return r
	}
	return defaultRegion
}

// Builder builds URLs against one base URL.
type Builder struct {
	base string
}

// New returns a builder for the region. If baseURL is non-empty it overrides
// the region, which is how self-hosted deployments and tests are addressed.
func New(region Region, baseURL string) *Builder {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = regionBaseURLs[region]
		if base == "" {
			base = regionBaseURLs[defaultRegion]
		}
	}
	return &Builder{base: base}
}

// Base returns the base URL in use.
func (b *Builder) Base() string { return b.base }

// Auth returns the token exchange URL.
func (b *Builder) Auth() string {
	return b.base + authPath
}

// AuthWithExpiration returns the token exchange URL requesting a token lifetime in minutes.
func (b *Builder) AuthWithExpiration(minutes int) string {
	if minutes <= 0 {
		return b.Auth()
	}
	return b.Auth() + "?expirationMinutes=" + strconv.Itoa(minutes)
}

// API returns the listing URL for a resource.
func (b *Builder) API(resource string) string {
	return b.base + apiPath + url.PathEscape(resource)
}

// Paging returns the listing URL with offset and limit parameters.
func (b *Builder) Paging(resource string, offset, limit int) string {
	return b.API(resource) + "?" + pagingParams(offset, limit)
}

// Filter returns the listing URL carrying the filter's query.
func (b *Builder) Filter(resource string, f pagination.Filter) string {
	q := filterQuery(f)
	if q == "" {
		return b.API(resource)
	}
	return b.API(resource) + "?" + q
}

// FilterPaging returns the filtered listing URL with offset and limit parameters.
func (b *Builder) FilterPaging(resource string, f pagination.Filter, offset, limit int) string {
	q := filterQuery(f)
	if q == "" {
		return b.Paging(resource, offset, limit)
	}
	return b.API(resource) + "?" + q + "&" + pagingParams(offset, limit)
}

// Page returns the URL for one page query: the plain listing when Limit <= 0,
// otherwise the paged listing, filtered either way.
func (b *Builder) Page(q pagination.PageQuery) string {
	if q.Limit <= 0 {
		return b.Filter(q.Resource, q.Filter)
	}
	return b.FilterPaging(q.Resource, q.Filter, q.Offset, q.Limit)
}

func pagingParams(offset, limit int) string {
	if offset < 0 {
		offset = 0
	}
	return paramOffset + "=" + strconv.Itoa(offset) + "&" + paramLimit + "=" + strconv.Itoa(limit)
}

func filterQuery(f pagination.Filter) string {
	switch f.Kind() {
	case pagination.FilterCriteria, pagination.FilterNamedQuery:
		return url.QueryEscape(f.Name()) + "=" + url.QueryEscape(f.Value())
	case pagination.FilterMap:
		return strings.TrimPrefix(f.Value(), "?")
	default:
		return ""
	}
}
