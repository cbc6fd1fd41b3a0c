package pagination

// DefaultVersion is the media type used when a request names no version.
const DefaultVersion = "application/json"

// FilterKind identifies the active member of a Filter.
type FilterKind int

const (
	// FilterNone means the resource is listed unfiltered.
	FilterNone FilterKind = iota

	// FilterCriteria is a JSON criteria filter sent as ?criteria={json}.
	FilterCriteria

	// FilterNamedQuery is a named query sent as ?{name}={json}.
	FilterNamedQuery

	// FilterMap is a pre-encoded query string such as "lastName=Smith".
	FilterMap
)

// String returns the filter kind name.
func (k FilterKind) String() string {
	switch k {
	case FilterCriteria:
		return "criteria"
	case FilterNamedQuery:
		return "named_query"
	case FilterMap:
		return "filter_map"
	default:
		return "none"
	}
}

// Filter is a tagged union: exactly one kind is active, and the zero value is FilterNone.
type Filter struct {
	kind  FilterKind
	name  string
	value string
}

// NoFilter returns the empty filter.
func NoFilter() Filter { return Filter{} }

// Criteria returns a criteria filter for the given JSON document.
func Criteria(json string) Filter {
	return Filter{kind: FilterCriteria, name: "criteria", value: json}
}

// NamedQuery returns a named query filter, e.g. NamedQuery("keywordSearch", `{"keywordSearch":"x"}`).
func NamedQuery(name, json string) Filter {
	return Filter{kind: FilterNamedQuery, name: name, value: json}
}

// FilterMapQuery returns a filter map built from an already encoded query string.
func FilterMapQuery(query string) Filter {
	return Filter{kind: FilterMap, value: query}
}

// Kind returns the active filter kind.
func (f Filter) Kind() FilterKind { return f.kind }

// Name returns the query parameter name for criteria and named query filters.
func (f Filter) Name() string { return f.name }

// Value returns the filter payload.
func (f Filter) Value() string { return f.value }

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool { return f.kind == FilterNone }

// Request describes one top-level fetch. It is a plain value: the With* methods
// return modified copies and never touch the receiver.
type Request struct {
	Resource string
	Version  string
	Filter   Filter

	// PageSize <= 0 means derive it from the first response.
	PageSize int
	// NumPages < 1 means unbounded.
	NumPages int
	// NumRows < 1 means unbounded.
	NumRows int
	// Offset < 1 means start at 0.
	Offset int
}

// NewRequest starts a request for the named resource.
func NewRequest(resource string) Request {
	return Request{Resource: resource}
}

// WithVersion sets the media type version.
func (r Request) WithVersion(version string) Request {
	r.Version = version
	return r
}

// WithFilter replaces whatever filter was set before.
func (r Request) WithFilter(f Filter) Request {
	r.Filter = f
	return r
}

// WithCriteria is shorthand for WithFilter(Criteria(json)).
func (r Request) WithCriteria(json string) Request {
	return r.WithFilter(Criteria(json))
}

// WithNamedQuery is shorthand for WithFilter(NamedQuery(name, json)).
func (r Request) WithNamedQuery(name, json string) Request {
	return r.WithFilter(NamedQuery(name, json))
}

// WithFilterMap is shorthand for WithFilter(FilterMapQuery(query)).
func (r Request) WithFilterMap(query string) Request {
	return r.WithFilter(FilterMapQuery(query))
}

// WithPageSize sets the requested page size.
func (r Request) WithPageSize(n int) Request {
	r.PageSize = n
	return r
}

// WithNumPages bounds the number of pages fetched.
func (r Request) WithNumPages(n int) Request {
	r.NumPages = n
	return r
}

// WithNumRows bounds the number of rows fetched.
func (r Request) WithNumRows(n int) Request {
	r.NumRows = n
	return r
}

// WithOffset sets the starting row offset.
func (r Request) WithOffset(n int) Request {
	r.Offset = n
	return r
}

// Build returns the request. It performs no validation.
func (r Request) Build() Request {
	return r
}

// normalized applies the version and offset defaults.
func (r Request) normalized() Request {
	if r.Version == "" {
		r.Version = DefaultVersion
	}
	if r.Offset < 1 {
		r.Offset = 0
	}
	return r
}
