package pagination

// Strategy selects how the executor walks the resource.
type Strategy int

const (
	AllPages Strategy = iota
	ToNumPages
	FromOffset
	FromOffsetToNumPages
	ToNumRows
	FromOffsetToNumRows
)

var strategyNames = map[Strategy]string{
	AllPages:             "ALL_PAGES",
	ToNumPages:           "TO_NUM_PAGES",
	FromOffset:           "FROM_OFFSET",
	FromOffsetToNumPages: "FROM_OFFSET_TO_NUM_PAGES",
	ToNumRows:            "TO_NUM_ROWS",
	FromOffsetToNumRows:  "FROM_OFFSET_TO_NUM_ROWS",
}

// String returns the strategy name.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ResolveStrategy maps the presence of each bound to a strategy.
// Values below 1 count as absent. When both page and row bounds are set,
// the page bound wins.
func ResolveStrategy(offset, numPages, numRows int) Strategy {
	hasOffset := offset >= 1
	hasPages := numPages >= 1
	hasRows := numRows >= 1

	switch {
	case !hasOffset && !hasPages && !hasRows:
		return AllPages
	case !hasOffset && hasPages:
		return ToNumPages
	case hasOffset && !hasPages && !hasRows:
		return FromOffset
	case hasOffset && hasPages:
		return FromOffsetToNumPages
	case !hasOffset && hasRows:
		return ToNumRows
	default:
		return FromOffsetToNumRows
	}
}
