package xhs

import "fmt"

// FilterSelection is the user-facing search filter choice. Each field is
// either empty ("do not apply this filter") or one of the fixed label set
// for its group.
type FilterSelection struct {
	// SortBy: 综合|最新|最多点赞|最多评论|最多收藏
	SortBy string `json:"sort_by,omitempty" yaml:"sort_by"`
	// NoteType: 不限|视频|图文
	NoteType string `json:"note_type,omitempty" yaml:"note_type"`
	// PublishTime: 不限|一天内|一周内|半年内
	PublishTime string `json:"publish_time,omitempty" yaml:"publish_time"`
	// SearchScope: 不限|已看过|未看过|已关注
	SearchScope string `json:"search_scope,omitempty" yaml:"search_scope"`
	// Location: 不限|同城|附近
	Location string `json:"location,omitempty" yaml:"location"`
}

// IsZero reports whether no filter field is set
func (s FilterSelection) IsZero() bool {
	return s == FilterSelection{}
}

// InternalFilterOption is the platform's index-based representation of one
// filter choice. GroupIndex selects the filter row in the control panel,
// OptionIndex the tag within the row; both are 1-based.
type InternalFilterOption struct {
	GroupIndex  int
	OptionIndex int
	Label       string
}

// Selector returns the DOM selector of the option's control element
func (o InternalFilterOption) Selector() string {
	return fmt.Sprintf("div.filter-panel div.filters:nth-child(%d) div.tags:nth-child(%d)", o.GroupIndex, o.OptionIndex)
}

// FilterErrorKind classifies a filter translation or validation failure
type FilterErrorKind string

const (
	// UnknownOption means a label was not found in its filter group
	UnknownOption FilterErrorKind = "unknown_option"
	// OutOfRange means an internally-constructed index falls outside the table
	OutOfRange FilterErrorKind = "out_of_range"
)

// FilterError is the only error a harvest surfaces to the caller as a hard
// failure. It aborts the search before any filter control is touched,
// because a partially applied filter set would silently skew results.
type FilterError struct {
	Kind  FilterErrorKind
	Group int
	Label string
}

func (e *FilterError) Error() string {
	switch e.Kind {
	case UnknownOption:
		return fmt.Sprintf("unknown filter option %q in group %d (%s)", e.Label, e.Group, groupNames[e.Group])
	case OutOfRange:
		return fmt.Sprintf("filter option index out of range in group %d", e.Group)
	default:
		return fmt.Sprintf("invalid filter option in group %d", e.Group)
	}
}

// filterGroupCount is the number of filter groups the control panel exposes
const filterGroupCount = 5

// filterTable maps every group to its ordered option labels. Option index 1
// is always the platform default for the group.
var filterTable = map[int][]string{
	1: {"综合", "最新", "最多点赞", "最多评论", "最多收藏"},
	2: {"不限", "视频", "图文"},
	3: {"不限", "一天内", "一周内", "半年内"},
	4: {"不限", "已看过", "未看过", "已关注"},
	5: {"不限", "同城", "附近"},
}

var groupNames = map[int]string{
	1: "sort",
	2: "note type",
	3: "publish time",
	4: "search scope",
	5: "location",
}

// TranslateFilters maps a selection onto its internal index pairs, in
// ascending group order. The order matters downstream: the control panel's
// layout changes after each selection, so options must be applied in the
// order the groups appear.
//
// Any unknown label fails the whole translation; partial filter application
// is never attempted.
func TranslateFilters(selection FilterSelection) ([]InternalFilterOption, error) {
	groups := []struct {
		value string
		index int
	}{
		{selection.SortBy, 1},
		{selection.NoteType, 2},
		{selection.PublishTime, 3},
		{selection.SearchScope, 4},
		{selection.Location, 5},
	}

	var options []InternalFilterOption
	for _, group := range groups {
		if group.value == "" {
			continue
		}
		option, err := findInternalOption(group.index, group.value)
		if err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	return options, nil
}

// findInternalOption looks up a label within one filter group
func findInternalOption(groupIndex int, label string) (InternalFilterOption, error) {
	labels, ok := filterTable[groupIndex]
	if !ok {
		return InternalFilterOption{}, &FilterError{Kind: UnknownOption, Group: groupIndex, Label: label}
	}

	for i, candidate := range labels {
		if candidate == label {
			return InternalFilterOption{GroupIndex: groupIndex, OptionIndex: i + 1, Label: label}, nil
		}
	}

	return InternalFilterOption{}, &FilterError{Kind: UnknownOption, Group: groupIndex, Label: label}
}

// ValidateFilterOption re-checks that an option's indices fall inside the
// table. This guards internally-constructed options, not just user input:
// an out-of-range index would select the wrong control element without any
// visible failure.
func ValidateFilterOption(option InternalFilterOption) error {
	if option.GroupIndex < 1 || option.GroupIndex > filterGroupCount {
		return &FilterError{Kind: OutOfRange, Group: option.GroupIndex, Label: option.Label}
	}

	labels := filterTable[option.GroupIndex]
	if option.OptionIndex < 1 || option.OptionIndex > len(labels) {
		return &FilterError{Kind: OutOfRange, Group: option.GroupIndex, Label: option.Label}
	}

	return nil
}
