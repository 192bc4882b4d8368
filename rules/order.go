package rules

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// NeutralPriority is the execute-order priority of members no rule matches.
const NeutralPriority = 0

// ExecuteOrderRule assigns a population priority to matching members.
// Higher priorities are populated first.
type ExecuteOrderRule struct {
	desc     string
	priority int
	match    func(typeinfo.Member) bool
}

// NewExecuteOrderRule matches the member name declared on t.
func NewExecuteOrderRule(t reflect.Type, name string, priority int) (*ExecuteOrderRule, error) {
	if t == nil {
		return nil, types.ConfigurationError("execute order rule: type is required")
	}
	if name == "" {
		return nil, types.ConfigurationError("execute order rule for %s: member name is required", t)
	}
	return &ExecuteOrderRule{
		desc:     fmt.Sprintf("%s.%s", typeinfo.Indirect(t), name),
		priority: priority,
		match: func(m typeinfo.Member) bool {
			return m.MemberName() == name && ownerMatches(t, m.DeclaringType())
		},
	}, nil
}

// NewExecuteOrderPattern matches member names against pattern, case
// insensitively, on any type.
func NewExecuteOrderPattern(pattern string, priority int) (*ExecuteOrderRule, error) {
	if pattern == "" {
		return nil, types.ConfigurationError("execute order rule: pattern is required")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, types.ConfigurationError("execute order rule: %v", err)
	}
	return &ExecuteOrderRule{
		desc:     "/" + pattern + "/",
		priority: priority,
		match: func(m typeinfo.Member) bool {
			return re.MatchString(m.MemberName())
		},
	}, nil
}

// NewExecuteOrderTypeRule matches members whose declared type is memberType.
func NewExecuteOrderTypeRule(memberType reflect.Type, priority int) (*ExecuteOrderRule, error) {
	if memberType == nil {
		return nil, types.ConfigurationError("execute order rule: member type is required")
	}
	return &ExecuteOrderRule{
		desc:     "type " + memberType.String(),
		priority: priority,
		match: func(m typeinfo.Member) bool {
			return m.MemberType() == memberType
		},
	}, nil
}

// NewExecuteOrderFunc matches members the predicate accepts.
func NewExecuteOrderFunc(description string, match func(typeinfo.Member) bool, priority int) (*ExecuteOrderRule, error) {
	if match == nil {
		return nil, types.ConfigurationError("execute order rule %q: predicate is required", description)
	}
	return &ExecuteOrderRule{desc: description, priority: priority, match: match}, nil
}

// IsMatch reports whether the rule applies to m.
func (r *ExecuteOrderRule) IsMatch(m typeinfo.Member) bool {
	if m == nil {
		return false
	}
	return r.match(m)
}

// Priority returns the population priority.
func (r *ExecuteOrderRule) Priority() int {
	return r.priority
}

func (r *ExecuteOrderRule) String() string {
	return fmt.Sprintf("%s => %d", r.desc, r.priority)
}
