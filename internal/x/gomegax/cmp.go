package gomegax

import (
	"github.com/google/go-cmp/cmp"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// EqualCmp returns a matcher that succeeds if the actual value is equal to
// expected according to cmp.Equal() with the given options.
//
// Failure messages include the diff produced by cmp.Diff().
func EqualCmp(expected any, options ...cmp.Option) types.GomegaMatcher {
	return &cmpMatcher{expected, options}
}

type cmpMatcher struct {
	expected any
	options  cmp.Options
}

func (m *cmpMatcher) Match(actual any) (bool, error) {
	return cmp.Equal(m.expected, actual, m.options), nil
}

func (m *cmpMatcher) FailureMessage(actual any) string {
	return format.Message(actual, "to equal", m.expected) + m.diff(actual)
}

func (m *cmpMatcher) NegatedFailureMessage(actual any) string {
	return format.Message(actual, "not to equal", m.expected)
}

func (m *cmpMatcher) diff(actual any) string {
	d := cmp.Diff(m.expected, actual, m.options)
	return "\n\n(-expected +actual):\n" + format.IndentString(d, 1)
}
