package dom

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChainExhausted means none of the selectors of a Chain matched.
var ErrChainExhausted = errors.New("selector chain exhausted")

// Chain is an ordered list of alternative selectors for one field. The site
// renames its utility classes often, so every field carries its known variants.
type Chain []string

// First returns the element matched by the first selector that hits, together
// with that selector.
func (c Chain) First(scope Element) (Element, string, error) {
	for _, sel := range c {
		el, err := scope.Query(sel)
		if err == nil {
			return el, sel, nil
		}
		if !IsNotFound(err) {
			return nil, sel, fmt.Errorf("query %q: %w", sel, err)
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrChainExhausted, c)
}

// Text returns the trimmed text of the first match.
func (c Chain) Text(scope Element) (string, error) {
	el, _, err := c.First(scope)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c Chain) String() string {
	return strings.Join(c, " | ")
}
