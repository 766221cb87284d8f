package slice

import (
	"strconv"
	"strings"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
)

// SelectAll is the selection expression matching every slice.
const SelectAll = "all"

// ParseSelection parses a selection expression against a set of n slices.
//
// The expression is a comma-separated list of indices and inclusive ranges
// ("0,2,5-7"), or "all". Whitespace around items is ignored. Indices keep the
// order in which they first appear; repeats are dropped.
//
// An empty expression selects nothing and returns an empty slice; callers
// decide whether that is an error.
func ParseSelection(expr string, n int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return []int{}, nil
	}
	if strings.EqualFold(expr, SelectAll) {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := make(map[int]bool)
	var out []int
	add := func(i int) error {
		if i < 0 || i >= n {
			return errs.New(errs.ErrCodeInvalidSelection, "index %d out of range [0,%d)", i, n)
		}
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
		return nil
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			i, err := strconv.Atoi(part)
			if err != nil {
				return nil, errs.New(errs.ErrCodeInvalidSelection, "invalid index %q", part)
			}
			if err := add(i); err != nil {
				return nil, err
			}
			continue
		}

		start, err1 := strconv.Atoi(strings.TrimSpace(lo))
		end, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			return nil, errs.New(errs.ErrCodeInvalidSelection, "invalid range %q", part)
		}
		if start > end {
			return nil, errs.New(errs.ErrCodeInvalidSelection, "range %q is reversed", part)
		}
		for i := start; i <= end; i++ {
			if err := add(i); err != nil {
				return nil, err
			}
		}
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}
