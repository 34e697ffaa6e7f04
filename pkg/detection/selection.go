package detection

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Selection decides which accepted candidate becomes the frame's target.
type Selection int

const (
	// SelectMostCircular picks the highest circularity. Ties keep the earlier
	// candidate in contour order.
	SelectMostCircular Selection = iota

	// SelectLast picks the last accepted candidate in contour order.
	SelectLast
)

var selectionNames = [...]string{"most_circular", "last"}

func (s Selection) valid() bool {
	return s == SelectMostCircular || s == SelectLast
}

func (s Selection) String() string {
	if !s.valid() {
		return fmt.Sprintf("selection(%d)", int(s))
	}
	return selectionNames[s]
}

// ParseSelection accepts "most_circular" or "last".
func ParseSelection(v string) (Selection, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range selectionNames {
		if v == name {
			return Selection(i), nil
		}
	}
	return 0, fmt.Errorf("detection: unknown selection %q", v)
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("detection: selection must be a string")
	}
	parsed, err := ParseSelection(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// pick returns the index of the chosen candidate, or -1 for none.
func (s Selection) pick(cands []Candidate) int {
	if len(cands) == 0 {
		return -1
	}
	if s == SelectLast {
		return len(cands) - 1
	}
	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Circularity > cands[best].Circularity {
			best = i
		}
	}
	return best
}
