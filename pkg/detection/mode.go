package detection

import (
	"encoding/json"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Mode selects how the color mask is combined with the intensity masks.
type Mode int

const (
	ModeBrightCore Mode = iota // color ∧ bright core
	ModeGradient               // color ∧ gradient
	ModeHybrid                 // color ∧ (bright core ∨ gradient)
)

var modeNames = [...]string{"bright", "gradient", "hybrid"}

func (m Mode) valid() bool {
	return m >= ModeBrightCore && m <= ModeHybrid
}

func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

// ParseMode accepts a mode name or its number (0, 1, 2).
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name || s == fmt.Sprint(i) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("detection: unknown mode %q", s)
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("detection: mode must be a name or number")
		}
		s = fmt.Sprint(n)
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// needsBright and needsGradient let the pipeline skip masks a mode ignores.
func (m Mode) needsBright() bool   { return m == ModeBrightCore || m == ModeHybrid }
func (m Mode) needsGradient() bool { return m == ModeGradient || m == ModeHybrid }

// masks is the set of per-stage binary masks a combiner reads.
type masks struct {
	color, bright, gradient gocv.Mat
	scratch                 *gocv.Mat
}

// combiner writes the detection mask for one mode into dst.
type combiner func(in masks, dst *gocv.Mat)

var combiners = map[Mode]combiner{
	ModeBrightCore: func(in masks, dst *gocv.Mat) {
		gocv.BitwiseAnd(in.color, in.bright, dst)
	},
	ModeGradient: func(in masks, dst *gocv.Mat) {
		gocv.BitwiseAnd(in.color, in.gradient, dst)
	},
	ModeHybrid: func(in masks, dst *gocv.Mat) {
		gocv.BitwiseOr(in.bright, in.gradient, in.scratch)
		gocv.BitwiseAnd(in.color, *in.scratch, dst)
	},
}
