package estimator

import (
	"fmt"
	"math"
	"strings"
)

// ScaleQuantity rescales a quantity authored for servings to targetPeople. No rounding is applied.
func ScaleQuantity(base float64, targetPeople, servings int) float64 {
	return base * float64(targetPeople) / float64(servings)
}

// TimePolicy selects how preparation time grows with the batch size.
type TimePolicy string

const (
	// TimePolicyLinear scales time proportionally: round(base * people / servings).
	TimePolicyLinear TimePolicy = "linear"
	// TimePolicySquareRoot grows time with the square root of the ratio: ceil(base * sqrt(people / servings)).
	TimePolicySquareRoot TimePolicy = "sqrt"
)

// ParseTimePolicy accepts the configuration spelling of a policy. An empty value selects linear.
func ParseTimePolicy(raw string) (TimePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(TimePolicyLinear):
		return TimePolicyLinear, nil
	case string(TimePolicySquareRoot), "squareroot", "square_root":
		return TimePolicySquareRoot, nil
	default:
		return "", fmt.Errorf("%w: unknown time policy %q", ErrInvalidConfig, raw)
	}
}

// Scale returns the adjusted total time in whole minutes.
func (p TimePolicy) Scale(baseMinutes, targetPeople, servings int) int {
	if baseMinutes <= 0 || servings <= 0 {
		return 0
	}
	ratio := float64(targetPeople) / float64(servings)
	switch p {
	case TimePolicySquareRoot:
		return int(math.Ceil(float64(baseMinutes) * math.Sqrt(ratio)))
	default:
		return int(math.Round(float64(baseMinutes*targetPeople) / float64(servings)))
	}
}

func (p TimePolicy) String() string {
	if p == "" {
		return string(TimePolicyLinear)
	}
	return string(p)
}
