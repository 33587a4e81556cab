package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmount interprets a cell as a monetary value. It accepts numeric types
// and strings with currency symbols and thousands separators. Missing,
// non-finite and unparseable values return ok=false.
func ParseAmount(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return ParseAmount(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := strings.TrimSpace(v)
		switch strings.ToLower(cleaned) {
		case "", "n/a", "na", "nan", "none", "null":
			return 0, false
		}
		cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// FormatAmount renders a value as a whole-dollar figure with thousands
// separators, rounding half away from zero. Anything unparseable renders as
// "N/A".
func FormatAmount(value any) string {
	amount, ok := ParseAmount(value)
	if !ok {
		return "N/A"
	}
	return "$" + groupThousands(int64(math.Round(amount)))
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// formatCount renders a row count with its noun.
func formatCount(n int, singular string, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
