package docpager

const (
	// NoMaxLimit disables clamping of the requested limit.
	NoMaxLimit   = 0
	DefaultLimit = 10
)

// IsNormalizedLimitMax reports the effective limit for a requested one and
// whether it was accepted unchanged. A nil limit falls back to DefaultLimit,
// zero is kept (count-only request) and values above maxLimit are clamped
// unless maxLimit is NoMaxLimit.
func IsNormalizedLimitMax(limit *int, maxLimit int) (int, bool) {
	if limit == nil {
		return DefaultLimit, false
	} else if maxLimit != NoMaxLimit && *limit > maxLimit {
		return maxLimit, false
	}

	return *limit, true
}

func NormalizeLimitMax(limit *int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit *int) int {
	return NormalizeLimitMax(limit, NoMaxLimit)
}

// PageCount returns ceil(count/limit) with a minimum of one page.
// A non-positive limit yields a single page.
func PageCount(count int64, limit int) int {
	if limit <= 0 || count <= 0 {
		return 1
	}

	return int((count + int64(limit) - 1) / int64(limit))
}
