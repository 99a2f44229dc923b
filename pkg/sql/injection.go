package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on a bind
// parameter value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Position    int    // 0-based position of the parameter that failed the check
	Value       any    // The value that was checked
}

// CheckParameterForInjection uses libinjection to detect SQL injection
// patterns in a bind parameter value.
//
// Values are always passed as bind parameters, so an injection pattern here
// cannot change the statement; the check exists to flag and log hostile
// drafted plans before they ever reach the store.
//
// Only string values are checked - numbers, booleans, and other types cannot
// contain SQL injection patterns and will return nil (no injection detected).
func CheckParameterForInjection(position int, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			Position:    position,
			Value:       value,
		}
	}

	return nil
}

// CheckAllParameters validates all bind parameter values for SQL injection
// attempts. Returns a result for each parameter that failed the check, or an
// empty slice if all parameters are clean.
func CheckAllParameters(args []any) []InjectionCheckResult {
	var results []InjectionCheckResult
	for i, arg := range args {
		if result := CheckParameterForInjection(i, arg); result != nil {
			results = append(results, *result)
		}
	}
	return results
}
