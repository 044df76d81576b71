// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter normalizes structured search inputs into a canonical,
// sparse filter set.
package filter

import (
	"encoding/json"
	"fmt"
	"sort"
)

// =============================================================================
// KEYS
// =============================================================================

// Key names one filter dimension. The set of keys is closed.
type Key string

const (
	KeyTimeRange Key = "time_range"
	KeySeverity  Key = "severity"
	KeyEventType Key = "event_type"
	KeyStatus    Key = "status"
	KeySourceIP  Key = "source_ip"
	KeyUser      Key = "user"
	KeyCountry   Key = "country"
	KeyRiskScore Key = "risk_score"
	KeyKeywords  Key = "keywords"
)

// Keys lists every filter key in display order.
var Keys = []Key{
	KeyTimeRange,
	KeySeverity,
	KeyEventType,
	KeyStatus,
	KeySourceIP,
	KeyUser,
	KeyCountry,
	KeyRiskScore,
	KeyKeywords,
}

// Valid reports whether k is one of the known keys.
func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// =============================================================================
// VALUE TYPES
// =============================================================================

// TimeUnit is the unit of a relative time window.
type TimeUnit string

const (
	UnitHours TimeUnit = "hours"
	UnitDays  TimeUnit = "days"
)

// TimeRange is a relative time window such as "last 7 days".
type TimeRange struct {
	Unit  TimeUnit `json:"unit"`
	Value int      `json:"value"`
	Type  string   `json:"type"`
}

// Relative builds a relative time range.
func Relative(unit TimeUnit, value int) TimeRange {
	return TimeRange{Unit: unit, Value: value, Type: "relative"}
}

// Valid reports whether the range has a known unit and a positive value.
func (t TimeRange) Valid() bool {
	return (t.Unit == UnitHours || t.Unit == UnitDays) && t.Value > 0
}

// Hours returns the window length in hours.
func (t TimeRange) Hours() int {
	if t.Unit == UnitDays {
		return t.Value * 24
	}
	return t.Value
}

// RiskRange is a closed risk-score interval, 0 <= Low <= High <= 100.
// It encodes on the wire as [low, high].
type RiskRange struct {
	Low  int
	High int
}

// Valid reports whether the interval is well formed.
func (r RiskRange) Valid() bool {
	return r.Low >= 0 && r.Low <= r.High && r.High <= 100
}

// Contains reports whether score falls inside the interval.
func (r RiskRange) Contains(score int) bool {
	return score >= r.Low && score <= r.High
}

// MarshalJSON encodes the range as a two-element array.
func (r RiskRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Low, r.High})
}

// UnmarshalJSON decodes a two-element array.
func (r *RiskRange) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("risk_score: %w", err)
	}
	*r = RiskRange{Low: pair[0], High: pair[1]}
	if !r.Valid() {
		return fmt.Errorf("risk_score: invalid interval [%d, %d]", r.Low, r.High)
	}
	return nil
}

// =============================================================================
// SET
// =============================================================================

// Set is the canonical filter set. Values are string for the scalar keys,
// TimeRange for KeyTimeRange, RiskRange for KeyRiskScore and []string for
// KeyKeywords. Absent keys mean unconstrained.
type Set map[Key]any

// Clone returns a copy that shares no slices with s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		if kw, ok := v.([]string); ok {
			v = append([]string(nil), kw...)
		}
		out[k] = v
	}
	return out
}

// Has reports whether k is constrained.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// String returns the scalar value for k, or "".
func (s Set) String(k Key) string {
	v, _ := s[k].(string)
	return v
}

// TimeRange returns the time window, if set.
func (s Set) TimeRange() (TimeRange, bool) {
	tr, ok := s[KeyTimeRange].(TimeRange)
	return tr, ok
}

// RiskRange returns the risk interval, if set.
func (s Set) RiskRange() (RiskRange, bool) {
	rr, ok := s[KeyRiskScore].(RiskRange)
	return rr, ok
}

// Keywords returns the keyword list, if set.
func (s Set) Keywords() []string {
	kw, _ := s[KeyKeywords].([]string)
	return kw
}

// SortedKeys returns the present keys in display order.
func (s Set) SortedKeys() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	order := make(map[Key]int, len(Keys))
	for i, k := range Keys {
		order[k] = i
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}

// UnmarshalJSON decodes the wire shape back into typed values. Unknown keys
// and empty values are dropped.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[Key]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Set, len(raw))
	for k, msg := range raw {
		switch k {
		case KeyTimeRange:
			var tr TimeRange
			if err := json.Unmarshal(msg, &tr); err != nil {
				return fmt.Errorf("time_range: %w", err)
			}
			if tr.Type == "" {
				tr.Type = "relative"
			}
			if tr.Valid() {
				out[k] = tr
			}
		case KeyRiskScore:
			var rr RiskRange
			if err := json.Unmarshal(msg, &rr); err != nil {
				return err
			}
			out[k] = rr
		case KeyKeywords:
			var kw []string
			if err := json.Unmarshal(msg, &kw); err != nil {
				return fmt.Errorf("keywords: %w", err)
			}
			if len(kw) > 0 {
				out[k] = kw
			}
		default:
			if !k.Valid() {
				continue
			}
			var v string
			if err := json.Unmarshal(msg, &v); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			if v != "" {
				out[k] = v
			}
		}
	}
	*s = out
	return nil
}

// Describe returns the number of active filter keys, used for badge text.
func Describe(s Set) int {
	return len(s)
}
