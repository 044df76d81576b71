// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter normalizes structured search inputs into a canonical,
// sparse filter set.
package filter

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// RawInputs holds the raw widget values keyed by filter key. Values are the
// coded tokens the widgets produce ("24h", "high", "10-50", ...).
type RawInputs map[Key]string

// Translator maps one raw widget value to its canonical value. ok=false
// drops the key.
type Translator func(raw string) (value any, ok bool)

// emptySentinels are widget values meaning "unset".
var emptySentinels = map[string]bool{
	"":    true,
	"all": true,
	"any": true,
}

// IsEmptySentinel reports whether raw means "no constraint".
func IsEmptySentinel(raw string) bool {
	return emptySentinels[strings.ToLower(strings.TrimSpace(raw))]
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the current filter set.
type Manager struct {
	mu          sync.RWMutex
	current     Set
	translators map[Key]Translator
	logger      *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used to report dropped inputs.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTranslator overrides the translator for one key.
func WithTranslator(k Key, t Translator) Option {
	return func(m *Manager) {
		m.translators[k] = t
	}
}

// NewManager creates a manager holding the default set.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		current:     Default(),
		translators: defaultTranslators(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Default returns the canonical default set: the last 24 hours.
func Default() Set {
	return Set{KeyTimeRange: Relative(UnitHours, 24)}
}

// SetFromInputs rebuilds the filter set from scratch. Empty sentinels and
// values the key's translator rejects are dropped, never stored.
func (m *Manager) SetFromInputs(inputs RawInputs) Set {
	set := make(Set, len(inputs))
	for k, raw := range inputs {
		if IsEmptySentinel(raw) {
			continue
		}
		translate, ok := m.translators[k]
		if !ok {
			m.logger.Debug("dropping unknown filter key", zap.String("key", string(k)))
			continue
		}
		value, ok := translate(strings.TrimSpace(raw))
		if !ok {
			m.logger.Debug("dropping invalid filter value",
				zap.String("key", string(k)),
				zap.String("value", raw))
			continue
		}
		set[k] = value
	}

	m.mu.Lock()
	m.current = set
	m.mu.Unlock()
	return set.Clone()
}

// Reset restores and returns the default set.
func (m *Manager) Reset() Set {
	def := Default()
	m.mu.Lock()
	m.current = def
	m.mu.Unlock()
	return def.Clone()
}

// Current returns a copy of the last built set.
func (m *Manager) Current() Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// =============================================================================
// TRANSLATORS
// =============================================================================

func defaultTranslators() map[Key]Translator {
	return map[Key]Translator{
		KeyTimeRange: ParseTimeRange,
		KeySeverity:  parseSeverity,
		KeyEventType: parseLowerToken,
		KeyStatus:    parseStatus,
		KeySourceIP:  parseIP,
		KeyUser:      parseText,
		KeyCountry:   parseCountry,
		KeyRiskScore: ParseRiskRange,
		KeyKeywords:  parseKeywords,
	}
}

var timeTokenRe = regexp.MustCompile(`^(\d+)\s*(h|hr|hrs|hour|hours|d|day|days|w|week|weeks)$`)

// ParseTimeRange translates a window token ("1h", "24h", "7d", "2w") into a
// relative TimeRange. Weeks are expressed in days.
func ParseTimeRange(raw string) (any, bool) {
	m := timeTokenRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return nil, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return nil, false
	}
	switch m[2][0] {
	case 'h':
		return Relative(UnitHours, n), true
	case 'd':
		return Relative(UnitDays, n), true
	default:
		return Relative(UnitDays, n*7), true
	}
}

// riskLevels maps coded risk tokens to their intervals.
var riskLevels = map[string]RiskRange{
	"critical": {Low: 90, High: 100},
	"high":     {Low: 70, High: 100},
	"medium":   {Low: 40, High: 69},
	"low":      {Low: 0, High: 39},
}

// ParseRiskRange translates "high" style tokens or an explicit "lo-hi"
// interval into a RiskRange.
func ParseRiskRange(raw string) (any, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if rr, ok := riskLevels[token]; ok {
		return rr, true
	}

	lo, hi, found := strings.Cut(token, "-")
	if !found {
		return nil, false
	}
	low, err1 := strconv.Atoi(strings.TrimSpace(lo))
	high, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil {
		return nil, false
	}
	rr := RiskRange{Low: low, High: high}
	if !rr.Valid() {
		return nil, false
	}
	return rr, true
}

var severities = map[string]bool{"critical": true, "high": true, "medium": true, "low": true}

func parseSeverity(raw string) (any, bool) {
	s := strings.ToLower(raw)
	return s, severities[s]
}

func parseStatus(raw string) (any, bool) {
	switch strings.ToLower(raw) {
	case "failed", "failure", "fail":
		return "failed", true
	case "success", "successful", "succeeded":
		return "success", true
	}
	return nil, false
}

func parseIP(raw string) (any, bool) {
	ip := net.ParseIP(raw)
	if ip == nil {
		return nil, false
	}
	return ip.String(), true
}

func parseCountry(raw string) (any, bool) {
	if raw == "" {
		return nil, false
	}
	return strings.ToUpper(raw), true
}

func parseLowerToken(raw string) (any, bool) {
	if raw == "" {
		return nil, false
	}
	return strings.ToLower(raw), true
}

func parseText(raw string) (any, bool) {
	return raw, raw != ""
}

func parseKeywords(raw string) (any, bool) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}
