// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"strings"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// categoryTypes maps a question's event category onto event types.
var categoryTypes = map[string][]string{
	"authentication": {TypeFailedLogin, TypeSuccessfulLogin, TypeBruteForceAttempt},
	"malware":        {TypeMalwareDetected},
}

// statusTypes maps an outcome onto the event types that carry it.
var statusTypes = map[string][]string{
	"failed":  {TypeFailedLogin, TypeBruteForceAttempt, TypeFirewallBlock},
	"success": {TypeSuccessfulLogin},
}

// criteria decides which generated events answer a request.
type criteria struct {
	set   filter.Set
	types map[string]bool
	vpn   bool
}

func newCriteria(set filter.Set) criteria {
	return criteria{set: set}
}

// fromEntities builds criteria for a parsed question.
func fromEntities(e Entities) criteria {
	c := criteria{set: e.FilterSet(), vpn: e.HasFilter("vpn")}
	if types, ok := categoryTypes[e.EventType]; ok {
		c.types = make(map[string]bool, len(types))
		for _, t := range types {
			c.types[t] = true
		}
	}
	return c
}

func (c criteria) shape() Shape {
	return Shape{SourceIP: c.set.String(filter.KeySourceIP), VPN: c.vpn}
}

// match reports whether rec satisfies every constraint. The time range is
// applied by the caller through generation bounds.
func (c criteria) match(rec model.EventRecord) bool {
	if c.types != nil && !c.types[rec.EventType] {
		return false
	}
	if c.vpn && !strings.Contains(strings.ToLower(rec.Message), "vpn") {
		return false
	}
	if v := c.set.String(filter.KeySeverity); v != "" && !strings.EqualFold(v, rec.Severity) {
		return false
	}
	if v := c.set.String(filter.KeyEventType); v != "" && !strings.EqualFold(v, rec.EventType) {
		return false
	}
	if v := c.set.String(filter.KeyStatus); v != "" && !contains(statusTypes[v], rec.EventType) {
		return false
	}
	if v := c.set.String(filter.KeySourceIP); v != "" && v != rec.SourceIP {
		return false
	}
	if v := c.set.String(filter.KeyUser); v != "" && !strings.EqualFold(v, rec.User) {
		return false
	}
	if v := c.set.String(filter.KeyCountry); v != "" && !strings.EqualFold(v, rec.Country) {
		return false
	}
	if r, ok := c.set.RiskRange(); ok && !r.Contains(rec.RiskScore) {
		return false
	}
	msg := strings.ToLower(rec.Message)
	for _, kw := range c.set.Keywords() {
		if !strings.Contains(msg, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
