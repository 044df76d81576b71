// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/jeranaias/siemspeak/internal/model"
)

// =============================================================================
// THREAT INTELLIGENCE
// =============================================================================

// Feed names of bundled indicator sources.
const (
	FeedCybercrimeTracker = "Cybercrime Tracker"
	FeedMalwareBazaar     = "MalwareBazaar"
)

// Indicator is a network block listed by a threat feed.
type Indicator struct {
	Prefix netip.Prefix
	Feed   string
	// Family is the malware family or campaign the block serves.
	Family string
}

// Technique is a MITRE ATT&CK technique.
type Technique struct {
	ID     string
	Name   string
	Tactic string
}

// ThreatIntel is an offline snapshot of indicator feeds and the ATT&CK
// technique behind each event type. It is read-only after construction.
type ThreatIntel struct {
	indicators []Indicator
	techniques map[string]Technique
}

// NewThreatIntel builds a snapshot. More specific prefixes win on lookup.
func NewThreatIntel(indicators []Indicator, techniques map[string]Technique) *ThreatIntel {
	sorted := append([]Indicator(nil), indicators...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Prefix.Bits() > sorted[j].Prefix.Bits()
	})
	return &ThreatIntel{indicators: sorted, techniques: techniques}
}

// DefaultThreatIntel returns the bundled snapshot. Its blocks cover the
// networks the generator uses for attack traffic.
func DefaultThreatIntel() *ThreatIntel {
	return NewThreatIntel([]Indicator{
		{Prefix: netip.MustParsePrefix("194.153.0.0/16"), Feed: FeedCybercrimeTracker, Family: "Emotet C2"},
		{Prefix: netip.MustParsePrefix("203.113.0.0/16"), Feed: FeedCybercrimeTracker, Family: "Mirai C2"},
		{Prefix: netip.MustParsePrefix("198.51.0.0/16"), Feed: FeedMalwareBazaar, Family: "AgentTesla"},
	}, map[string]Technique{
		TypeBruteForceAttempt:    {ID: "T1110", Name: "Brute Force", Tactic: "Credential Access"},
		TypeMalwareDetected:      {ID: "T1204", Name: "User Execution", Tactic: "Execution"},
		TypePrivilegeEscalation:  {ID: "T1068", Name: "Exploitation for Privilege Escalation", Tactic: "Privilege Escalation"},
		TypeDataExfiltration:     {ID: "T1041", Name: "Exfiltration Over C2 Channel", Tactic: "Exfiltration"},
		TypePortScan:             {ID: "T1046", Name: "Network Service Discovery", Tactic: "Discovery"},
		TypeSuspiciousConnection: {ID: "T1071", Name: "Application Layer Protocol", Tactic: "Command and Control"},
	})
}

// Lookup returns the indicator listing ip.
func (ti *ThreatIntel) Lookup(ip string) (Indicator, bool) {
	if ti == nil {
		return Indicator{}, false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Indicator{}, false
	}
	for _, ind := range ti.indicators {
		if ind.Prefix.Contains(addr) {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Technique returns the ATT&CK technique for an event type.
func (ti *ThreatIntel) Technique(eventType string) (Technique, bool) {
	if ti == nil {
		return Technique{}, false
	}
	t, ok := ti.techniques[eventType]
	return t, ok
}

// intelMatches summarises events whose source is a listed indicator.
type intelMatches struct {
	events  int
	sources map[string]bool
	feeds   map[string]bool
}

func (ti *ThreatIntel) match(events []model.EventRecord) intelMatches {
	m := intelMatches{sources: make(map[string]bool), feeds: make(map[string]bool)}
	for _, e := range events {
		ind, ok := ti.Lookup(e.SourceIP)
		if !ok {
			continue
		}
		m.events++
		m.sources[e.SourceIP] = true
		m.feeds[fmt.Sprintf("%s (%s)", ind.Feed, ind.Family)] = true
	}
	return m
}

// techniquesSeen lists the ATT&CK techniques seen in events, most frequent
// first.
func (ti *ThreatIntel) techniquesSeen(events []model.EventRecord) []string {
	counts := make(map[Technique]int)
	for _, e := range events {
		if t, ok := ti.Technique(e.EventType); ok {
			counts[t]++
		}
	}
	seen := make([]Technique, 0, len(counts))
	for t := range counts {
		seen = append(seen, t)
	}
	sort.Slice(seen, func(i, j int) bool {
		if counts[seen[i]] != counts[seen[j]] {
			return counts[seen[i]] > counts[seen[j]]
		}
		return seen[i].ID < seen[j].ID
	})

	out := make([]string, len(seen))
	for i, t := range seen {
		out[i] = fmt.Sprintf("%s %s", t.ID, t.Name)
	}
	return out
}

func sortedKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
