// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/siemspeak/internal/model"
)

// Event types produced by the generator.
const (
	TypeFailedLogin          = "failed_login"
	TypeSuccessfulLogin      = "successful_login"
	TypeMalwareDetected      = "malware_detected"
	TypeFirewallBlock        = "firewall_block"
	TypePrivilegeEscalation  = "privilege_escalation"
	TypeDataExfiltration     = "data_exfiltration"
	TypePortScan             = "port_scan"
	TypeBruteForceAttempt    = "brute_force_attempt"
	TypeSuspiciousConnection = "suspicious_connection"
)

// EventTypes lists every generated event type.
var EventTypes = []string{
	TypeFailedLogin, TypeSuccessfulLogin, TypeMalwareDetected, TypeFirewallBlock,
	TypePrivilegeEscalation, TypeDataExfiltration, TypePortScan,
	TypeBruteForceAttempt, TypeSuspiciousConnection,
}

// Severities lists the generated severities, most severe first.
var Severities = []string{"critical", "high", "medium", "low"}

// Countries lists the generated source countries.
var Countries = []string{"US", "UK", "DE", "FR", "JP", "CN", "IN", "BR", "AU", "CA", "RU", "KR", "NL", "SG"}

var (
	firstNames = []string{"john", "jane", "mike", "sara", "david", "lisa", "robert", "emily", "michael", "susan"}
	lastNames  = []string{"smith", "johnson", "williams", "brown", "jones", "miller", "davis", "garcia", "rodriguez", "wilson"}

	bruteForceNets   = []string{"182.162.", "194.153.", "203.113."}
	bruteForceUsers  = []string{"admin", "root", "service-account"}
	portScanNets     = []string{"198.51.", "203.0.", "192.0.2."}
	exfilCountries   = []string{"CN", "RU", "KR"}
	userPopulation   = 150
	normalShare      = 0.7
	successfulLogins = 0.8
)

// Shape pins fields of generated events.
type Shape struct {
	// SourceIP, when set, is used as every event's source address.
	SourceIP string
	// VPN marks login traffic as arriving over the VPN gateway.
	VPN bool
}

// Generator produces synthetic security events. It is safe for concurrent
// use and deterministic for a given seed.
type Generator struct {
	mu    sync.Mutex
	src   *rand.ChaCha8
	rng   *rand.Rand
	users []string
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	g := &Generator{src: src, rng: rand.New(src)}

	g.users = make([]string, userPopulation)
	for i := range g.users {
		g.users[i] = fmt.Sprintf("%s.%s%d", pick(g.rng, firstNames), pick(g.rng, lastNames), i)
	}
	return g
}

// Event generates one event with a timestamp in [start, end].
func (g *Generator) Event(start, end time.Time, shape Shape) model.EventRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	attack := g.rng.Float64() >= normalShare
	var rec model.EventRecord
	if attack {
		rec = g.attack()
	} else {
		rec = g.normal()
	}

	span := end.Sub(start)
	offset := time.Duration(0)
	if span > 0 {
		offset = time.Duration(g.rng.Int64N(int64(span)))
	}
	rec.Timestamp = start.Add(offset).UTC().Truncate(time.Second)

	if shape.SourceIP != "" {
		rec.SourceIP = shape.SourceIP
	}
	g.finish(&rec, attack)
	if shape.VPN && isLogin(rec.EventType) {
		rec.Message += " via VPN gateway"
	}

	if id, err := uuid.NewRandomFromReader(g.src); err == nil {
		rec.ID = id.String()
	}
	return rec
}

// normal is ordinary login traffic.
func (g *Generator) normal() model.EventRecord {
	if g.rng.Float64() < successfulLogins {
		return model.EventRecord{
			EventType: TypeSuccessfulLogin,
			User:      pick(g.rng, g.users),
			Severity:  "low",
			RiskScore: between(g.rng, 1, 30),
		}
	}
	return model.EventRecord{
		EventType: TypeFailedLogin,
		User:      pick(g.rng, g.users),
		Severity:  "medium",
		RiskScore: between(g.rng, 31, 60),
	}
}

// attack is one event from a known attack pattern.
func (g *Generator) attack() model.EventRecord {
	switch g.rng.IntN(4) {
	case 0:
		return model.EventRecord{
			EventType: TypeBruteForceAttempt,
			User:      pick(g.rng, bruteForceUsers),
			Severity:  "high",
			RiskScore: between(g.rng, 70, 95),
			SourceIP:  fmt.Sprintf("%s%d.%d", pick(g.rng, bruteForceNets), between(g.rng, 1, 255), between(g.rng, 1, 255)),
		}
	case 1:
		return model.EventRecord{
			EventType: TypePortScan,
			User:      "unknown",
			Severity:  "medium",
			RiskScore: between(g.rng, 60, 80),
			SourceIP:  fmt.Sprintf("%s%d.%d", pick(g.rng, portScanNets), between(g.rng, 1, 255), between(g.rng, 1, 255)),
		}
	case 2:
		return model.EventRecord{
			EventType: TypeDataExfiltration,
			User:      pick(g.rng, g.users),
			Severity:  "critical",
			RiskScore: between(g.rng, 80, 100),
			Country:   pick(g.rng, exfilCountries),
			BytesSent: int64(between(g.rng, 1_000_000, 50_000_000)),
		}
	}

	generic := []struct {
		kind     string
		severity string
		lo, hi   int
	}{
		{TypeMalwareDetected, "critical", 85, 100},
		{TypeFirewallBlock, "high", 70, 90},
		{TypePrivilegeEscalation, "high", 75, 95},
		{TypeSuspiciousConnection, "medium", 60, 80},
	}
	a := generic[g.rng.IntN(len(generic))]
	return model.EventRecord{
		EventType: a.kind,
		User:      pick(g.rng, g.users),
		Severity:  a.severity,
		RiskScore: between(g.rng, a.lo, a.hi),
	}
}

// finish fills addresses, country, byte counts and the message.
func (g *Generator) finish(rec *model.EventRecord, isAttack bool) {
	if rec.SourceIP == "" {
		if isAttack && g.rng.Float64() < 0.7 {
			rec.SourceIP = fmt.Sprintf("%d.%d.%d.%d", between(g.rng, 1, 223), g.rng.IntN(256), g.rng.IntN(256), between(g.rng, 1, 254))
		} else {
			rec.SourceIP = fmt.Sprintf("10.%d.%d.%d", g.rng.IntN(256), g.rng.IntN(256), between(g.rng, 1, 254))
		}
	}
	rec.DestinationIP = fmt.Sprintf("192.168.%d.%d", between(g.rng, 1, 255), between(g.rng, 1, 254))

	if rec.Country == "" {
		if isAttack && g.rng.Float64() < 0.6 {
			rec.Country = pick(g.rng, Countries[1:])
		} else {
			rec.Country = pick(g.rng, Countries)
		}
	}
	if rec.BytesSent == 0 {
		rec.BytesSent = int64(g.rng.IntN(100_001))
	}
	rec.BytesReceived = int64(g.rng.IntN(50_001))
	rec.Message = g.message(rec)
}

func (g *Generator) message(rec *model.EventRecord) string {
	switch rec.EventType {
	case TypeFailedLogin:
		return fmt.Sprintf("Failed authentication attempt for user %s from %s", rec.User, rec.SourceIP)
	case TypeSuccessfulLogin:
		return fmt.Sprintf("Successful login for user %s from %s", rec.User, rec.SourceIP)
	case TypeMalwareDetected:
		return fmt.Sprintf("Potential malware activity detected from %s", rec.SourceIP)
	case TypeFirewallBlock:
		return fmt.Sprintf("Firewall blocked connection attempt from %s to port %d", rec.SourceIP, between(g.rng, 1000, 9999))
	case TypePrivilegeEscalation:
		return fmt.Sprintf("Privilege escalation attempt detected for user %s", rec.User)
	case TypeDataExfiltration:
		return fmt.Sprintf("Large data transfer (%d bytes) detected from %s to %s", rec.BytesSent, rec.SourceIP, rec.Country)
	case TypePortScan:
		return fmt.Sprintf("Port scanning activity detected from %s", rec.SourceIP)
	case TypeBruteForceAttempt:
		return fmt.Sprintf("Multiple failed login attempts from %s targeting user %s", rec.SourceIP, rec.User)
	case TypeSuspiciousConnection:
		return fmt.Sprintf("Suspicious network connection from %s to internal resource", rec.SourceIP)
	}
	return "Security event detected"
}

// Between returns a uniform integer in [lo, hi] from the generator.
func (g *Generator) Between(lo, hi int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return between(g.rng, lo, hi)
}

func isLogin(eventType string) bool {
	return eventType == TypeFailedLogin || eventType == TypeSuccessfulLogin || eventType == TypeBruteForceAttempt
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
