// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
//
// A question is parsed into entities (time window, event category, outcome,
// IP addresses, VPN hint), turned into an Elasticsearch-style query that is
// returned alongside the result, and answered from a generated event set
// shaped like real attack traffic: brute force bursts from a few networks,
// port scans, exfiltration to foreign countries and malware alerts mixed
// into ordinary login noise.
//
// The backend keeps conversation history in memory and implements every
// collaborator interface the console consumes, so the console and the demo
// HTTP server can run without an external SIEM.
package demo
