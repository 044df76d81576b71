// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter normalizes structured search inputs into a canonical,
// sparse filter set.
//
// Every edit rebuilds the set from the raw widget values; nothing is patched
// in place, so a key removed from the inputs can never linger. A key is
// present only when its value is non-empty.
//
// # Usage
//
//	mgr := filter.NewManager()
//	set := mgr.SetFromInputs(filter.RawInputs{
//		filter.KeySeverity:  "high",
//		filter.KeyTimeRange: "7d",
//	})
//	// set == {severity: "high", time_range: {days 7 relative}}
//
//	badge := filter.Describe(set) // 2
//	mgr.Reset()                   // {time_range: 24 hours relative}
//
// The formatting helpers (FormatCount, FormatTimeRange, FormatTimestamp,
// Summary) are shared with the result renderer.
package filter
