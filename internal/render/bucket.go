// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a response payload into a console view.
package render

import (
	"strings"

	"github.com/jeranaias/siemspeak/internal/ui/styles"
)

// Bucket is a fixed presentation class for a domain value.
type Bucket string

const (
	BucketHighest Bucket = styles.BucketHighest
	BucketHigh    Bucket = styles.BucketHigh
	BucketMedium  Bucket = styles.BucketMedium
	BucketLow     Bucket = styles.BucketLow
	BucketUnknown Bucket = styles.BucketUnknown
)

// RiskBucket maps a 0-100 risk score onto a bucket.
func RiskBucket(score int) Bucket {
	switch {
	case score >= 80:
		return BucketHighest
	case score >= 60:
		return BucketHigh
	case score >= 40:
		return BucketMedium
	default:
		return BucketLow
	}
}

var severityBuckets = map[string]Bucket{
	"critical": BucketHighest,
	"high":     BucketHigh,
	"medium":   BucketMedium,
	"low":      BucketLow,
}

// SeverityBucket maps a severity name onto a bucket. Unrecognized names land
// in BucketUnknown.
func SeverityBucket(severity string) Bucket {
	if b, ok := severityBuckets[strings.ToLower(strings.TrimSpace(severity))]; ok {
		return b
	}
	return BucketUnknown
}
