// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"encoding/json"
	"time"
)

// QueryPageSize is the hit count the generated query asks for.
const QueryPageSize = 100

type object = map[string]any

// BuildQuery renders entities as an Elasticsearch query DSL document.
func BuildQuery(e Entities, now time.Time) object {
	var must, filters []any

	if e.Window != nil {
		start, end := e.Window.Bounds(now)
		filters = append(filters, object{
			"range": object{"@timestamp": object{
				"gte": start.Format(time.RFC3339),
				"lte": end.Format(time.RFC3339),
			}},
		})
	}

	switch e.EventType {
	case "authentication":
		must = append(must, object{"terms": object{"event.category": []string{"authentication"}}})
	case "malware":
		must = append(must, object{"terms": object{"event.category": []string{"malware"}}})
	}

	switch e.Status {
	case "failed":
		must = append(must, object{"terms": object{"event.outcome": []string{"failure"}}})
	case "success":
		must = append(must, object{"terms": object{"event.outcome": []string{"success"}}})
	}

	for _, ip := range e.IPs {
		must = append(must, object{"term": object{"source.ip": ip}})
	}

	boolQuery := object{
		"must":   nonNil(must),
		"filter": nonNil(filters),
	}
	if e.HasFilter("vpn") {
		boolQuery["should"] = []any{
			object{"wildcard": object{"service.name": "*vpn*"}},
			object{"wildcard": object{"network.transport": "*vpn*"}},
			object{"wildcard": object{"message": "*vpn*"}},
		}
		boolQuery["minimum_should_match"] = 1
	}

	return object{
		"query": object{"bool": boolQuery},
		"aggs": object{
			"top_ips": object{"terms": object{"field": "source.ip", "size": 10}},
			"timeline": object{"date_histogram": object{
				"field":          "@timestamp",
				"fixed_interval": "1h",
			}},
		},
		"size": QueryPageSize,
	}
}

// EncodeQuery marshals a query document. Marshalling plain maps cannot fail,
// so errors collapse to an empty document.
func EncodeQuery(q object) json.RawMessage {
	data, err := json.Marshal(q)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func nonNil(v []any) []any {
	if v == nil {
		return []any{}
	}
	return v
}
