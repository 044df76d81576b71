// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api defines the collaborator contracts the console consumes and
// the HTTP client that implements them against a siemspeak backend.
//
// # Key Types
//
//   - QuerySubmitter, Searcher, Suggester, HistoryLoader, HistoryClearer:
//     one interface per collaborator operation
//   - Backend: all five together
//   - Client: HTTP implementation of Backend
//   - ClientError: typed error carrying an ErrorType
//
// # Endpoints
//
//	POST /ask           {"question": "..."}        -> {"reply": payload, "generated_query": {...}}
//	POST /search        filter set                 -> {"total_count": n, "events": [...]}
//	GET  /suggest?q=... ->                            {"suggestions": [...]}
//	GET  /conversation  ->                            {"conversation": [{question, results, timestamp}]}
//	POST /clear         ->                            {"status": "cleared"}
//
// Failures are returned as {"error": "..."} with a non-2xx status.
//
// # Usage
//
//	client := api.NewClient(api.DefaultConfig())
//	payload, err := client.Submit(ctx, "show failed logins in the last 24 hours")
package api
