// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/siemspeak/internal/storage"
)

// JSONExporter writes the transcript as stored, so the file can be loaded
// back. Options are ignored.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(*Options) *JSONExporter {
	return &JSONExporter{}
}

// Export marshals t with indentation.
func (e *JSONExporter) Export(t *storage.Transcript) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	return json.MarshalIndent(t, "", "  ")
}

func (e *JSONExporter) FileExtension() string { return ".json" }
func (e *JSONExporter) MimeType() string      { return "application/json" }
