// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/viz"
)

// resultPane is the session sink. It tracks the entry being shown and keeps
// the chart registry in step with it.
type resultPane struct {
	viz    *viz.Manager
	logger *zap.Logger
	entry  *model.ConversationEntry
}

// Present shows entry and draws its charts.
func (p *resultPane) Present(entry *model.ConversationEntry) {
	p.entry = entry
	if entry == nil {
		return
	}
	if err := p.viz.RenderPayload(entry.Response); err != nil {
		p.logger.Warn("some charts failed to render", zap.Error(err))
	}
}

// ShowEmpty returns to the empty state. The session has already destroyed
// the charts.
func (p *resultPane) ShowEmpty() {
	p.entry = nil
}
