// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/config"
)

// Run starts the console on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, deps Deps) error {
	if deps.Backend == nil {
		return errors.New("console: no backend")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.SetSender(p.Send)

	if deps.ConfigPath != "" {
		_, err := config.Watch(ctx, deps.ConfigPath, func(c *config.Config) {
			p.Send(ConfigReloadedMsg{Config: c})
		}, logger.Named("config"))
		if err != nil {
			logger.Warn("config hot reload disabled", zap.Error(err))
		}
	}

	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
