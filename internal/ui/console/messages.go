// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"github.com/jeranaias/siemspeak/internal/config"
)

// ConfigReloadedMsg delivers a config file change from the watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// fileWrittenMsg reports an export or save.
type fileWrittenMsg struct {
	What string
	Path string
	Err  error
}

// confirmClearID tags the clear confirmation dialog.
const confirmClearID = "clear"
