// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAsk/pkg/ux"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

func runSettingsCommand(cmd *cobra.Command, args []string) {
	ui := ux.NewChatUIWithWriter(cmd.OutOrStdout(), ux.GetPersonality())
	ui.Settings(appConfig.SessionSettings())
	ux.NewPrinter(cmd.OutOrStdout(), ux.GetPersonality()).Muted("Defaults from " + configPath)
}

func runExamplesCommand(cmd *cobra.Command, args []string) {
	ux.NewChatUIWithWriter(cmd.OutOrStdout(), ux.GetPersonality()).Empty(chatsession.Examples())
}
