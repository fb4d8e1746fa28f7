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
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/AleutianAI/AleutianAsk/pkg/ux"
	"github.com/AleutianAI/AleutianAsk/services/chatsession"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/handlers"
)

// errEditCancelled is returned when the user aborts the settings form.
var errEditCancelled = errors.New("settings edit cancelled")

// SettingsEditor asks the user for new settings values. The returned patch
// holds raw input; the session coerces it.
type SettingsEditor interface {
	Edit(current chatsession.Settings) (handlers.SettingsPatch, error)
}

// formSettingsEditor edits settings with a huh form.
type formSettingsEditor struct{}

// settingsFormValues are the form fields bound to huh inputs.
type settingsFormValues struct {
	retrieveCount   string
	responseLength  string
	responseTemp    string
	folders         string
	tags            string
	userPersona     string
	systemPersona   string
	promptTemplate  string
	excludeCategory string
	semanticRanker  bool
	semanticCaption bool
	suggestFollowup bool
}

func newSettingsFormValues(s chatsession.Settings) *settingsFormValues {
	folders := ""
	if !s.AllFoldersSelected() {
		folders = strings.Join(s.SelectedFolders, ", ")
	}
	return &settingsFormValues{
		retrieveCount:   strconv.Itoa(s.RetrieveCount),
		responseLength:  strconv.Itoa(s.ResponseLength),
		responseTemp:    ux.FormatTemp(s.ResponseTemp),
		folders:         folders,
		tags:            strings.Join(s.SelectedTags, ", "),
		userPersona:     s.UserPersona,
		systemPersona:   s.SystemPersona,
		promptTemplate:  s.PromptTemplate,
		excludeCategory: s.ExcludeCategory,
		semanticRanker:  s.UseSemanticRanker,
		semanticCaption: s.UseSemanticCaptions,
		suggestFollowup: s.SuggestFollowup,
	}
}

// patch converts the form values. An empty folder list selects all folders.
func (v *settingsFormValues) patch() handlers.SettingsPatch {
	folders := splitList(v.folders)
	if len(folders) == 0 {
		folders = []string{chatsession.FoldersSelectAll}
	}
	tags := splitList(v.tags)
	return handlers.SettingsPatch{
		RetrieveCount:       &v.retrieveCount,
		ResponseLength:      &v.responseLength,
		ResponseTemp:        &v.responseTemp,
		SelectedFolders:     &folders,
		SelectedTags:        &tags,
		UserPersona:         &v.userPersona,
		SystemPersona:       &v.systemPersona,
		PromptTemplate:      &v.promptTemplate,
		ExcludeCategory:     &v.excludeCategory,
		UseSemanticRanker:   &v.semanticRanker,
		UseSemanticCaptions: &v.semanticCaption,
		SuggestFollowup:     &v.suggestFollowup,
	}
}

func (formSettingsEditor) Edit(current chatsession.Settings) (handlers.SettingsPatch, error) {
	v := newSettingsFormValues(current)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Documents to retrieve").
				Description("1 to 50").
				Value(&v.retrieveCount),
			huh.NewSelect[string]().
				Title(ux.ResponseLengthGroup.Name).
				Options(huh.NewOptions(ux.ResponseLengthGroup.Values...)...).
				Value(&v.responseLength),
			huh.NewSelect[string]().
				Title(ux.ResponseTempGroup.Name).
				Options(huh.NewOptions(ux.ResponseTempGroup.Values...)...).
				Value(&v.responseTemp),
			huh.NewConfirm().
				Title("Suggest follow-up questions").
				Value(&v.suggestFollowup),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Folders").
				Description("Comma separated; empty searches all folders").
				Value(&v.folders),
			huh.NewInput().
				Title("Tags").
				Description("Comma separated").
				Value(&v.tags),
			huh.NewInput().
				Title("Exclude category").
				Value(&v.excludeCategory),
			huh.NewConfirm().
				Title("Use semantic ranker").
				Value(&v.semanticRanker),
			huh.NewConfirm().
				Title("Use semantic captions").
				Value(&v.semanticCaption),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("User persona").
				Value(&v.userPersona),
			huh.NewText().
				Title("System persona").
				Value(&v.systemPersona),
			huh.NewText().
				Title("Prompt template").
				Description("Overrides the prompt template of the answering service").
				Value(&v.promptTemplate),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return handlers.SettingsPatch{}, errEditCancelled
		}
		return handlers.SettingsPatch{}, err
	}
	return v.patch(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
