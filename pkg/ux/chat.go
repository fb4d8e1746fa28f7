// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianAsk/services/chatsession"
	"github.com/AleutianAI/AleutianAsk/services/chatsession/datatypes"
)

// ChatUI renders chat session state to a terminal.
//
// Every method is a pure function of its arguments: the chat loop passes the
// latest snapshot and the UI never holds session state of its own.
type ChatUI interface {
	// Header displays the session banner.
	Header(st chatsession.State)

	// Prompt returns the styled input prompt string.
	Prompt() string

	// Empty displays the empty-conversation view with the example questions.
	Empty(examples []chatsession.Example)

	// Turn displays turn i: question, answer, citations and, when
	// showFollowups is set, the suggested follow-up questions.
	Turn(i int, turn chatsession.Turn, showFollowups bool)

	// Conversation displays every turn of st, or the empty view.
	Conversation(st chatsession.State)

	// Loading displays the pending question while a request is outstanding.
	Loading(question string)

	// Error displays a failed submission with the retry hint.
	Error(err error)

	// AnalysisPanel displays the panel of st when it is open.
	AnalysisPanel(st chatsession.State)

	// Settings displays the settings panel.
	Settings(s chatsession.Settings)

	// Info displays the information panel.
	Info()

	// Help lists the chat commands.
	Help()

	// Cleared confirms the conversation was cleared.
	Cleared()

	// SessionEnd displays the closing line.
	SessionEnd(st chatsession.State)
}

// terminalChatUI implements ChatUI for terminal output
type terminalChatUI struct {
	p           *Printer
	writer      io.Writer
	personality PersonalityLevel
}

// NewChatUI creates a ChatUI writing to stdout with the process personality.
func NewChatUI() ChatUI {
	return NewChatUIWithWriter(os.Stdout, GetPersonality())
}

// NewChatUIWithWriter creates a ChatUI with a custom writer (for testing)
func NewChatUIWithWriter(w io.Writer, personality PersonalityLevel) ChatUI {
	return &terminalChatUI{
		p:           NewPrinter(w, personality),
		writer:      w,
		personality: personality,
	}
}

func (u *terminalChatUI) write(format string, args ...any) {
	_, _ = fmt.Fprintf(u.writer, format, args...)
}

func (u *terminalChatUI) writeln(args ...any) {
	_, _ = fmt.Fprintln(u.writer, args...)
}

func (u *terminalChatUI) machine() bool {
	return u.personality == PersonalityMachine
}

// Header displays the session banner.
func (u *terminalChatUI) Header(st chatsession.State) {
	if u.machine() {
		u.write("CHAT_START: session=%s top=%d length=%d temp=%s\n",
			st.SessionID, st.Settings.RetrieveCount, st.Settings.ResponseLength,
			FormatTemp(st.Settings.ResponseTemp))
		return
	}
	if u.personality == PersonalityMinimal {
		u.write("Ask (session %s)\n", st.SessionID)
		u.writeln("Type 'exit' to end, '/help' for commands.")
		return
	}

	var content strings.Builder
	content.WriteString(Styles.Highlight.Render(string(IconAnchor) + " Chat with your data"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Folders: %s  Top: %s",
		Styles.Success.Render(folderLabel(st.Settings)),
		Styles.Success.Render(strconv.Itoa(st.Settings.RetrieveCount))))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Session: %s", Styles.Muted.Render(st.SessionID)))
	u.writeln(Styles.Box.Width(boxWidth).Render(content.String()))
	u.writeln()
	u.writeln(Styles.Muted.Render("Type 'exit' to end, '/help' for commands."))
	u.writeln()
}

// Prompt returns the styled input prompt string
func (u *terminalChatUI) Prompt() string {
	if u.machine() {
		return "> "
	}
	return Styles.Highlight.Render("> ")
}

// Empty displays the empty-conversation view with the example questions.
func (u *terminalChatUI) Empty(examples []chatsession.Example) {
	if u.machine() {
		for i, ex := range examples {
			u.write("EXAMPLE: %d %s\n", i+1, ex.Value)
		}
		return
	}
	if u.personality != PersonalityMinimal {
		u.writeln(Styles.Title.Render("Chat with your data"))
		u.writeln(Styles.Subtitle.Render("Ask anything or try an example"))
	}
	for i, ex := range examples {
		u.write("  %d. %s\n", i+1, ex.Text)
	}
	u.p.Muted("Use /example N to ask one.")
}

// Turn displays one turn.
func (u *terminalChatUI) Turn(i int, turn chatsession.Turn, showFollowups bool) {
	resp := turn.Response
	if u.machine() {
		u.write("QUESTION: %d %s\n", i, turn.Question)
		u.write("ANSWER: %d %s\n", i, resp.Answer)
		for _, c := range resp.Citations {
			u.write("CITATION: %d %s\n", i, c.ID)
		}
		if showFollowups {
			for k, f := range resp.FollowupQuestions {
				u.write("FOLLOWUP: %d %d %s\n", i, k+1, f)
			}
		}
		return
	}

	u.writeln()
	u.write("%s %s\n", Styles.Bold.Render(fmt.Sprintf("[%d] You:", i)), turn.Question)
	u.writeln()
	u.writeln(resp.Answer)

	if len(resp.Citations) > 0 {
		ids := make([]string, len(resp.Citations))
		for k, c := range resp.Citations {
			ids[k] = fmt.Sprintf("%d. %s", k+1, c.ID)
		}
		u.writeln()
		u.write("%s %s\n", Styles.Subtitle.Render("Citations:"), strings.Join(ids, "  "))
	}

	if showFollowups && len(resp.FollowupQuestions) > 0 {
		u.writeln(Styles.Subtitle.Render("Follow-up questions:"))
		for k, f := range resp.FollowupQuestions {
			u.write("  %s %d. %s\n", IconArrow.Render(), k+1, f)
		}
	}
}

// Conversation displays every turn of st, or the empty view.
func (u *terminalChatUI) Conversation(st chatsession.State) {
	if st.IsEmpty() && len(st.Turns) == 0 {
		u.Empty(chatsession.Examples())
		return
	}
	for i, t := range st.Turns {
		u.Turn(i, t, st.ShowFollowups(i))
	}
	if st.IsLoading {
		u.Loading(st.LastQuestion)
	}
	if err := st.Err(); err != nil {
		u.Error(err)
	}
}

// Loading displays the pending question while a request is outstanding.
func (u *terminalChatUI) Loading(question string) {
	if u.machine() {
		u.write("PENDING: %s\n", question)
		return
	}
	u.write("%s %s\n", Styles.Muted.Render("Generating answer for"), question)
}

// Error displays a failed submission with the retry hint.
func (u *terminalChatUI) Error(err error) {
	if u.machine() {
		u.write("CHAT_ERROR: %v\n", err)
		return
	}
	u.p.Error(err.Error())
	u.p.Muted("Use /retry to ask again.")
}

// AnalysisPanel displays the open tab for the selected turn.
func (u *terminalChatUI) AnalysisPanel(st chatsession.State) {
	turn, ok := st.SelectedTurn()
	if !ok {
		return
	}
	idx := st.Panel.SelectedTurn
	resp := turn.Response

	switch st.Panel.ActiveTab {
	case chatsession.TabCitation:
		if st.Panel.ActiveCitation == nil {
			u.p.Box(fmt.Sprintf("Citation (turn %d)", idx), "No citation selected. Use /cite TURN N.")
			return
		}
		u.p.Box(fmt.Sprintf("Citation (turn %d)", idx), citationDetail(*st.Panel.ActiveCitation))
	case chatsession.TabThoughtProcess:
		thoughts := resp.Thoughts
		if thoughts == "" {
			thoughts = "No thought process was returned."
		}
		u.p.Box(fmt.Sprintf("Thought process (turn %d)", idx), thoughts)
	case chatsession.TabSupportingContent:
		content := "No supporting content was returned."
		if len(resp.DataPoints) > 0 {
			lines := make([]string, len(resp.DataPoints))
			for k, dp := range resp.DataPoints {
				lines[k] = fmt.Sprintf("%s %s", IconBullet, dp)
			}
			content = strings.Join(lines, "\n")
		}
		u.p.Box(fmt.Sprintf("Supporting content (turn %d)", idx), content)
	}
}

// Settings displays the settings panel with segmented buttons for the
// response length and temperature.
func (u *terminalChatUI) Settings(s chatsession.Settings) {
	length := strconv.Itoa(s.ResponseLength)
	temp := FormatTemp(s.ResponseTemp)

	if u.machine() {
		u.write("SETTING: retrieve_count=%d\n", s.RetrieveCount)
		u.write("SETTING: response_length=%s\n", length)
		u.write("SETTING: response_temp=%s\n", temp)
		u.write("SETTING: folders=%s\n", folderLabel(s))
		u.write("SETTING: tags=%s\n", strings.Join(s.SelectedTags, ","))
		u.write("SETTING: user_persona=%s\n", s.UserPersona)
		u.write("SETTING: system_persona=%s\n", s.SystemPersona)
		u.write("SETTING: suggest_followup=%t\n", s.SuggestFollowup)
		return
	}

	rows := []string{
		fmt.Sprintf("%-22s %d", "Documents to retrieve", s.RetrieveCount),
		fmt.Sprintf("%-22s %s", ResponseLengthGroup.Name, ResponseLengthGroup.Render(length)),
		fmt.Sprintf("%-22s %s", ResponseTempGroup.Name, ResponseTempGroup.Render(temp)),
		fmt.Sprintf("%-22s %s", "Folders", folderLabel(s)),
		fmt.Sprintf("%-22s %s", "Tags", orNone(strings.Join(s.SelectedTags, ", "))),
		fmt.Sprintf("%-22s %s", "User persona", s.UserPersona),
		fmt.Sprintf("%-22s %s", "System persona", s.SystemPersona),
		fmt.Sprintf("%-22s %s", "Prompt template", orNone(s.PromptTemplate)),
		fmt.Sprintf("%-22s %s", "Exclude category", orNone(s.ExcludeCategory)),
		fmt.Sprintf("%-22s %t", "Semantic ranker", s.UseSemanticRanker),
		fmt.Sprintf("%-22s %t", "Semantic captions", s.UseSemanticCaptions),
		fmt.Sprintf("%-22s %t", "Suggest follow-ups", s.SuggestFollowup),
	}
	u.p.Box("Settings", strings.Join(rows, "\n"))
}

// Info displays the information panel.
func (u *terminalChatUI) Info() {
	u.p.Box("About", "Answers are generated from your indexed documents.\n"+
		"Citations name the source file and page. Use /thoughts and /support\n"+
		"to see how an answer was produced.")
}

// Help lists the chat commands.
func (u *terminalChatUI) Help() {
	u.p.Box("Commands", strings.Join([]string{
		"/retry                 ask the last question again",
		"/clear                 clear the conversation",
		"/regen TURN            ask the question of TURN again",
		"/cite TURN N           show citation N of TURN",
		"/thoughts TURN         toggle the thought process of TURN",
		"/support TURN          toggle the supporting content of TURN",
		"/tab TAB               switch tab for the selected turn",
		"/followup TURN K       ask follow-up question K of TURN",
		"/examples              list example questions",
		"/example N             ask example question N",
		"/settings              edit settings",
		"/config                show settings",
		"/info                  show the information panel",
		"/history               show the conversation",
		"exit                   end the chat",
	}, "\n"))
}

// Cleared confirms the conversation was cleared.
func (u *terminalChatUI) Cleared() {
	u.p.Success("Conversation cleared")
}

// SessionEnd displays the closing line.
func (u *terminalChatUI) SessionEnd(st chatsession.State) {
	if u.machine() {
		u.write("CHAT_END: session=%s turns=%d\n", st.SessionID, len(st.Turns))
		return
	}
	u.writeln()
	u.write("%s Session %s ended after %d turn(s).\n",
		IconAnchor.Render(), Styles.Muted.Render(st.SessionID), len(st.Turns))
}

func citationDetail(c datatypes.Citation) string {
	lines := []string{"ID: " + c.ID}
	if c.SourceFile != "" {
		lines = append(lines, "Source: "+c.SourceFile)
	}
	if c.PageNumber != "" {
		lines = append(lines, "Page: "+c.PageNumber)
	}
	return strings.Join(lines, "\n")
}

func folderLabel(s chatsession.Settings) string {
	if s.AllFoldersSelected() {
		return datatypes.FoldersAll
	}
	return strings.Join(s.SelectedFolders, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
