// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chatsession

import "slices"

// Example is a canned question offered on an empty conversation.
type Example struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

var examples = []Example{
	{
		Text:  "How can I apply the Te Aronui framework to my work?",
		Value: "How can I apply the Te Aronui framework to my work?",
	},
	{
		Text:  "Tell me about AUT's refund policy for international students.",
		Value: "Tell me about AUT's refund policy for international students.",
	},
	{
		Text:  "What is our external research revenue?",
		Value: "What is our external research revenue?",
	},
}

// Examples returns the built-in example questions.
func Examples() []Example {
	return slices.Clone(examples)
}
