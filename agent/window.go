package agent

import "github.com/tmc/langchaingo/llms"

// windowTurns keeps the system prompt and the last n user turns of history. A turn starts at
// a human message and runs until the next one, so tool calls stay with their responses.
// n < 1 keeps everything.
func windowTurns(history []llms.MessageContent, n int) []llms.MessageContent {
	if n < 1 || len(history) == 0 {
		return history
	}

	var starts []int
	for i, msg := range history {
		if msg.Role == llms.ChatMessageTypeHuman {
			starts = append(starts, i)
		}
	}
	if len(starts) <= n {
		return history
	}

	cut := starts[len(starts)-n]
	out := make([]llms.MessageContent, 0, len(history)-cut+1)
	for _, msg := range history[:cut] {
		if msg.Role == llms.ChatMessageTypeSystem {
			out = append(out, msg)
		}
	}
	return append(out, history[cut:]...)
}
