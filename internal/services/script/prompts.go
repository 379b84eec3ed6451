package script

import (
	"fmt"
	"strings"
)

// systemPrompt assembles the director's system instruction for one engine
// attempt. The budget numbers keep episode length predictable; the rules
// keep the output synthesizable.
func systemPrompt(req Request, targetScenes, targetWords int) string {
	var b strings.Builder

	b.WriteString("You are the script director for a church podcast. ")
	b.WriteString(fmt.Sprintf("Write a natural %d-minute conversation between these hosts:\n\n", req.Minutes))
	for _, p := range req.Profiles {
		b.WriteString(fmt.Sprintf("- %s (voice id %q): %s. Speaking style: %s. Expertise: %s.\n",
			p.Name, p.Voice, p.Personality, p.SpeakingStyle, p.Expertise))
		if len(p.Catchphrases) > 0 {
			b.WriteString(fmt.Sprintf("  Occasionally says things like: %s.\n", strings.Join(p.Catchphrases, "; ")))
		}
	}

	b.WriteString("\nRULES:\n")
	b.WriteString("1. Keep turns tight. No single turn should take more than 15 seconds to speak aloud.\n")
	b.WriteString("2. Balance participation so every host speaks a similar number of times.\n")
	b.WriteString("3. Never write the literal word \"pause\" in spoken text.\n")
	b.WriteString("4. No stage directions inside the spoken text.\n")

	rule := 5
	if req.Options.TheologicalRigor {
		b.WriteString(fmt.Sprintf("%d. Be theologically careful: quote scripture accurately and do not invent doctrine.\n", rule))
		rule++
	}
	if req.Options.AdvancedDialogue {
		b.WriteString(fmt.Sprintf("%d. Use realistic dialogue devices: brief reactions, questions that build on the previous turn, occasional gentle disagreement.\n", rule))
		rule++
	}
	if req.Options.Transitions {
		b.WriteString(fmt.Sprintf("%d. Include smooth topic transitions so the conversation has a clear arc.\n", rule))
		rule++
	}
	if req.Options.BackgroundCues {
		b.WriteString(fmt.Sprintf("%d. You may add short fx cues (like \"soft piano\") in the fx array, never in the spoken text.\n", rule))
		rule++
	}

	if req.Options.StructuredTimeline {
		b.WriteString(fmt.Sprintf("\nProduce about %d scenes.\n", targetScenes))
	} else {
		b.WriteString(fmt.Sprintf("\nProduce about %d words of dialogue in total.\n", targetWords))
	}

	b.WriteString("\nRespond with ONLY a JSON object, no prose and no markdown fences, shaped as:\n")
	b.WriteString(`{"title": string, "synopsis": string, "chapterMarkers": [{"t": seconds, "title": string}], "voices": [voice ids], "scenes": [{"t": seconds, "speaker": host name`)
	if req.Options.EmotionTags {
		b.WriteString(`, "emotion": one of excited|thoughtful|questioning|agreeing|surprised|passionate|concerned|amused`)
	}
	b.WriteString(`, "text": spoken line, "fx": [optional cues]}]}`)
	b.WriteString("\n")

	return b.String()
}

func userPrompt(req Request) string {
	return fmt.Sprintf("Topic: %s\n\nWrite the full conversation now.", req.Topic)
}
