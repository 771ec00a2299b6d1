package transcript

import "strings"

// GroupTurns folds chronologically ordered tagged tokens into turns. A new
// turn opens whenever the speaker label changes. Tokens whose trimmed text is
// empty are skipped and never open, extend or close a turn.
func GroupTurns(tokens []TaggedToken) []Turn {
	turns := make([]Turn, 0)
	var (
		open bool
		cur  Turn
		text strings.Builder
	)

	closeTurn := func() {
		cur.Text = text.String()
		cur.Duration = RoundMillis(cur.End - cur.Start)
		turns = append(turns, cur)
	}

	for _, tok := range tokens {
		word := strings.TrimSpace(tok.Text)
		if word == "" {
			continue
		}

		if !open || cur.Speaker != tok.Speaker {
			if open {
				closeTurn()
			}
			cur = Turn{Speaker: tok.Speaker, Start: tok.Start, End: tok.End}
			text.Reset()
			text.WriteString(word)
			open = true
			continue
		}

		cur.End = tok.End
		text.WriteByte(' ')
		text.WriteString(word)
	}

	if open {
		closeTurn()
	}
	return turns
}
