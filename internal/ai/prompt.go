package ai

import (
	"fmt"
	"strings"
)

// Categories the client knows how to render. Anything else is folded into "other".
var Categories = []string{"errands", "tools", "food", "transport", "childcare", "pets", "tech", "other"}

const suggestPrompt = `You help neighbors write posts for a local mutual-aid board.
A post is either a "request" (the author needs help) or an "offer" (the author can give help or lend something).

Read the draft and answer in exactly three lines:
$request$ or $offer$
title: <a short title, at most 60 characters, same language as the draft>
category: <one of %s>

No other text.`

func BuildSuggestPrompt() string {
	return fmt.Sprintf(suggestPrompt, strings.Join(Categories, ", "))
}
