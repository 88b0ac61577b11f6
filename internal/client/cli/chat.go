package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Suggestions are the starter prompts offered on the welcome screen.
var Suggestions = []string{
	"What's in a Mojito?",
	"Give me a recipe for an Old Fashioned",
	"What's a good cocktail with tequila?",
	"Tell me about the history of the Martini",
}

// Ask sends text as the next chat turn. With empty text the message is read
// from the terminal, possibly spanning several lines.
func (a *App) Ask(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		var err error
		text, err = getMultiline(a.reader, "Your message", a.out)
		if err != nil {
			return err
		}
	}

	if !a.conversation.Send(ctx, text) {
		if a.conversation.Busy() {
			fmt.Fprintln(a.out, a.renderer.Notice("Still waiting for the previous answer."))
		} else {
			fmt.Fprintln(a.out, a.renderer.Notice("Nothing to send."))
		}
	}
	return nil
}

// Suggest lists the starter prompts, or sends the one numbered in args.
func (a *App) Suggest(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printSuggestions()
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(Suggestions) {
		fmt.Fprintf(a.out, "Usage: suggest [1-%d]\n", len(Suggestions))
		return fmt.Errorf("invalid suggestion %q", args[0])
	}
	return a.Ask(ctx, Suggestions[n-1])
}

// History re-renders the whole conversation.
func (a *App) History(context.Context) error {
	fmt.Fprintln(a.out, a.renderer.Conversation(a.conversation.Messages()))
	return nil
}

func (a *App) printSuggestions() {
	fmt.Fprintln(a.out, "Try asking:")
	for i, s := range Suggestions {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, s)
	}
}
