package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
	"github.com/hannes/kiji-ner/pii/tagging"
	"github.com/hannes/kiji-ner/pii/tokenizer"
)

type tokenizeOptions struct {
	mentions []string
	asJSON   bool
}

// NewTokenizeCommand creates the tokenize command.
func NewTokenizeCommand(rootOpts *RootOptions) *cobra.Command {
	o := &tokenizeOptions{}

	cmd := &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Show the tokens and BIO labels for a sentence",
		Long: `Tokenize a sentence the way the dataset generator does and tag each
--mention TYPE=text. Mentions that cannot be located are reported and left
as O; mentions sharing a token are rejected.`,
		Example: `  kiji-ner tokenize "Client NRIC is S1234567D." --mention NRIC=S1234567D`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenize(cmd, args[0], o)
		},
	}

	cmd.Flags().StringArrayVarP(&o.mentions, "mention", "m", nil, "typed mention as TYPE=text (repeatable)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print a {tokens, ner_tags} record instead of a table")

	return cmd
}

// parseMention splits "TYPE=text" into its entity type and mention text.
func parseMention(raw string) (entities.EntityType, string, error) {
	name, text, ok := strings.Cut(raw, "=")
	if !ok || text == "" {
		return 0, "", fmt.Errorf("invalid mention %q: expected TYPE=text", raw)
	}
	t, err := entities.ParseEntityType(strings.TrimSpace(name))
	if err != nil {
		return 0, "", err
	}
	return t, text, nil
}

func runTokenize(cmd *cobra.Command, text string, o *tokenizeOptions) error {
	tokens := tokenizer.Tokenize(text)

	spans := make([]tagging.SpanTag, 0, len(o.mentions))
	for _, raw := range o.mentions {
		t, mention, err := parseMention(raw)
		if err != nil {
			return err
		}
		span := tagging.FindSpan(tokens, tokenizer.Tokenize(mention))
		if len(span) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  mention %q (%s) not found in tokens\n", mention, t)
			continue
		}
		spans = append(spans, tagging.SpanTag{Span: span, Type: t})
	}

	labels, err := tagging.TagSpans(tokens, spans)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.asJSON {
		data, err := json.Marshal(dataset.Example{Tokens: tokens, Labels: labels})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, tok := range tokens {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, tok, labels[i])
	}
	return tw.Flush()
}
