package main

import (
	"strings"

	"github.com/spf13/cobra"

	"copydesk/internal/service/analysis"
	"copydesk/internal/service/editor/sanitizer"
)

var (
	prettyOutput bool
	plainOutput  bool
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file]",
	Short: "Normalize generated HTML the way the editor loads it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		out := sanitizer.Sanitize(html)
		if prettyOutput {
			out = sanitizer.PrettyPrint(out)
		}
		cmd.Println(out)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish-preview [file]",
	Short: "Show the body that publishing would send to the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		if plainOutput {
			cmd.Println(strings.TrimSpace(analysis.NewContentAnalyzer().PlainText(html)))
			return nil
		}
		cmd.Println(analysis.NewPublishPolicy().Sanitize(html))
		return nil
	},
}

var wordsCmd = &cobra.Command{
	Use:   "words [file]",
	Short: "Count the words of a description",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		cmd.Println(analysis.NewContentAnalyzer().CountWords(html))
		return nil
	},
}

func init() {
	sanitizeCmd.Flags().BoolVar(&prettyOutput, "pretty", false, "indent the result one tag per line")
	publishCmd.Flags().BoolVar(&plainOutput, "plain", false, "strip all tags, as for seo content")

	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(wordsCmd)
}
