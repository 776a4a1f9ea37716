package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/reputation"
)

var publisherJSON bool

// publisherCmd represents the publisher command
var publisherCmd = &cobra.Command{
	Use:   "publisher <domain|url>",
	Short: "Show the reputation profile of a publisher",
	Long: `Publisher looks up a domain in the reputation table. Domains that are not
in the table get an estimated profile based on their top-level domain.

Example:
  factlens publisher reuters.com
  factlens publisher https://www.bbc.com/news/world --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPublisher,
}

func init() {
	rootCmd.AddCommand(publisherCmd)

	publisherCmd.Flags().BoolVar(&publisherJSON, "json", false, "print the profile as JSON")
}

func runPublisher(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table := reputation.NewTable(&cfg.Reputation)
	profile := table.Lookup(args[0])
	if profile.Domain == "" {
		return fmt.Errorf("not a domain or URL: %q", args[0])
	}
	insights := table.Insights(profile, nil, nil)

	if publisherJSON {
		return writeJSON("-", insights)
	}
	printPublisher(cmd.OutOrStdout(), insights, table.SourceScore(profile.Domain))
	return nil
}

func printPublisher(w io.Writer, insights model.SourceInsights, sourceScore int) {
	p := insights.Publisher

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "  %s (%s)\n", p.Name, p.Domain)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
	if !p.Known {
		fmt.Fprintln(w, "  Not in the reputation table; values are estimated.")
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  Credibility:        %d/100\n", p.CredibilityScore)
	fmt.Fprintf(w, "  Reputation:         %d/100\n", p.ReputationScore)
	fmt.Fprintf(w, "  Source score:       %d/100\n", sourceScore)
	fmt.Fprintf(w, "  Bias:               %s\n", p.Bias)
	fmt.Fprintf(w, "  Factual reporting:  %s\n", p.FactualReporting)
	if p.MediaBiasRating != "" {
		fmt.Fprintf(w, "  Media bias rating:  %s\n", p.MediaBiasRating)
	}
	if p.FoundedYear > 0 {
		fmt.Fprintf(w, "  Founded:            %d\n", p.FoundedYear)
	}
	if p.Headquarters != "" {
		fmt.Fprintf(w, "  Headquarters:       %s\n", p.Headquarters)
	}
	if len(p.PrimaryTopics) > 0 {
		fmt.Fprintf(w, "  Topics:             %s\n", strings.Join(p.PrimaryTopics, ", "))
	}
	fmt.Fprintf(w, "  Confidence:         %.0f%%\n", insights.Confidence*100)

	printList(w, "Warnings", insights.Warnings)
	printList(w, "Recommendations", insights.Recommendations)
	fmt.Fprintln(w)
}
