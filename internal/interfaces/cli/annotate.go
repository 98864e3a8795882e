package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/internal/application/annotator"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// NewAnnotateCmd creates the annotate command.
func NewAnnotateCmd() *cobra.Command {
	var (
		domain        string
		ontologies    []string
		minConfidence float64
		noFallback    bool
	)

	cmd := &cobra.Command{
		Use:   "annotate <term>...",
		Short: "Annotate biomedical terms with ontology concepts",
		Long:  "Run one or more terms through the matching cascade and print the fused\nmatch list per term.  Multiple terms are annotated concurrently.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cliCtx, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			var useFallback *bool
			if noFallback {
				f := false
				useFallback = &f
			}
			var minConf *float64
			if cmd.Flags().Changed("min-confidence") {
				if minConfidence < 0 || minConfidence > 1 {
					return errors.New(errors.ErrCodeAnnotationInvalidThreshold,
						fmt.Sprintf("min-confidence must be in [0, 1], got %g", minConfidence))
				}
				minConf = &minConfidence
			}

			var results []*annotation.Result
			if len(args) == 1 {
				res, err := app.Service.Annotate(ctx, &annotator.AnnotateInput{
					Text:          args[0],
					Domain:        domain,
					Ontologies:    ontologies,
					UseFallback:   useFallback,
					MinConfidence: minConf,
				})
				if err != nil {
					return err
				}
				results = []*annotation.Result{res}
			} else {
				results, err = app.Service.AnnotateBatch(ctx, &annotator.BatchInput{
					Texts:         args,
					Domain:        domain,
					Ontologies:    ontologies,
					UseFallback:   useFallback,
					MinConfidence: minConf,
				})
				if err != nil {
					return err
				}
			}

			return PrintResult(cmd, annotateOutput(results))
		},
	}

	cmd.Flags().StringVarP(&domain, "domain", "d", "", "restrict matching to one domain (disease, chemical, gene, phenotype, anatomy, organism)")
	cmd.Flags().StringSliceVar(&ontologies, "ontologies", nil, "explicit ontology codes to search (overrides the domain defaults)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "confidence floor in [0, 1] (default from config)")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "skip the fallback registry stage")

	return cmd
}

// annotateOutput renders annotation results for the three output formats.
type annotateOutput []*annotation.Result

func (o annotateOutput) TableHeaders() []string {
	return []string{"Term", "Term ID", "Label", "Ontology", "Match Type", "Confidence"}
}

func (o annotateOutput) TableRows() [][]string {
	var rows [][]string
	for _, res := range o {
		if len(res.Matches) == 0 {
			rows = append(rows, []string{res.InputText, "-", "-", "-", "-", "-"})
			continue
		}
		for _, m := range res.Matches {
			rows = append(rows, []string{
				res.InputText,
				m.TermID,
				truncate(m.Label, 40),
				m.Ontology,
				string(m.MatchType),
				colorizeConfidence(m.Confidence),
			})
		}
	}
	return rows
}

func (o annotateOutput) String() string {
	var sb strings.Builder
	for i, res := range o {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s (%d matches)\n", res.InputText, len(res.Matches)))
		for _, m := range res.Matches {
			sb.WriteString(fmt.Sprintf("  %-18s %-9s %s  %s [%s]\n",
				m.TermID, string(m.MatchType), colorizeConfidence(m.Confidence), m.Label, m.Ontology))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
