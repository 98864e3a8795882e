package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioTerm-Annotator/internal/application/annotator"
)

// NewDomainsCmd creates the domains command.
func NewDomainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the supported domains and their default ontologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			return PrintResult(cmd, domainsOutput(app.Service.Domains()))
		},
	}
}

type domainsOutput []annotator.DomainInfo

func (o domainsOutput) TableHeaders() []string {
	return []string{"Domain", "Ontologies"}
}

func (o domainsOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o))
	for _, d := range o {
		rows = append(rows, []string{d.Domain, strings.Join(d.Ontologies, ", ")})
	}
	return rows
}

func (o domainsOutput) String() string {
	var sb strings.Builder
	for _, d := range o {
		sb.WriteString(fmt.Sprintf("%-10s %s\n", d.Domain, strings.Join(d.Ontologies, ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}
