package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskline/support-portal/internal/spreadsheet"
	"github.com/deskline/support-portal/internal/ticketview"
)

var (
	exportAs   string
	exportOut  string
	exportView viewFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered ticket list to an .xlsx workbook",
	Long: `Export the tickets visible to --as, filtered and sorted the same way as
the portal list, into a spreadsheet with one row per ticket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := exportView.criteria()
		if err != nil {
			return err
		}
		sortState, err := exportView.sortState()
		if err != nil {
			return err
		}
		loc, err := exportView.location(cfg.App.Location())
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		actor, err := actingAs(cmd.Context(), s, exportAs)
		if err != nil {
			return err
		}
		tickets, err := s.services.Tickets.List(cmd.Context(), actor)
		if err != nil {
			return err
		}
		rows, err := ticketview.Project(ticketview.List(tickets, criteria, sortState, loc), loc)
		if errors.Is(err, ticketview.ErrNothingToExport) {
			fmt.Fprintln(cmd.OutOrStdout(), ticketview.NothingToExportMessage)
			return nil
		}
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = ticketview.ExportFileName(time.Now().In(loc))
		}
		if err := spreadsheet.SaveXLSX(out, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tickets to %s\n", len(rows), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportAs, "as", "", "profile id whose tickets are exported")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default chamados_export_<date>.xlsx)")
	exportView.register(exportCmd.Flags())
}
