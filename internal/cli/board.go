package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskline/support-portal/internal/portal"
)

var (
	boardAs    string
	boardWatch bool
	boardView  viewFlags
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the Kanban board of a user",
	Long: `Print the three status lanes for the tickets visible to --as. With --watch
the board is redrawn whenever a ticket or notification changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := boardView.criteria()
		if err != nil {
			return err
		}
		sortState, err := boardView.sortState()
		if err != nil {
			return err
		}
		loc, err := boardView.location(cfg.App.Location())
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context(), boardWatch)
		if err != nil {
			return err
		}
		defer s.Close()

		actor, err := actingAs(cmd.Context(), s, boardAs)
		if err != nil {
			return err
		}

		initial := portal.NewState()
		initial.View = portal.ViewTickets
		initial.BoardMode = portal.ModeKanban
		initial.Criteria = criteria
		initial.Sort = sortState

		out := cmd.OutOrStdout()
		backend := &serviceBackend{actor: actor, tickets: s.services.Tickets, notifications: s.services.Notifications}
		var draw func(portal.State)
		if boardWatch {
			draw = func(st portal.State) { printBoard(out, st, loc) }
		}
		controller := portal.NewController(backend, initial, portal.WithLogger(logger), portal.OnChange(draw))

		if err := controller.Refresh(cmd.Context()); err != nil {
			return err
		}
		if err := controller.RefreshNotifications(cmd.Context()); err != nil {
			return err
		}
		if !boardWatch {
			printBoard(out, controller.State(), loc)
			return nil
		}
		return watch(cmd.Context(), s, controller, actor.ID)
	},
}

func watch(ctx context.Context, s *session, controller *portal.Controller, userID string) error {
	broker := s.services.Broker
	if broker == nil {
		return errors.New("board --watch needs a reachable redis (REDIS_ADDR)")
	}
	sub, err := broker.Subscribe(ctx, broker.TicketsChannel(), broker.NotificationsChannel(userID))
	if err != nil {
		return fmt.Errorf("subscribe to changes: %w", err)
	}
	defer sub.Close()
	if err := controller.Watch(ctx, sub.C); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func printBoard(w io.Writer, st portal.State, loc *time.Location) {
	now := time.Now().In(loc)
	fmt.Fprintln(w, renderBoard(portal.Derive(st, now, loc)))
	fmt.Fprintln(w, stamp(now))
}

func init() {
	boardCmd.Flags().StringVar(&boardAs, "as", "", "profile id whose board is shown")
	boardCmd.Flags().BoolVarP(&boardWatch, "watch", "w", false, "redraw on every change")
	boardView.register(boardCmd.Flags())
}
