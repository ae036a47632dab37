package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/service"
)

var (
	operator   string
	userSearch string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and change user profiles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles, optionally filtered by name or e-mail",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		profiles, err := s.services.Profiles.List(cmd.Context(), operatorProfile(), userSearch)
		if err != nil {
			return err
		}
		printProfiles(cmd.OutOrStdout(), profiles)
		return nil
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <ADMIN|USER>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := roleInput(args[1])
		if err != nil {
			return err
		}
		return updateProfile(cmd, args[0], input)
	},
}

var usersSetActiveCmd = &cobra.Command{
	Use:   "set-active <user-id> <true|false>",
	Short: "Activate or deactivate a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := activeInput(args[1])
		if err != nil {
			return err
		}
		return updateProfile(cmd, args[0], input)
	},
}

func updateProfile(cmd *cobra.Command, id string, input service.ProfileUpdateInput) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	updated, err := s.services.Profiles.UpdateAsOperator(cmd.Context(), operator, id, input)
	if err != nil {
		return err
	}
	printProfiles(cmd.OutOrStdout(), []domain.Profile{*updated})
	return nil
}

func roleInput(raw string) (service.ProfileUpdateInput, error) {
	role := domain.Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return service.ProfileUpdateInput{}, fmt.Errorf("role must be ADMIN or USER, got %q", raw)
	}
	return service.ProfileUpdateInput{Role: &role}, nil
}

func activeInput(raw string) (service.ProfileUpdateInput, error) {
	active, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return service.ProfileUpdateInput{}, fmt.Errorf("expected true or false, got %q", raw)
	}
	return service.ProfileUpdateInput{IsActive: &active}, nil
}

// operatorProfile stands in for an administrator session.
func operatorProfile() *domain.Profile {
	return &domain.Profile{Name: operator, Role: domain.RoleAdmin, IsActive: true}
}

func printProfiles(w io.Writer, profiles []domain.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	for _, p := range profiles {
		state := "active"
		if !p.IsActive {
			state = "inactive"
		}
		fmt.Fprintf(w, "%-36s  %-5s  %-8s  %s <%s>\n", p.ID, p.Role, state, p.Name, p.Email)
	}
}

func init() {
	usersCmd.PersistentFlags().StringVar(&operator, "operator", "", "name recorded as the author of the change")
	usersListCmd.Flags().StringVar(&userSearch, "search", "", "filter by name or e-mail")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSetRoleCmd)
	usersCmd.AddCommand(usersSetActiveCmd)
}
