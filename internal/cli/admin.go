package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/service"
)

func newAdminCmd(opts *options) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var password string
	createCmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create an admin (password from --password or the first line of stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given: use --password or pipe it on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			svc, closeDB, err := opts.adminService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			a, err := svc.CreateAdmin(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %q (id %d)\n", a.Username, a.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&password, "password", "", "Password for the new admin")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List admins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := opts.adminService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			admins, err := svc.ListAdmins(cmd.Context())
			if err != nil {
				return err
			}
			if len(admins) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No admins.")
				return nil
			}
			for _, a := range admins {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-20s  %s\n", a.ID, a.Username, a.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an admin; their questions are kept without an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid admin id %q", args[0])
			}

			svc, closeDB, err := opts.adminService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := svc.DeleteAdmin(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted admin %d\n", id)
			return nil
		},
	}

	adminCmd.AddCommand(createCmd, listCmd, deleteCmd)
	return adminCmd
}

// adminService opens the database and builds an AdminService without a token
// service; the CLI never issues tokens.
func (o *options) adminService(cmd *cobra.Command) (*service.AdminService, func(), error) {
	db, err := o.openDB()
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewAdminService(db, db, auth.NewPasswordService(), nil, o.logger(cmd))
	return svc, func() { db.Close() }, nil
}
