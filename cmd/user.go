package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type userCmd struct {
	delete bool
}

func (*userCmd) Name() string     { return "user" }
func (*userCmd) Synopsis() string { return "show or delete the current user" }
func (*userCmd) Usage() string {
	return `finagle -u <name> user [-delete]

  Shows the user selected with -u (or FINAGLE_USER), creating it if needed.
  With -delete, the user and all its transactions are deleted.
`
}

func (c *userCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.delete, "delete", false, "Delete the user and all its transactions")
}

func (c *userCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, _, u, err := session(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	if c.delete {
		if err := st.DeleteUser(ctx, u.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting user %q: %v\n", u.Username, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(stdout, "Deleted user %q\n", u.Username)
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(stdout, "User %q (id %d), created %s\n", u.Username, u.ID, u.CreatedAt.Format("2006-01-02 15:04:05"))
	return subcommands.ExitSuccess
}
