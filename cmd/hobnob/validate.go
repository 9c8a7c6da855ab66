package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hobnob"
	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/router"
)

var validateCmd = &cobra.Command{
	Use:   "validate <flow-file>",
	Short: "Check a flow definition without running it",
	Long: `Parses and compiles the given flow definition, reporting every
structural violation at once: missing or duplicate steps, transitions that
reference unknown steps, unresolvable routers, unrecognized step kinds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadFlow(args[0])
		if err != nil {
			return err
		}

		routers := router.NewRegistry()
		if enableLua, _ := cmd.Flags().GetBool("enable-lua"); enableLua {
			if err := routers.Enable(router.NameLua); err != nil {
				return err
			}
		}

		// Compilation needs step units to exist, so stub collaborators stand
		// in for the real ones.
		_, err = hobnob.New(def,
			hobnob.WithGenerator(collab.NewMockGenerator(`{}`)),
			hobnob.WithAsker(collab.NewMockAsker("")),
			hobnob.WithRouters(routers),
		)
		if err != nil {
			var cerr *domain.CompileError
			if errors.As(err, &cerr) {
				for _, v := range cerr.Violations {
					fmt.Fprintln(cmd.ErrOrStderr(), "  -", v)
				}
			}
			return fmt.Errorf("%s: invalid flow", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d steps, %d transitions)\n",
			args[0], len(def.Steps), len(def.Transitions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("enable-lua", false, "Accept flows that route via the lua router")
}
