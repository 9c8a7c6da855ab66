package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hobnob"
	"github.com/aretw0/hobnob/pkg/collab"
)

var genCmd = &cobra.Command{
	Use:   "gen <description>",
	Short: "Draft a flow definition from a natural-language description",
	Long: `Asks the OpenAI collaborator to draft a flow definition for the
given description and prints it as JSON. The draft is parsed but not
compiled; run "hobnob validate" on the saved file before executing it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := collab.NewOpenAIFromEnv()
		if err != nil {
			return err
		}

		def, err := hobnob.FromPrompt(cmd.Context(), gen, args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringP("output", "o", "", "Write the drafted flow to this file instead of stdout")
}
