package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/hobnob"
	"github.com/aretw0/hobnob/pkg/collab"
	"github.com/aretw0/hobnob/pkg/domain"
	"github.com/aretw0/hobnob/pkg/observability"
	"github.com/aretw0/hobnob/pkg/router"
)

var runCmd = &cobra.Command{
	Use:   "run <flow-file>",
	Short: "Execute a flow definition",
	Long: `Compiles the given flow definition and runs it against the OpenAI
collaborator (configured via OPENAI_* environment variables), asking
user_input questions on the terminal. The final state is printed to stdout
as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		def, err := loadFlow(args[0])
		if err != nil {
			return err
		}

		initial := domain.State{}
		if statePath, _ := cmd.Flags().GetString("state"); statePath != "" {
			data, err := os.ReadFile(statePath)
			if err != nil {
				return fmt.Errorf("reading initial state: %w", err)
			}
			if err := json.Unmarshal(data, &initial); err != nil {
				return fmt.Errorf("initial state is not a JSON object: %w", err)
			}
		}

		gen, err := collab.NewOpenAIFromEnv()
		if err != nil {
			return err
		}

		routers := router.NewRegistry()
		if enableLua, _ := cmd.Flags().GetBool("enable-lua"); enableLua {
			if err := routers.Enable(router.NameLua); err != nil {
				return err
			}
		}
		if defaultRouter, _ := cmd.Flags().GetString("router"); defaultRouter != "" {
			if err := routers.SetDefault(defaultRouter); err != nil {
				return err
			}
		}

		opts := []hobnob.Option{
			hobnob.WithGenerator(gen),
			hobnob.WithAsker(collab.NewConsole()),
			hobnob.WithRouters(routers),
			hobnob.WithLogger(logger),
			hobnob.WithOnStep(printStep(cmd)),
		}
		if maxSteps, _ := cmd.Flags().GetInt("max-steps"); maxSteps > 0 {
			opts = append(opts, hobnob.WithMaxSteps(maxSteps))
		}
		if forgiving, _ := cmd.Flags().GetBool("forgiving"); forgiving {
			opts = append(opts, hobnob.WithForgivingExtraction())
		}

		var metrics *observability.Metrics
		if addr, _ := cmd.Flags().GetString("metrics"); addr != "" {
			metrics = observability.New(prometheus.DefaultRegisterer)
			opts = append(opts, hobnob.WithHooks(metrics.Hooks()))

			r := chi.NewRouter()
			r.Handle("/metrics", promhttp.Handler())
			go func() {
				logger.Info("metrics server listening", "addr", addr)
				if err := http.ListenAndServe(addr, r); err != nil {
					logger.Error("metrics server stopped", "err", err)
				}
			}()
		}

		eng, err := hobnob.New(def, opts...)
		if err != nil {
			return err
		}

		res := eng.Run(cmd.Context(), initial)
		if metrics != nil {
			metrics.ObserveRun(res)
		}

		out, err := json.MarshalIndent(res.State, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if res.Outcome != domain.OutcomeCompleted {
			return fmt.Errorf("run ended %s: %w", res.Outcome, res.Err)
		}
		return nil
	},
}

// printStep writes a colored per-step trace to stderr, keeping stdout free
// for the final state.
func printStep(cmd *cobra.Command) func(string, domain.State) {
	output := termenv.NewOutput(os.Stderr)
	return func(name string, snapshot domain.State) {
		keys := make([]string, 0, len(snapshot))
		for k := range snapshot {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		header := output.String("── step: " + name).Bold().Foreground(output.Color("6"))
		fmt.Fprintln(cmd.ErrOrStderr(), header)
		for _, k := range keys {
			key := output.String(k).Foreground(output.Color("4"))
			fmt.Fprintf(cmd.ErrOrStderr(), "   %s = %v\n", key, snapshot[k])
		}
	}
}

func loadFlow(path string) (*domain.FlowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow definition: %w", err)
	}
	return domain.ParseFlow(data)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("state", "", "Path to a JSON file with the initial state")
	runCmd.Flags().Int("max-steps", 0, "Maximum step executions before the run fails")
	runCmd.Flags().Bool("forgiving", false, "Store unparseable responses under raw_response instead of failing")
	runCmd.Flags().Bool("enable-lua", false, "Enable the lua router (unsafe, trusted flows only)")
	runCmd.Flags().String("router", "", "Default router name (default: jmespath)")
	runCmd.Flags().String("metrics", "", "Serve prometheus metrics on this address (e.g. :2112)")
}
