package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/store"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *options) *cobra.Command {
	var (
		planID   string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant about a plan's actions",
		Long:  `Send one question, with the plan's actions as context, to the configured AI provider and print the answer. The provider and API key come from the dashboard settings.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			prefs := store.LoadPreferences(e.store, e.logger)
			if provider != "" {
				if prefs.Provider, err = ai.ParseProvider(provider); err != nil {
					return err
				}
			}

			client, err := e.newClient(prefs)
			if errors.Is(err, ai.ErrMissingAPIKey) {
				return fmt.Errorf("%w: set the %s key in the dashboard settings", err, prefs.Provider.Label())
			}
			if err != nil {
				return err
			}

			_, actions, err := e.processed(planID)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conv := ai.NewConversation(e.logger)
			msg, err := conv.Ask(ctx, client, strings.Join(args, " "), actions)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.Content)
			return nil
		},
	}
	cmd.Flags().StringVarP(&planID, "plan", "p", "", "plan id (default: first plan)")
	cmd.Flags().StringVar(&provider, "provider", "", "override the saved provider: gemini or gpt")
	return cmd
}
