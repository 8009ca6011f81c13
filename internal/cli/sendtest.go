package cli

import (
	"encoding/json"
	"fmt"

	"taskpush/internal/config"
	"taskpush/internal/delivery"
	"taskpush/internal/infra/queue"

	"github.com/spf13/cobra"
)

func sendTestCommand(cfg *config.Config, rt Runtime) *cobra.Command {
	var (
		title string
		body  string
		tag   string
		raw   string
	)

	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Deliver a test push event to the local worker",
		Long: `Enqueue a push event for the local worker, as if it had arrived from the
push service. Omitted fields fall back to the worker's defaults.

Examples:
  pushctl send-test --title="Standup" --body="Starts in 5 minutes"
  pushctl send-test --raw='not json'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := []byte(raw)
			if raw == "" {
				fields := map[string]string{}
				for k, v := range map[string]string{"title": title, "body": body, "tag": tag} {
					if v != "" {
						fields[k] = v
					}
				}
				encoded, err := json.Marshal(fields)
				if err != nil {
					return fmt.Errorf("encoding payload: %w", err)
				}
				payload = encoded
			}

			enqueuer, closer, err := rt.Enqueuer(cfg)
			if err != nil {
				return err
			}
			defer closer.Close() //nolint:errcheck // best-effort close

			info, err := queue.EnqueuePushReceived(enqueuer, payload, cfg.Queue.MaxRetry)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s)\n", info.ID, delivery.TaskTypePushReceived)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "notification title")
	cmd.Flags().StringVar(&body, "body", "", "notification body")
	cmd.Flags().StringVar(&tag, "tag", "", "notification tag")
	cmd.Flags().StringVar(&raw, "raw", "", "send this payload verbatim instead of building one")
	return cmd
}

func clickCommand(cfg *config.Config, rt Runtime) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "click",
		Short: "Deliver a notification click to the local worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			enqueuer, closer, err := rt.Enqueuer(cfg)
			if err != nil {
				return err
			}
			defer closer.Close() //nolint:errcheck // best-effort close

			info, err := queue.EnqueueNotificationClick(enqueuer, delivery.Notification{Tag: tag}, cfg.Queue.MaxRetry)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s)\n", info.ID, delivery.TaskTypeNotificationClick)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "tag of the clicked notification")
	return cmd
}
