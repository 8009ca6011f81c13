package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskpush/internal/config"
	"taskpush/internal/push"

	"github.com/spf13/cobra"
)

type operation func(c *push.Coordinator, ctx context.Context) (push.Status, error)

func statusCommand(cfg *config.Config, rt Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether this device has a push subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, cfg, rt, false, (*push.Coordinator).CheckStatus)
		},
	}
}

func subscribeCommand(cfg *config.Config, rt Runtime) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe this device to task reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, cfg, rt, watch, (*push.Coordinator).Subscribe)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "print every status change")
	return cmd
}

func unsubscribeCommand(cfg *config.Config, rt Runtime) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Remove this device's push subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, cfg, rt, watch, (*push.Coordinator).Unsubscribe)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "print every status change")
	return cmd
}

func runOperation(cmd *cobra.Command, cfg *config.Config, rt Runtime, watch bool, op operation) error {
	coord, closer, err := rt.Coordinator(cfg)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck // best-effort close

	out := cmd.OutOrStdout()

	var (
		watchID int
		done    chan struct{}
	)
	if watch {
		var changes <-chan push.Status
		watchID, changes = coord.Watch()
		done = make(chan struct{})
		go func() {
			defer close(done)
			for status := range changes {
				fmt.Fprintf(out, "-> %s\n", status)
			}
		}()
	}

	status, err := op(coord, cmd.Context())

	if watch {
		coord.Unwatch(watchID)
		<-done
	}

	if err != nil {
		return describe(out, err)
	}

	fmt.Fprintln(out, status)
	return nil
}

// describe prints the failure hint and returns err for the exit status.
func describe(out io.Writer, err error) error {
	var pushErr *push.Error
	if errors.As(err, &pushErr) {
		if hint := pushErr.Hint(); hint != "" {
			fmt.Fprintln(out, hint)
		}
	}
	return err
}
