package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/baseline/internal/cli/formatter"
	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/spf13/cobra"
)

func newRequestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage change requests",
	}
	cmd.AddCommand(
		newRequestSubmitCmd(app),
		newRequestListCmd(app),
		newRequestInspectCmd(app),
		newRequestApproveCmd(app),
		newRequestRejectCmd(app),
	)
	return cmd
}

func newRequestSubmitCmd(app *App) *cobra.Command {
	var changes []string
	var description, changeType, justification, timeline string
	var risk int

	cmd := &cobra.Command{
		Use:   "submit PROJECT",
		Short: "Submit a change request against a validated baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}

			fields := make([]domain.AffectedField, len(changes))
			for i, spec := range changes {
				field, value, ok := strings.Cut(spec, "=")
				if !ok || field == "" {
					return fmt.Errorf("invalid change %q (expected field=value)", spec)
				}
				fields[i] = domain.AffectedField{Field: field, NewValue: value}
			}

			req, err := app.Requests.Submit(ctx, projectID, fields, description,
				domain.RequestChangeType(changeType), justification, timeline, risk)
			if err != nil {
				return err
			}
			fmt.Printf("Submitted change request CR-%d (%s).\n", req.RequestNumber, req.ID[:8])
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&changes, "change", nil, "Field change as field=value (repeatable)")
	cmd.Flags().StringVar(&description, "description", "", "What the request changes and why")
	cmd.Flags().StringVar(&changeType, "type", "minor", "Change type: minor, major or critical")
	cmd.Flags().StringVar(&justification, "justification", "", "Justification recorded on the audit trail")
	cmd.Flags().StringVar(&timeline, "timeline", "", "Expected timeline impact, free text")
	cmd.Flags().IntVar(&risk, "risk", 0, "Risk level 0-10")
	_ = cmd.MarkFlagRequired("change")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newRequestListCmd(app *App) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the project's change requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			list := app.Requests.ListByProject
			if pendingOnly {
				list = app.Requests.ListPending
			}
			requests, err := list(ctx, projectID)
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				fmt.Println("No change requests.")
				return nil
			}
			fmt.Print(formatter.FormatRequestList(requests))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only open requests")
	return cmd
}

func newRequestInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect REQUEST_ID",
		Short: "Show change request details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := app.Requests.GetByID(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatRequest(req))
			return nil
		},
	}
}

func newRequestApproveCmd(app *App) *cobra.Command {
	var comments, expectedVersion string

	cmd := &cobra.Command{
		Use:   "approve REQUEST_ID",
		Short: "Approve a pending change request (mints a new baseline version)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := promptText(app, "Approval comments", comments)
			if err != nil {
				return err
			}
			if err := app.Requests.Approve(context.Background(), args[0], comments, expectedVersion); err != nil {
				return err
			}
			fmt.Println("Request approved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&comments, "comments", "", "Approval comments (required)")
	addExpectedVersionFlag(cmd.Flags(), &expectedVersion)
	return cmd
}

func newRequestRejectCmd(app *App) *cobra.Command {
	var reason, expectedVersion string

	cmd := &cobra.Command{
		Use:   "reject REQUEST_ID",
		Short: "Reject a pending change request (discards the proposed values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, err := promptText(app, "Rejection reason", reason)
			if err != nil {
				return err
			}
			if err := app.Requests.Reject(context.Background(), args[0], reason, expectedVersion); err != nil {
				return err
			}
			fmt.Println("Request rejected.")
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason (required)")
	addExpectedVersionFlag(cmd.Flags(), &expectedVersion)
	return cmd
}
