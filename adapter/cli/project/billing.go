package project

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/spf13/cobra"
)

var (
	paymentType      string
	paymentReference string
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice [project-id]",
	Short: "Record that the invoice was sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.MarkInvoiceSentHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}

		result, err := app.MarkInvoiceSentHandler.Handle(cmd.Context(), commands.MarkInvoiceSentCommand{
			Meta:      meta,
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to record invoice: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Invoice marked as sent.")
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var paymentCmd = &cobra.Command{
	Use:   "payment [project-id]",
	Short: "Verify a payment",
	Long: `Record a verified payment against a job.

Examples:
  jobflow project payment <id> --type part_payment --reference TX-9931
  jobflow project payment <id> --type po --reference PO-2024-118`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.VerifyPaymentHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		pt := domain.PaymentType(paymentType)
		if !pt.IsValid() {
			return fmt.Errorf("invalid payment type %q (part_payment, full_payment, po, authorized)", paymentType)
		}

		result, err := app.VerifyPaymentHandler.Handle(cmd.Context(), commands.VerifyPaymentCommand{
			Meta:      meta,
			ProjectID: projectID,
			Type:      pt,
			Reference: paymentReference,
		})
		if err != nil {
			return fmt.Errorf("failed to verify payment: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Payment verified (%s).\n", pt)
		printDispatch(out, result.Dispatch)
		return nil
	},
}

func init() {
	paymentCmd.Flags().StringVarP(&paymentType, "type", "t", "", "payment type: part_payment, full_payment, po or authorized (required)")
	paymentCmd.Flags().StringVar(&paymentReference, "reference", "", "receipt, transfer or PO reference")
	_ = paymentCmd.MarkFlagRequired("type")
}
