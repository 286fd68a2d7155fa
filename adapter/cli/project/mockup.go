package project

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	"github.com/spf13/cobra"
)

var (
	mockupVersion      int
	mockupRejectReason string
	sampleRequired     bool
)

var mockupCmd = &cobra.Command{
	Use:   "mockup",
	Short: "Manage mockup versions and client approval",
}

var mockupUploadCmd = &cobra.Command{
	Use:   "upload [project-id] [file-url]",
	Short: "Upload a new mockup version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.UploadMockupHandler == nil {
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

		result, err := app.UploadMockupHandler.Handle(cmd.Context(), commands.UploadMockupCommand{
			Meta:      meta,
			ProjectID: projectID,
			FileURL:   args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to upload mockup: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mockup v%d uploaded.\n", result.Version)
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var mockupApproveCmd = &cobra.Command{
	Use:   "approve [project-id]",
	Short: "Record client approval of a mockup version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ApproveMockupHandler == nil {
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

		result, err := app.ApproveMockupHandler.Handle(cmd.Context(), commands.ApproveMockupCommand{
			Meta:      meta,
			ProjectID: projectID,
			Version:   mockupVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to approve mockup: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Mockup approved.")
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var mockupRejectCmd = &cobra.Command{
	Use:   "reject [project-id]",
	Short: "Record client rejection of a mockup version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.RejectMockupHandler == nil {
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

		result, err := app.RejectMockupHandler.Handle(cmd.Context(), commands.RejectMockupCommand{
			Meta:      meta,
			ProjectID: projectID,
			Version:   mockupVersion,
			Reason:    mockupRejectReason,
		})
		if err != nil {
			return fmt.Errorf("failed to reject mockup: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Mockup rejected.")
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Manage the physical sample requirement",
}

var sampleRequireCmd = &cobra.Command{
	Use:   "require [project-id]",
	Short: "Set whether a sample is required",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.SetSampleRequirementHandler == nil {
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

		result, err := app.SetSampleRequirementHandler.Handle(cmd.Context(), commands.SetSampleRequirementCommand{
			Meta:      meta,
			ProjectID: projectID,
			Required:  sampleRequired,
		})
		if err != nil {
			return fmt.Errorf("failed to update sample requirement: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Sample required: %t\n", sampleRequired)
		printDispatch(out, result.Dispatch)
		return nil
	},
}

var sampleApproveCmd = &cobra.Command{
	Use:   "approve [project-id]",
	Short: "Record sample approval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := getApp()
		if err != nil || app.ApproveSampleHandler == nil {
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

		result, err := app.ApproveSampleHandler.Handle(cmd.Context(), commands.ApproveSampleCommand{
			Meta:      meta,
			ProjectID: projectID,
		})
		if err != nil {
			return fmt.Errorf("failed to approve sample: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Sample approved.")
		printDispatch(out, result.Dispatch)
		return nil
	},
}

func init() {
	mockupApproveCmd.Flags().IntVar(&mockupVersion, "version", 0, "mockup version; must be the latest (required)")
	mockupRejectCmd.Flags().IntVar(&mockupVersion, "version", 0, "mockup version; must be the latest (required)")
	_ = mockupApproveCmd.MarkFlagRequired("version")
	_ = mockupRejectCmd.MarkFlagRequired("version")
	mockupRejectCmd.Flags().StringVarP(&mockupRejectReason, "reason", "r", "", "client feedback")
	mockupCmd.AddCommand(mockupUploadCmd)
	mockupCmd.AddCommand(mockupApproveCmd)
	mockupCmd.AddCommand(mockupRejectCmd)

	sampleRequireCmd.Flags().BoolVar(&sampleRequired, "required", true, "whether a sample is required")
	sampleCmd.AddCommand(sampleRequireCmd)
	sampleCmd.AddCommand(sampleApproveCmd)
}
