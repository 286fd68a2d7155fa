package project

import (
	"fmt"

	"github.com/felixgeelhaar/jobflow/adapter/cli"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/commands"
	"github.com/felixgeelhaar/jobflow/internal/projects/application/queries"
	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	createOrder       string
	createType        string
	createLead        string
	createAssistant   string
	createDepartments []string
	createSample      bool
	createEmergency   bool
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new job",
	Long: `Create a new print job. Quotes start at "Quote Created", every other
type starts at "Order Confirmed".

Examples:
  jobflow project create "Annual Report" --order JOB-1042 --lead <user-id>
  jobflow project create "Banner reprint" --order JOB-1043 --type Emergency --department graphics,production
  jobflow project create "Catalog pricing" --order Q-220 --type Quote`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateProjectHandler == nil {
			return errNotInitialized
		}
		meta, err := app.ProjectMeta(cmd)
		if err != nil {
			return err
		}

		projectType := domain.ProjectType(createType)
		if !projectType.IsValid() {
			return fmt.Errorf("invalid type %q (Standard, Emergency, Quote, Corporate Job)", createType)
		}
		leadID, err := parseOptionalID(createLead, "lead")
		if err != nil {
			return err
		}
		if leadID == uuid.Nil {
			leadID = meta.Actor.ID
		}
		assistantID, err := parseOptionalID(createAssistant, "assistant")
		if err != nil {
			return err
		}
		var departments []domain.Department
		if len(createDepartments) > 0 {
			if departments, err = app.CanonicalDepartments(createDepartments); err != nil {
				return err
			}
		}

		project, err := app.CreateProjectHandler.Handle(cmd.Context(), commands.CreateProjectCommand{
			Meta:               meta,
			OrderNumber:        createOrder,
			Name:               args[0],
			Type:               projectType,
			LeadID:             leadID,
			AssistantID:        assistantID,
			Departments:        departments,
			SampleRequired:     createSample,
			CorporateEmergency: createEmergency,
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Project created.")
		printProject(out, queries.NewProjectDTO(project))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createOrder, "order", "", "order number (required)")
	createCmd.Flags().StringVarP(&createType, "type", "t", string(domain.ProjectTypeStandard), "project type: Standard, Emergency, Quote or Corporate Job")
	createCmd.Flags().StringVar(&createLead, "lead", "", "project lead user ID (defaults to the acting user)")
	createCmd.Flags().StringVar(&createAssistant, "assistant", "", "assistant user ID")
	createCmd.Flags().StringSliceVarP(&createDepartments, "department", "d", nil, "engaged departments")
	createCmd.Flags().BoolVar(&createSample, "sample", false, "require a physical sample before production")
	createCmd.Flags().BoolVar(&createEmergency, "corporate-emergency", false, "let a corporate job skip the pre-production billing gate")
	_ = createCmd.MarkFlagRequired("order")
}
