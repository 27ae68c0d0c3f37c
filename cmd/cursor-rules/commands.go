package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printError(msg string) {
	fmt.Println(errorStyle.Render("Error: " + msg))
}

type deployRequest struct {
	TargetDir  string `json:"target_dir"`
	Technology string `json:"technology,omitempty"`
}

type deployResponse struct {
	Success    bool   `json:"success"`
	Technology string `json:"technology"`
	RulesCount int    `json:"rules_count"`
	TargetDir  string `json:"target_dir"`
}

func newDeployCmd(serverURL *string) *cobra.Command {
	var (
		target     string
		technology string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy rules to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			absTarget, err := filepath.Abs(target)
			if err != nil {
				return fmt.Errorf("resolving target directory: %w", err)
			}

			fmt.Printf("Deploying rules to %s...\n", target)
			var result deployResponse
			req := deployRequest{TargetDir: absTarget, Technology: technology}
			if err := newAPIClient(*serverURL).post("/deploy", req, &result); err != nil {
				return err
			}

			fmt.Println(successStyle.Render(fmt.Sprintf(
				"Successfully deployed %d rules for %s.", result.RulesCount, result.Technology)))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", ".", "Target project directory")
	cmd.Flags().StringVar(&technology, "technology", "", "Technology to deploy rules for (auto-detected if omitted)")

	return cmd
}

type fileContextRequest struct {
	FilePath    string `json:"file_path"`
	FileType    string `json:"file_type,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
}

type ruleSummary struct {
	ID         string `json:"id"`
	Technology string `json:"technology"`
	Version    string `json:"version"`
}

type ruleSetResponse struct {
	Rules []ruleSummary `json:"rules"`
	Total int           `json:"total"`
}

func newGetRulesCmd(serverURL *string) *cobra.Command {
	var (
		file        string
		projectType string
	)

	cmd := &cobra.Command{
		Use:   "get-rules",
		Short: "Get the rules that apply to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Getting rules for %s...\n", file)

			req := fileContextRequest{
				FilePath:    file,
				ProjectType: projectType,
			}
			if ext := filepath.Ext(file); ext != "" {
				req.FileType = ext[1:]
			}

			var result ruleSetResponse
			if err := newAPIClient(*serverURL).post("/context/rules", req, &result); err != nil {
				return err
			}

			fmt.Printf("Found %d rules:\n", result.Total)
			for _, rule := range result.Rules {
				fmt.Printf("- %s: %s\n", rule.ID, dimStyle.Render(rule.Technology+" "+rule.Version))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the file")
	cmd.Flags().StringVar(&projectType, "project-type", "", "Project type override")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newListTechnologiesCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list-technologies",
		Short: "List available technologies",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Fetching available technologies...")

			var technologies []string
			if err := newAPIClient(*serverURL).get("/technologies", &technologies); err != nil {
				return err
			}

			fmt.Println("Available technologies:")
			for _, tech := range technologies {
				fmt.Printf("- %s\n", tech)
			}
			return nil
		},
	}
}
