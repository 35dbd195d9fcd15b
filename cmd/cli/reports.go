package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var reportStatus string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Review and resolve moderation reports",
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List moderation reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listReports()
	},
}

var resolveReportCmd = &cobra.Command{
	Use:   "resolve <report-id>",
	Short: "Mark a report as resolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleReport(args[0], "resolved")
	},
}

var dismissReportCmd = &cobra.Command{
	Use:   "dismiss <report-id>",
	Short: "Dismiss a report without action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleReport(args[0], "dismissed")
	},
}

var removePhotoCmd = &cobra.Command{
	Use:   "remove-photo <photo-id>",
	Short: "Remove a photo for violating the guidelines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiRequest("POST", "/api/v1/admin/photos/"+args[0]+"/remove", nil)
		if err != nil {
			return err
		}
		if output == "json" {
			fmt.Println(string(body))
		} else {
			fmt.Printf("Photo %s removed\n", args[0])
		}
		return nil
	},
}

func init() {
	listReportsCmd.Flags().StringVar(&reportStatus, "status", "pending", "Filter by status: pending, resolved, dismissed, all")

	reportsCmd.AddCommand(listReportsCmd)
	reportsCmd.AddCommand(resolveReportCmd)
	reportsCmd.AddCommand(dismissReportCmd)
	reportsCmd.AddCommand(removePhotoCmd)
}

func listReports() error {
	body, err := apiRequest("GET", "/api/v1/admin/reports?status="+reportStatus, nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Reports []struct {
			ID         string `json:"id"`
			TargetType string `json:"target_type"`
			TargetID   string `json:"target_id"`
			Reason     string `json:"reason"`
			Status     string `json:"status"`
			CreatedAt  string `json:"created_at"`
		} `json:"reports"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Total == 0 {
		fmt.Println("No reports found")
		return nil
	}

	fmt.Printf("%d report(s):\n\n", result.Total)
	for _, r := range result.Reports {
		fmt.Printf("  %s  [%s]  %s %s\n", r.ID, r.Status, r.TargetType, r.TargetID)
		fmt.Printf("      reason: %s  filed: %s\n", r.Reason, r.CreatedAt)
	}
	return nil
}

func handleReport(reportID, status string) error {
	payload := map[string]string{"status": status}
	body, err := apiRequest("POST", "/api/v1/admin/reports/"+reportID+"/resolve", payload)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
	} else {
		fmt.Printf("Report %s marked %s\n", reportID, status)
	}
	return nil
}

// apiRequest performs an authenticated request and returns the body,
// turning non-2xx statuses into errors
func apiRequest(method, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.Unmarshal(body, &errResp)
		if msg, ok := errResp["message"].(string); ok && msg != "" {
			return nil, fmt.Errorf("API error: %s", msg)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	return body, nil
}
