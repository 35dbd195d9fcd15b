package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var banUserCmd = &cobra.Command{
	Use:   "ban <user-id>",
	Short: "Ban a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBanned(args[0], true)
	},
}

var unbanUserCmd = &cobra.Command{
	Use:   "unban <user-id>",
	Short: "Lift a user ban",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBanned(args[0], false)
	},
}

var showUserCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiRequest("GET", "/api/v1/users/"+args[0], nil)
		if err != nil {
			return err
		}

		if output == "json" {
			fmt.Println(string(body))
			return nil
		}

		var user struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			DisplayName   string `json:"display_name"`
			IsAdmin       bool   `json:"is_admin"`
			IsBanned      bool   `json:"is_banned"`
			FollowerCount int    `json:"follower_count"`
			PhotoCount    int    `json:"photo_count"`
		}
		if err := json.Unmarshal(body, &user); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		fmt.Printf("%s (@%s)\n", user.DisplayName, user.Username)
		fmt.Printf("  id: %s\n", user.ID)
		fmt.Printf("  photos: %d  followers: %d\n", user.PhotoCount, user.FollowerCount)
		if user.IsAdmin {
			fmt.Println("  role: admin")
		}
		if user.IsBanned {
			fmt.Println("  status: BANNED")
		}
		return nil
	},
}

func init() {
	usersCmd.AddCommand(banUserCmd)
	usersCmd.AddCommand(unbanUserCmd)
	usersCmd.AddCommand(showUserCmd)
}

func setBanned(userID string, banned bool) error {
	payload := map[string]bool{"banned": banned}
	body, err := apiRequest("POST", "/api/v1/admin/users/"+userID+"/ban", payload)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
	} else if banned {
		fmt.Printf("User %s banned\n", userID)
	} else {
		fmt.Printf("Ban lifted for user %s\n", userID)
	}
	return nil
}
