package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	toggleCmd.Flags().StringVar(&toggleUser, "user", "", "The player id toggling their slot")
	toggleCmd.Flags().StringVar(&toggleDate, "date", "", "The day, formatted YYYY-MM-DD")
	toggleCmd.MarkFlagRequired("user")
	toggleCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(callsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(clearCmd)
}

var (
	toggleUser string
	toggleDate string
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Show the availability grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/availability")
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <hour>",
	Short: "Toggle a player's availability for one slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hour, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("hour must be a number: %w", err)
		}
		payload := map[string]any{
			"userId": toggleUser,
			"date":   toggleDate,
			"hour":   hour,
		}
		return performPostRequest("/availability/toggle", payload)
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/users")
	},
}

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "List the open calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/calls")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the match history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the availability grid and roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/clear")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

func performPostRequest(endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
