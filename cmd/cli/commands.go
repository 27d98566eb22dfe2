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
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(leaguesCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(postStandingsCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(invitationsCmd)
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(friendsCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(verifyCmd)

	leaguesCmd.Flags().Bool("mine", false, "Only leagues you participate in")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var leaguesCmd = &cobra.Command{
	Use:   "leagues",
	Short: "List public leagues, or your own with --mine",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mine, _ := cmd.Flags().GetBool("mine"); mine {
			return performGetRequest("/me/leagues")
		}
		return performGetRequest("/leagues")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings [league-id]",
	Short: "Show the ranked standings of a league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leagues/" + args[0] + "/standings")
	},
}

var postStandingsCmd = &cobra.Command{
	Use:   "post-standings [league-id]",
	Short: "Post the standings of a league to Slack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/leagues/"+args[0]+"/standings/post", nil)
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Post the standings of every league with results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/scheduled/standings-digest", nil)
	},
}

var joinCmd = &cobra.Command{
	Use:   "join [league-id]",
	Short: "Join a public league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/leagues/"+args[0]+"/join", nil)
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite [league-id] [user-id]",
	Short: "Invite a user to a league",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/leagues/"+args[0]+"/invitations", map[string]string{"receiver_id": args[1]})
	},
}

var invitationsCmd = &cobra.Command{
	Use:   "invitations",
	Short: "List your pending invitations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/me/invitations")
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept [invitation-id]",
	Short: "Accept a league invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/invitations/"+args[0]+"/accept", nil)
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish [match-id] [score1] [score2]",
	Short: "Record the final score of a match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		score1, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score1: %w", err)
		}
		score2, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid score2: %w", err)
		}
		return performPostRequest("/matches/"+args[0]+"/finish", map[string]int{"score1": score1, "score2": score2})
	},
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List your friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/me/friends")
	},
}

var userCmd = &cobra.Command{
	Use:   "user [username]",
	Short: "Look up a user by username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/users/by-username/" + args[0])
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Mark your email address as verified",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPut, "/users/"+userID+"/verified", map[string]bool{"verified": true})
	},
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performPostRequest(endpoint string, body any) error {
	return performRequest(http.MethodPost, endpoint, body)
}

func performRequest(method, endpoint string, body any) error {
	url := host + endpoint
	if dryRun {
		url += "?dry_run=true"
	}
	fmt.Printf("Making request to %s\n", url)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
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
