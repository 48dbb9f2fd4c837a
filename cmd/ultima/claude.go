package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/germanamz/ultima/pkg/credentials"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/spf13/cobra"
)

const tokenPrefixLen = 12

// claudeInfo is the printable view of the stored credentials. The access
// token is never included in full.
type claudeInfo struct {
	CredentialsPath  string    `json:"credentials_path"`
	TokenPrefix      string    `json:"token_prefix"`
	TokenValid       bool      `json:"token_valid"`
	ExpiresAt        time.Time `json:"expires_at"`
	DaysRemaining    int       `json:"days_remaining"`
	SubscriptionType string    `json:"subscription_type,omitempty"`
	RateLimitTier    string    `json:"rate_limit_tier,omitempty"`
	Scopes           []string  `json:"scopes,omitempty"`
}

func newClaudeInfo(path string, creds credentials.Credentials, now time.Time) claudeInfo {
	return claudeInfo{
		CredentialsPath:  path,
		TokenPrefix:      creds.TokenPrefix(tokenPrefixLen),
		TokenValid:       creds.Valid(now),
		ExpiresAt:        creds.ExpiresAtTime(),
		DaysRemaining:    creds.DaysRemaining(now),
		SubscriptionType: creds.SubscriptionType,
		RateLimitTier:    creds.RateLimitTier,
		Scopes:           creds.Scopes,
	}
}

func newClaudeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "claude",
		Short: "Show the stored Claude credential details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			c := eng.Claude()
			if c == nil {
				return fmt.Errorf("claude: %w", provider.ErrUnavailable)
			}

			creds, err := c.Reload()
			if err != nil {
				return err
			}

			info := newClaudeInfo(c.CredentialsPath, creds, c.Now())

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")

				return enc.Encode(info)
			}

			renderClaudeInfo(a.out, info)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the details as JSON")

	return cmd
}

func renderClaudeInfo(w io.Writer, info claudeInfo) {
	validity := operationalStyle.Render("valid")
	if !info.TokenValid {
		validity = failedStyle.Render("expired")
	}

	rows := [][2]string{
		{"credentials", info.CredentialsPath},
		{"token", info.TokenPrefix + " " + validity},
		{"expires", fmt.Sprintf("%s (%d days)", info.ExpiresAt.Format("2006-01-02 15:04 MST"), info.DaysRemaining)},
		{"subscription", info.SubscriptionType},
		{"rate limit", info.RateLimitTier},
		{"scopes", strings.Join(info.Scopes, ", ")},
	}

	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", nameStyle.Render(pad(r[0], 14)), r[1])
	}
}
