package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/teamoptimus/voicebot/client"
	"github.com/teamoptimus/voicebot/session"
	"github.com/teamoptimus/voicebot/store"
)

func newSessionStore() (*store.Store, error) {
	if storeURL == "" || storeKey == "" {
		return nil, fmt.Errorf("--store-url and --store-key are required (or set VOICEBOT_STORE_URL / VOICEBOT_STORE_KEY)")
	}
	return store.New(storeURL, storeKey), nil
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newSessionStore()
			if err != nil {
				return err
			}

			log.Debug().
				Str("email", email).
				Str("store_url", storeURL).
				Msg("signing in")

			mgr := session.NewManager(st)
			defer mgr.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			err = mgr.SignIn(ctx, email, password)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("email", email).
					Dur("elapsed", elapsed).
					Msg("sign in failed")
				return err
			}

			snap := mgr.Current()
			log.Debug().
				Str("user_id", snap.Session.UserID).
				Dur("elapsed", elapsed).
				Msg("sign in completed")

			fmt.Printf("Signed in as %s (%s)\n", snap.User.Name, snap.User.Email)
			fmt.Printf("user id:       %s\n", snap.Session.UserID)
			fmt.Printf("access token:  %s\n", snap.Session.AccessToken)
			fmt.Printf("refresh token: %s\n", snap.Session.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSignupCmd() *cobra.Command {
	var email, password, name, fullName, userType, phone string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and its profile row",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newSessionStore()
			if err != nil {
				return err
			}

			log.Debug().
				Str("email", email).
				Str("name", name).
				Str("store_url", storeURL).
				Msg("signing up")

			mgr := session.NewManager(st)
			defer mgr.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			err = mgr.SignUp(ctx, email, password, store.UserRow{
				Name:        name,
				FullName:    fullName,
				UserType:    userType,
				PhoneNumber: phone,
			})
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("email", email).
					Dur("elapsed", elapsed).
					Msg("sign up failed")
				return err
			}

			snap := mgr.Current()
			log.Debug().
				Str("user_id", snap.Session.UserID).
				Dur("elapsed", elapsed).
				Msg("sign up completed")

			fmt.Printf("Account created: %s (%s)\n", snap.Session.UserID, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name (optional)")
	cmd.Flags().StringVar(&userType, "user-type", "", "Account type (optional)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	var accessToken, userID string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile row behind an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newSessionStore()
			if err != nil {
				return err
			}
			st.SetToken(accessToken)

			log.Debug().
				Str("user_id", userID).
				Str("store_url", storeURL).
				Msg("fetching profile")

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			user, err := st.UserByID(ctx, userID)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("user_id", userID).
					Dur("elapsed", elapsed).
					Msg("fetch profile failed")
				return err
			}

			log.Debug().Dur("elapsed", elapsed).Msg("fetch profile completed")

			dbg(user)
			fmt.Printf("%s  %s <%s>\n", user.UserID, user.Name, user.Email)
			if user.UserType != "" {
				fmt.Printf("type: %s\n", user.UserType)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accessToken, "access-token", "", "Session access token (required)")
	cmd.Flags().StringVar(&userID, "user-id", "", "Auth user ID (required)")
	_ = cmd.MarkFlagRequired("access-token")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var assistantID, accessToken string
	var limit int
	var strict bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show per-session sentiment for an assistant's recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newSessionStore()
			if err != nil {
				return err
			}
			st.SetToken(accessToken)

			log.Debug().
				Str("assistant_id", assistantID).
				Int("limit", limit).
				Bool("strict", strict).
				Str("service_url", serviceURL).
				Msg("analyzing sessions")

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			rows, err := st.RecentSessions(ctx, assistantID, limit)
			if err != nil {
				log.Error().Err(err).Str("assistant_id", assistantID).Msg("list recent sessions failed")
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No sessions found")
				return nil
			}

			refs := make([]client.SessionRef, len(rows))
			for i, row := range rows {
				refs[i] = client.SessionRef{SessionID: row.SessionID, CreatedAt: row.CreatedAt}
			}

			c := client.New(serviceURL, client.WithoutExecutor())

			start := time.Now()
			var results []client.SentimentResult
			if strict {
				results, err = c.SentimentBatchStrict(ctx, assistantID, refs)
				if err != nil {
					log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("sentiment batch failed")
					return err
				}
			} else {
				results = c.SentimentBatch(ctx, assistantID, refs)
			}
			elapsed := time.Since(start)

			log.Debug().
				Int("count", len(results)).
				Dur("elapsed", elapsed).
				Msg("sentiment batch completed")

			dbg(results)
			for _, res := range results {
				if res.Err != nil {
					fmt.Printf("%s  error: %v\n", res.Ref.Key(), res.Err)
					continue
				}
				fmt.Printf("%s  %s (%d messages)\n", res.Ref.Key(), res.Sentiment.Sentiment, res.Sentiment.MessageCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assistantID, "assistant-id", "", "Assistant ID (required)")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Session access token (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "How many recent sessions to analyze")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail the whole batch on the first error")
	_ = cmd.MarkFlagRequired("assistant-id")
	_ = cmd.MarkFlagRequired("access-token")

	return cmd
}
