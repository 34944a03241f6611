package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/teamoptimus/voicebot/client"
	"github.com/teamoptimus/voicebot/internal/config"
)

var serviceURL string
var storeURL string
var storeKey string
var debug bool

const requestTimeout = 30 * time.Second

func dbg(v interface{}) {
	if !debug {
		return
	}
	log.Debug().Interface("data", v).Msg("debug output")
}

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		config.InitLogger()
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	rootCmd := &cobra.Command{
		Use:   "voicebot",
		Short: "Voicebot CLI for managing assistants and chat sessions",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitLogger()

			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				os.Setenv("VOICEBOT_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", cfg.ServiceURL, "Base URL of the voicebot backend service")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store-url", cfg.StoreURL, "Base URL of the session store")
	rootCmd.PersistentFlags().StringVar(&storeKey, "store-key", cfg.StoreKey, "Public API key of the session store")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newListAssistantsCmd())
	rootCmd.AddCommand(newCreateAssistantCmd())
	rootCmd.AddCommand(newListSessionsCmd())
	rootCmd.AddCommand(newCreateSessionCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newVoiceCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	return rootCmd
}

func newListAssistantsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list-assistants",
		Short: "List a user's assistants",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().
				Str("user_id", userID).
				Str("service_url", serviceURL).
				Msg("listing assistants")

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			assistants, err := c.ListAssistants(ctx, userID)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("user_id", userID).
					Dur("elapsed", elapsed).
					Msg("list assistants failed")
				return err
			}

			log.Debug().
				Int("count", len(assistants)).
				Dur("elapsed", elapsed).
				Msg("list assistants completed")

			dbg(assistants)
			if len(assistants) == 0 {
				fmt.Println("No assistants found")
				return nil
			}
			for _, a := range assistants {
				fmt.Printf("%s  %s (%s/%s)\n", a.AssistantID, a.Name, a.Provider, a.Model)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func newCreateAssistantCmd() *cobra.Command {
	var userID, name, firstMessage, systemPrompt string
	var provider, model, voiceProvider, voiceModel string
	var files []string

	cmd := &cobra.Command{
		Use:   "create-assistant",
		Short: "Create a new assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().
				Str("user_id", userID).
				Str("name", name).
				Str("provider", provider).
				Str("model", model).
				Int("files", len(files)).
				Str("service_url", serviceURL).
				Msg("creating assistant")

			req := client.CreateAssistantRequest{
				UserID:        userID,
				Name:          name,
				FirstMessage:  firstMessage,
				SystemPrompt:  systemPrompt,
				Provider:      provider,
				Model:         model,
				VoiceProvider: voiceProvider,
				VoiceModel:    voiceModel,
			}
			for _, path := range files {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open knowledge file: %w", err)
				}
				defer f.Close()
				req.Files = append(req.Files, client.AssistantFile{
					Name:        filepath.Base(path),
					ContentType: "application/octet-stream",
					Content:     f,
				})
			}

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			assistant, err := c.CreateAssistant(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("user_id", userID).
					Str("name", name).
					Dur("elapsed", elapsed).
					Msg("create assistant failed")
				return err
			}

			log.Debug().
				Str("assistant_id", assistant.AssistantID).
				Str("name", assistant.Name).
				Dur("elapsed", elapsed).
				Msg("create assistant completed")

			dbg(assistant)
			fmt.Printf("Assistant created: %s - %s\n", assistant.AssistantID, assistant.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Assistant name (required)")
	cmd.Flags().StringVar(&firstMessage, "first-message", "", "Greeting spoken at session start (required)")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "System prompt (required)")
	cmd.Flags().StringVar(&provider, "provider", "groq", "LLM provider")
	cmd.Flags().StringVar(&model, "model", "meta-llama/llama-4-scout-17b-16e-instruct", "LLM model")
	cmd.Flags().StringVar(&voiceProvider, "voice-provider", "deepgram", "Voice provider")
	cmd.Flags().StringVar(&voiceModel, "voice-model", "asteria", "Voice model")
	cmd.Flags().StringSliceVar(&files, "file", nil, "Knowledge base file (repeatable)")

	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("first-message")
	_ = cmd.MarkFlagRequired("system-prompt")

	return cmd
}

func newListSessionsCmd() *cobra.Command {
	var assistantID string

	cmd := &cobra.Command{
		Use:   "list-sessions",
		Short: "List an assistant's session IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().
				Str("assistant_id", assistantID).
				Str("service_url", serviceURL).
				Msg("listing sessions")

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			sessions, err := c.ListSessions(ctx, assistantID)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("assistant_id", assistantID).
					Dur("elapsed", elapsed).
					Msg("list sessions failed")
				return err
			}

			log.Debug().
				Int("count", len(sessions)).
				Dur("elapsed", elapsed).
				Msg("list sessions completed")

			dbg(sessions)
			if len(sessions) == 0 {
				fmt.Println("No sessions found")
				return nil
			}
			for _, s := range sessions {
				fmt.Println(s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assistantID, "assistant-id", "", "Assistant ID (required)")
	_ = cmd.MarkFlagRequired("assistant-id")

	return cmd
}

func newCreateSessionCmd() *cobra.Command {
	var assistantID, sessionID string

	cmd := &cobra.Command{
		Use:   "create-session",
		Short: "Create a chat session for an assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			log.Debug().
				Str("assistant_id", assistantID).
				Str("session_id", sessionID).
				Str("service_url", serviceURL).
				Msg("creating session")

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			created, err := c.CreateSession(ctx, client.CreateSessionRequest{
				AssistantID: assistantID,
				SessionID:   sessionID,
			})
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("assistant_id", assistantID).
					Str("session_id", sessionID).
					Dur("elapsed", elapsed).
					Msg("create session failed")
				return err
			}

			log.Debug().
				Str("session_id", created.SessionID).
				Dur("elapsed", elapsed).
				Msg("create session completed")

			dbg(created)
			fmt.Printf("Session created: %s\n", created.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&assistantID, "assistant-id", "", "Assistant ID (required)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session ID (generated when omitted)")
	_ = cmd.MarkFlagRequired("assistant-id")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var assistantID, sessionID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a session's chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().
				Str("assistant_id", assistantID).
				Str("session_id", sessionID).
				Str("service_url", serviceURL).
				Msg("fetching history")

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			history, err := c.GetHistory(ctx, assistantID, sessionID)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("assistant_id", assistantID).
					Str("session_id", sessionID).
					Dur("elapsed", elapsed).
					Msg("fetch history failed")
				return err
			}

			log.Debug().
				Int("count", len(history)).
				Dur("elapsed", elapsed).
				Msg("fetch history completed")

			dbg(history)
			if len(history) == 0 {
				fmt.Println("No messages yet")
				return nil
			}
			for _, entry := range history {
				fmt.Printf("you: %s\n", entry.UserQuery)
				fmt.Printf("bot: %s\n", entry.BotResponse)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assistantID, "assistant-id", "", "Assistant ID (required)")
	cmd.Flags().StringVar(&sessionID, "session-id", "1", "Session ID")
	_ = cmd.MarkFlagRequired("assistant-id")

	return cmd
}

func newChatCmd() *cobra.Command {
	var assistantID, sessionID, message string
	var async bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a text message to an assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("--message must not be blank")
			}

			log.Debug().
				Str("assistant_id", assistantID).
				Str("session_id", sessionID).
				Int("message_len", len(message)).
				Bool("async", async).
				Str("service_url", serviceURL).
				Msg("sending chat message")

			req := client.ChatRequest{
				AssistantID: assistantID,
				SessionID:   sessionID,
				UserQuery:   message,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			if async {
				c := client.New(serviceURL)
				defer c.Close() // Ensure queues are drained before context is cancelled

				ack, err := c.SubmitChat(ctx, req, func(turn *client.ChatTurn) {
					fmt.Printf("bot: %s\n", turn.Response)
				})
				if err != nil {
					log.Error().Err(err).Msg("enqueue chat failed")
					return err
				}
				dbg(ack)
				return c.AwaitTurns(ctx, assistantID, sessionID)
			}

			c := client.New(serviceURL, client.WithoutExecutor())
			start := time.Now()
			turn, err := c.Chat(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("assistant_id", assistantID).
					Str("session_id", sessionID).
					Dur("elapsed", elapsed).
					Msg("chat failed")
				return err
			}

			log.Debug().
				Dur("elapsed", elapsed).
				Msg("chat completed")

			fmt.Printf("bot: %s\n", turn.Response)
			return nil
		},
	}

	cmd.Flags().StringVar(&assistantID, "assistant-id", "", "Assistant ID (required)")
	cmd.Flags().StringVar(&sessionID, "session-id", "1", "Session ID")
	cmd.Flags().StringVar(&message, "message", "", "Message text (required)")
	cmd.Flags().BoolVar(&async, "async", false, "Enqueue the turn instead of waiting inline")
	_ = cmd.MarkFlagRequired("assistant-id")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func newVoiceCmd() *cobra.Command {
	var assistantID, sessionID, audioPath, language string

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Send a recorded audio clip to an assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.ValidateLanguage(language); err != nil {
				return err
			}

			log.Debug().
				Str("assistant_id", assistantID).
				Str("session_id", sessionID).
				Str("audio", audioPath).
				Str("language", language).
				Str("service_url", serviceURL).
				Msg("sending voice message")

			f, err := os.Open(audioPath)
			if err != nil {
				return fmt.Errorf("open audio file: %w", err)
			}
			defer f.Close()

			c := client.New(serviceURL, client.WithoutExecutor())
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			start := time.Now()
			turn, err := c.VoiceChat(ctx, assistantID, sessionID, client.VoiceChatRequest{
				FileName: filepath.Base(audioPath),
				Audio:    f,
				Language: language,
			})
			elapsed := time.Since(start)

			if err != nil {
				log.Error().
					Err(err).
					Str("assistant_id", assistantID).
					Str("session_id", sessionID).
					Dur("elapsed", elapsed).
					Msg("voice chat failed")
				return err
			}

			log.Debug().
				Str("language", turn.Language).
				Dur("elapsed", elapsed).
				Msg("voice chat completed")

			dbg(turn)
			fmt.Printf("you: %s\n", turn.Transcription)
			fmt.Printf("bot: %s\n", turn.Response)
			return nil
		},
	}

	cmd.Flags().StringVar(&assistantID, "assistant-id", "", "Assistant ID (required)")
	cmd.Flags().StringVar(&sessionID, "session-id", "1", "Session ID")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Path to the recorded clip (required)")
	cmd.Flags().StringVar(&language, "language", "en", "Spoken language code")
	_ = cmd.MarkFlagRequired("assistant-id")
	_ = cmd.MarkFlagRequired("audio")

	return cmd
}
