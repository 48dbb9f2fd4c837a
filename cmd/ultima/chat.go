package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/germanamz/ultima/pkg/providers/model"
	"github.com/germanamz/ultima/pkg/providers/provider"
	"github.com/spf13/cobra"
)

var chatRoles = map[string]bool{"system": true, "user": true, "assistant": true}

func newChatCmd(a *app) *cobra.Command {
	var (
		messages []string
		modelID  string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a conversation to ollama",
		Long: `Sends a conversation to the local ollama daemon. Earlier turns are given
with repeated --message role:content flags; a trailing argument is appended
as a user turn.

Example:
  ultima chat --message "system:Answer in one word" "Capital of France?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := parseMessages(messages)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				msgs = append(msgs, provider.Message{Role: "user", Content: strings.Join(args, " ")})
			}

			return a.runChat(cmd.Context(), msgs, modelID)
		},
	}

	cmd.Flags().StringArrayVar(&messages, "message", nil, "conversation turn as role:content (repeatable)")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "ollama model (default: configured default)")

	return cmd
}

func (a *app) runChat(ctx context.Context, msgs []provider.Message, modelID string) error {
	eng, err := a.engine(ctx)
	if err != nil {
		return err
	}

	text, err := eng.Chat(ctx, msgs, model.Model{Name: modelID})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, strings.TrimRight(text, "\n"))

	return nil
}

// parseMessages converts role:content flag values into chat messages.
func parseMessages(raw []string) ([]provider.Message, error) {
	msgs := make([]provider.Message, 0, len(raw))

	for _, r := range raw {
		m, err := parseMessage(r)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	return msgs, nil
}

func parseMessage(raw string) (provider.Message, error) {
	role, content, ok := strings.Cut(raw, ":")
	role = strings.ToLower(strings.TrimSpace(role))

	if !ok || !chatRoles[role] {
		return provider.Message{}, fmt.Errorf("chat: message %q: expected system|user|assistant:content", raw)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return provider.Message{}, fmt.Errorf("chat: message %q: empty content", raw)
	}

	return provider.Message{Role: role, Content: content}, nil
}
