package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the symptom checker (patients)",
		Long:  "Starts a conversation with the symptom checker. Type your answers; an empty line or \"quit\" ends it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context(), users.RolePatient)
			if err != nil {
				return err
			}
			reply, err := a.chatbot.Start(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "bot: %s\n", reply.Message)

			for a.chatbot.Started() {
				input, err := c.prompt("you: ")
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if input == "" || strings.EqualFold(input, "quit") {
					return nil
				}
				reply, err := a.chatbot.Respond(cmd.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "bot: %s\n", reply.Message)
			}
			return nil
		},
	}
}
