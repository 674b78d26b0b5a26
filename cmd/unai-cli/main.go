// Command unai-cli asks the UNAI assistant ad hoc questions: pass a question
// as arguments for a single answer, or no arguments for an interactive
// prompt loop. There is no session or history; every question stands alone.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/assistant"
)

var rootCmd = &cobra.Command{
	Use:   "unai-cli [question...]",
	Short: "Ask the UNAI assistant from the terminal",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			return askOnce(cmd, client, strings.Join(args, " "))
		}
		return interactive(cmd, client)
	},
}

func clientFromEnv() (*assistant.Client, error) {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	baseURL := os.Getenv("UNAI_ASSISTANT_URL")
	apiKey := os.Getenv("UNAI_ASSISTANT_KEY")
	name := os.Getenv("UNAI_ASSISTANT_NAME")
	if baseURL == "" {
		return nil, fmt.Errorf("UNAI_ASSISTANT_URL is not set (put it in .env or the environment)")
	}
	if name == "" {
		name = "unai-chatbot"
	}
	return assistant.NewClient(baseURL, apiKey, name), nil
}

func askOnce(cmd *cobra.Command, client *assistant.Client, question string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Question: %s\n", question)
	reply, _, err := client.Chat(cmd.Context(), question, "")
	if err != nil {
		reply = "Error: " + err.Error()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Answer: %s\n", reply)
	return nil
}

func interactive(cmd *cobra.Command, client *assistant.Client) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "UNAI assistant. Type your questions; 'quit' to exit.")

	// Replies reuse one thread so the conversation keeps its context for
	// the lifetime of the process. Nothing is persisted.
	threadID := ""
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		reply, newThreadID, err := client.Chat(cmd.Context(), question, threadID)
		if err != nil {
			reply = "Error: " + err.Error()
		} else if threadID == "" && newThreadID != "" {
			threadID = newThreadID
		}
		fmt.Fprintf(out, "Bot: %s\n\n", reply)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
