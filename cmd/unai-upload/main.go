// Command unai-upload maintains the assistant's knowledge base. It uploads
// local documents or the contents of a Google Drive folder, and can list or
// delete what the assistant already holds. Files whose name is already
// present are skipped so repeat runs are cheap.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/assistant"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/gdrive"
)

const uploadConcurrency = 4

var (
	credentialsPath string
	tokenPath       string
)

var rootCmd = &cobra.Command{
	Use:   "unai-upload",
	Short: "Manage the UNAI assistant's document store",
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload local documents to the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		return uploadAll(cmd.Context(), cmd, client, args)
	},
}

var driveCmd = &cobra.Command{
	Use:   "drive <folder-id>",
	Short: "Upload every document in a Google Drive folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		drive, err := gdrive.NewClient(ctx, credentialsPath, tokenPath)
		if err != nil {
			return err
		}
		files, err := drive.ListFolder(ctx, args[0])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Folder is empty, nothing to upload.")
			return nil
		}

		dir, err := os.MkdirTemp("", "unai-upload-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		paths := make([]string, 0, len(files))
		for _, file := range files {
			path, err := drive.Download(ctx, file, dir)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "skip %s: %v\n", file.Name, err)
				continue
			}
			paths = append(paths, path)
		}
		return uploadAll(ctx, cmd, client, paths)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents the assistant holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		files, err := client.ListFiles(cmd.Context())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents uploaded yet.")
			return nil
		}
		for _, file := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", file.ID, file.Status, file.Name)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <file-id>...",
	Short: "Delete documents from the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromEnv()
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := client.DeleteFile(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
		}
		return nil
	},
}

func clientFromEnv() (*assistant.Client, error) {
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

// uploadAll pushes the given paths concurrently, skipping any file whose
// base name the assistant already holds.
func uploadAll(ctx context.Context, cmd *cobra.Command, client *assistant.Client, paths []string) error {
	existing, err := client.ListFiles(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, file := range existing {
		known[file.Name] = true
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(uploadConcurrency)
	for _, path := range paths {
		name := filepath.Base(path)
		if known[name] {
			fmt.Fprintf(cmd.OutOrStdout(), "skip %s: already uploaded\n", name)
			continue
		}
		group.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			file, err := client.UploadFile(ctx, name, f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s)\n", file.Name, file.ID)
			return nil
		})
	}
	return group.Wait()
}

func main() {
	driveCmd.Flags().StringVar(&credentialsPath, "credentials", "credentials.json", "OAuth client credentials file")
	driveCmd.Flags().StringVar(&tokenPath, "token", "token.json", "cached OAuth token file")
	rootCmd.AddCommand(uploadCmd, driveCmd, listCmd, deleteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
