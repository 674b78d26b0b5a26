// Command unai-chat runs the chat service: REST API, session persistence and
// the bridge to the managed assistant.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/assistant"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/server"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/server/profile"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store"
	"github.com/laksikaji/AI-Chatbot-for-UNAI/store/db"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "unai-chat",
	Short: "Chat front-end for the UNAI document assistant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		prof, err := profile.GetProfile(version)
		if err != nil {
			return err
		}

		driver, err := db.NewDriver(prof)
		if err != nil {
			return err
		}
		st := store.New(driver)
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		client := assistant.NewClient(prof.AssistantURL, prof.AssistantKey, prof.AssistantName)

		srv, err := server.NewServer(ctx, prof, st, client)
		if err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			slog.Info("received signal, shutting down", "signal", sig)
			srv.Shutdown(context.Background())
			cancel()
		}()

		return srv.Start(ctx)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `server mode, "dev" or "prod"`)
	flags.String("addr", "", "bind address")
	flags.Int("port", 8081, "bind port")
	flags.String("data", "", "data directory, defaults to ~/.unai-chat")
	flags.String("driver", "sqlite", `database driver: "sqlite", "mysql" or "postgres"`)
	flags.String("dsn", "", "database connection string")
	flags.String("assistant-url", "", "conversation provider base URL")
	flags.String("assistant-key", "", "conversation provider API key")
	flags.String("assistant-name", "unai-chatbot", "assistant name at the provider")
	flags.String("secret", "", "access token signing secret")
	flags.String("locale", "en", `default UI locale: "en" or "th"`)

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("unai")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
