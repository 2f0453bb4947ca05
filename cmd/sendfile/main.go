package main

import (
	"fmt"
	"os"
	"path/filepath"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/config"
)

// sendfile is a one-shot helper for cron jobs and shell scripts: it sends a
// single document to the operator's chat and exits.

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: sendfile <file_path> <caption>")
		os.Exit(1)
	}
	path, caption := os.Args[1], os.Args[2]

	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: file not found at %s\n", path)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	bot, err := telebot.NewBot(telebot.Settings{Token: cfg.Telegram.Token, Synchronous: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating bot: %v\n", err)
		os.Exit(1)
	}

	doc := &telebot.Document{
		File:     telebot.FromDisk(path),
		FileName: filepath.Base(path),
		Caption:  caption,
	}
	if _, err := bot.Send(&telebot.Chat{ID: cfg.Telegram.AdminUserID}, doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error sending file via Telegram: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("File sent successfully to Telegram.")
}
