package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/talktonic/backend/internal/cli"
	"github.com/zhouzirui/talktonic/backend/internal/config"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/server"
	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
	"github.com/zhouzirui/talktonic/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "talktonic",
		Short:        "TalkTonic chat backend and terminal client",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(envFile); err != nil {
				log.Printf("warning: failed to load %s: %v", envFile, err)
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")

	root.AddCommand(newServeCmd(), newChatCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return server.Run(cmd.Context(), cfg)
		},
	}
}

func newChatCmd() *cobra.Command {
	var themeName string
	var width int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			id, ok := theme.Parse(themeName)
			if !ok {
				return fmt.Errorf("unknown theme %q", themeName)
			}

			session := chat.NewSession(uuid.NewString(), ai.NewCompleter(cmd.Context(), cfg))
			session.SetTheme(id)

			line := cli.NewLiner()
			defer line.Close()

			return cli.NewChat(session, line, cmd.OutOrStdout(), width).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&themeName, "theme", string(theme.Default), "colour theme (Dark, Light, Midnight)")
	cmd.Flags().IntVar(&width, "width", 80, "terminal width used to align bubbles")
	return cmd
}
