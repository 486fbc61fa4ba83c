package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"aiwriter/internal/services"
)

func keyCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage provider API keys in the OS keychain",
	}

	open := func(cmd *cobra.Command) (*services.KeyringService, error) {
		cfg, err := g.load()
		if err != nil {
			return nil, err
		}
		return openKeys(cfg, cfg.NewLogger(cmd.ErrOrStderr())), nil
	}

	var value string
	set := &cobra.Command{
		Use:   "set <provider>",
		Short: "Store the API key for a provider (openai, anthropic, gemini)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := open(cmd)
			if err != nil {
				return err
			}
			key := strings.TrimSpace(value)
			if key == "" {
				err := huh.NewInput().
					Title(fmt.Sprintf("API key for %s", args[0])).
					EchoMode(huh.EchoModePassword).
					Value(&key).
					Run()
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				if err != nil {
					return err
				}
			}
			if err := keys.StoreApiKey(args[0], []byte(strings.TrimSpace(key))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored API key for %s\n", args[0])
			return nil
		},
	}
	set.Flags().StringVar(&value, "value", "", "key value (prompted when empty)")

	del := &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove the API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := open(cmd)
			if err != nil {
				return err
			}
			if err := keys.DeleteApiKey(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted API key for %s\n", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List providers with a stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := open(cmd)
			if err != nil {
				return err
			}
			providers, err := keys.ListApiKeys()
			if err != nil {
				return err
			}
			for _, p := range providers {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.AddCommand(set, del, list)
	return cmd
}
