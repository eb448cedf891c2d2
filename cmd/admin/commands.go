package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"locallift/internal/auth"
	"locallift/internal/monetization"
	"locallift/internal/resume"
)

const commandTimeout = 30 * time.Second

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored session and resume of a client",
	RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *clientState) error {
		doc, found, err := resume.Load(ctx, c.store)
		if err != nil && doc == nil {
			return err
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "resume record unreadable: %v\n", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"client":       c.id,
			"session":      c.sessions.Current(),
			"resume":       doc,
			"resume_saved": found,
		})
	}),
}

var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Mark a client's session premium",
	RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *clientState) error {
		s, err := monetization.Upgrade(ctx, c.sessions)
		if errors.Is(err, monetization.ErrNotSignedIn) {
			return fmt.Errorf("client %q has no session to upgrade", c.id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "client %s upgraded, session %s is premium\n", c.id, s.ID)
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Sign a client out and drop its resume and pdf record",
	RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *clientState) error {
		if err := c.sessions.Logout(ctx); err != nil {
			return err
		}
		for _, key := range []string{resume.StorageKey, resume.PDFStorageKey} {
			if err := c.store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "client %s reset\n", c.id)
		return nil
	}),
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for a client (--client new picks a fresh id)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		privatePEM, publicPEM, generated, err := auth.LoadOrGenerateKeys(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath)
		if err != nil {
			return fmt.Errorf("load signing keys: %w", err)
		}
		// A throwaway pair would sign tokens the api rejects.
		if generated {
			return fmt.Errorf("no signing keys at %s; point AUTH_PRIVATE_KEY_PATH at the api's key pair", cfg.Auth.PrivateKeyPath)
		}
		svc, err := auth.NewAuthService(privatePEM, publicPEM, cfg.Auth.AccessTTL)
		if err != nil {
			return err
		}
		clientID := flagClient
		if clientID == "new" {
			clientID = auth.NewClientID()
		}
		token, err := svc.GenerateToken(clientID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "client: %s\n", clientID)
		fmt.Fprintf(out, "token:  %s\n", token)
		fmt.Fprintf(out, "expires in %s\n", svc.AccessTokenTTL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd, premiumCmd, resetCmd, tokenCmd)
}

func withClient(run func(ctx context.Context, cmd *cobra.Command, c *clientState) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		c, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer c.close()
		return run(ctx, cmd, c)
	}
}
