package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	whoamiRefresh bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session locally",
	Long: `Sign in to the content backend. The password is read from
ASTRO_ADMIN_PASSWORD or standard input when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the refresh token and clear the local session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")

	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Reload the profile from the backend")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	password, err := resolvePassword(cmd)
	if err != nil {
		return err
	}
	user, err := a.auth.Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Signed in as %s\n", user.DisplayName())
	return printJSON(cmd.OutOrStdout(), user)
}

func resolvePassword(cmd *cobra.Command) (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if value := os.Getenv("ASTRO_ADMIN_PASSWORD"); value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.auth.Logout(cmd.Context()); err != nil {
		return describe(err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.auth.Current()
	if err != nil {
		return describe(err)
	}
	if whoamiRefresh {
		if err := a.auth.EnsureFresh(cmd.Context()); err != nil {
			return describe(err)
		}
		if user, err = a.auth.Me(cmd.Context()); err != nil {
			return describe(err)
		}
	}
	return printJSON(cmd.OutOrStdout(), user)
}
