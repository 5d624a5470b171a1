package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Get an API token",
	Long: `Exchange username and password for an API token.

The password is read from the terminal unless --password is given.
Export the token as KINOCAT_TOKEN to use it with other commands.

Examples:
  kinocat login alice
  export KINOCAT_TOKEN=$(kinocat login alice --quiet)`,
	Args: cobra.ExactArgs(1),
	RunE: runLoginCmd,
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegisterCmd,
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd)
	loginCmd.Flags().String("password", "", "Password (prompted when empty)")
	loginCmd.Flags().BoolP("quiet", "q", false, "Print only the token")
	registerCmd.Flags().String("password", "", "Password (prompted when empty)")
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if password == "" {
		var err error
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	resp, err := NewClient(serverURL).Login(args[0], password)
	if err != nil {
		if IsUnauthorized(err) {
			return errors.New("login failed: invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	switch {
	case jsonOutput:
		printJSON(resp)
	case quiet:
		fmt.Println(resp.Token)
	default:
		fmt.Printf("Token (expires %s):\n%s\n", resp.ExpiresAt.Local().Format("15:04:05"), resp.Token)
	}
	return nil
}

func runRegisterCmd(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	user, err := NewClient(serverURL).Register(args[0], args[1], password)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	if jsonOutput {
		printJSON(user)
		return nil
	}
	fmt.Printf("Registered %s (%s)\n", user.Username, user.UUID)
	return nil
}

// readPassword reads a line from stdin without echo when it is a terminal.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
