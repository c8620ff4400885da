package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage the session with the forum server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the forum",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and drop the stored session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new forum account",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged-in user",
	RunE:  runWhoami,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	_, mgr, err := newSession()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Println("🔄 Logging in...")
	if err := mgr.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	_, mgr, err := newSession()
	if err != nil {
		return err
	}

	mgr.Logout()
	fmt.Println("✅ Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	_, mgr, err := newSession()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Print("Confirm Password: ")
	confirmBytes, _ := term.ReadPassword(int(syscall.Stdin))
	confirm := string(confirmBytes)
	fmt.Println()

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	if err := mgr.Signup(cmd.Context(), username, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created! You can now log in with: forum auth login")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	_, mgr, err := newSession()
	if err != nil {
		return err
	}

	mgr.Bootstrap(cmd.Context())

	snap := mgr.Snapshot()
	if !snap.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("Logged in as %s (id %d)\n", snap.User.Username, snap.User.ID)
	return nil
}
