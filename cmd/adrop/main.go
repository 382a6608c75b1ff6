package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"adrop/internal/adrop"
	"adrop/internal/app"
	"adrop/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Send", "Accept").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if asIdentity != "" {
		cfg.Identity = asIdentity
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassword returns the --password flag value, or prompts on the terminal.
func readPassword(prompt string) (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

var (
	asIdentity   string
	passwordFlag string
)

var rootCmd = &cobra.Command{
	Use:   "adrop",
	Short: "Password-gated encrypted file drops",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig("", defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if err := writeMasterPassphrase(cfg.Keys.MasterPassphrasePath); err != nil {
			return err
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set `identity` in the config to your identity, then run `adrop migrate`.")
		return nil
	},
}

// writeMasterPassphrase generates a random master passphrase file unless one
// already exists.
func writeMasterPassphrase(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generating master passphrase: %w", err)
	}
	passphrase := base64.RawStdEncoding.EncodeToString(raw)

	if err := os.WriteFile(path, []byte(passphrase+"\n"), 0600); err != nil {
		return fmt.Errorf("writing master passphrase: %w", err)
	}
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if err := app.Migrate(cfg); err != nil {
			return err
		}
		fmt.Println("Database schema is up to date.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <identity>",
	Short: "Register an identity and generate its keypair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Register")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Register(args[0]); err != nil {
			return err
		}
		fmt.Printf("Registered %s\n", args[0])
		return nil
	},
}

var (
	sendTo        string
	sendExpiresIn time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Encrypt a file for a recipient and share it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword("Access password: ")
		if err != nil {
			return err
		}

		a, err := newApp("Send")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Send(sendTo, args[0], pw, time.Now().Add(sendExpiresIn))
		if err != nil {
			return err
		}
		fmt.Printf("Transfer created: %s (expires in %s)\n", id, sendExpiresIn)
		return nil
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept <transfer-id>",
	Short: "Accept a pending transfer with its access password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword("Access password: ")
		if err != nil {
			return err
		}

		a, err := newApp("Accept")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Accept(args[0], pw); err != nil {
			return err
		}
		fmt.Println("Transfer accepted.")
		return nil
	},
}

var receiveOut string

var receiveCmd = &cobra.Command{
	Use:   "receive <transfer-id>",
	Short: "Download and decrypt an accepted transfer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Receive")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Receive(args[0], receiveOut)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var (
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:       "list {sent|received|pending}",
	Short:     "List transfers",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"sent", "received", "pending"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		var (
			transfers []*adrop.TransferSummary
			total     int64
		)
		switch args[0] {
		case "sent":
			transfers, total, err = a.ListSent(listLimit, listOffset)
		case "received":
			transfers, total, err = a.ListReceived(listLimit, listOffset)
		case "pending":
			transfers, total, err = a.ListPending(listLimit, listOffset)
		default:
			return fmt.Errorf("unknown listing: %s", args[0])
		}
		if err != nil {
			return err
		}

		for _, tr := range transfers {
			fmt.Printf("%s\t%s\t%d bytes\t%s\t%s -> %s\texpires %s\n",
				tr.ID, tr.FileName, tr.Size, tr.Status,
				tr.OwnerID, tr.RecipientID,
				tr.ExpiresAt.Local().Format(time.RFC3339))
		}
		fmt.Printf("%d of %d transfer(s)\n", len(transfers), total)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired transfers and their ciphertext",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Purge")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Purge()
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d expired transfer(s)\n", count)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&asIdentity, "as", "", "identity to act as (overrides config)")

	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient identity (required)")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().DurationVar(&sendExpiresIn, "expires-in", 24*time.Hour, "how long the transfer stays available")
	sendCmd.Flags().StringVar(&passwordFlag, "password", "", "access password (prompted if omitted)")
	acceptCmd.Flags().StringVar(&passwordFlag, "password", "", "access password (prompted if omitted)")

	receiveCmd.Flags().StringVarP(&receiveOut, "output", "o", "", "output path (defaults to the original filename)")

	listCmd.Flags().IntVar(&listLimit, "limit", 10, "page size")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "page offset")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd, migrateCmd, registerCmd, sendCmd, acceptCmd, receiveCmd, listCmd, purgeCmd)
}
