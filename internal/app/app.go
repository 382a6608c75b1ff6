package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adrop/internal/adrop"
	"adrop/internal/config"
	"adrop/internal/database"
	"adrop/internal/keys"
	"adrop/internal/password"
	"adrop/internal/vault"
)

// App is the application layer between the CLI and ShareService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings, and manages the DB lifecycle on Close.
type App struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	vault   adrop.Vault
	service *adrop.ShareService
	logFile *os.File
}

// New creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Send", "Accept").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date (run `adrop migrate`): %w", err)
	}

	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	passphrase, err := readMasterPassphrase(cfg.Keys.MasterPassphrasePath)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger, logFile, err := newLogger(cfg.LogDir, operation)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	clock := adrop.RealClock{}
	ks := keys.NewStore(db, passphrase, clock)
	hashParams := password.Params{
		Time:      cfg.Password.Time,
		MemoryKiB: cfg.Password.MemoryKiB,
		Threads:   cfg.Password.Threads,
	}

	svc := adrop.NewShareService(db, v, ks, &slogAdapter{l: logger}, clock, adrop.UUIDGenerator{}, hashParams)

	return &App{
		cfg:     cfg,
		db:      db,
		vault:   v,
		service: svc,
		logFile: logFile,
	}, nil
}

// Migrate brings the database schema to the latest version.
// It runs standalone so it works before the schema check in New passes.
func Migrate(cfg *config.Config) error {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// readMasterPassphrase loads the master passphrase used to encrypt private
// keys at rest.
func readMasterPassphrase(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("master_passphrase_path is not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading master passphrase: %w", err)
	}
	passphrase := strings.TrimSpace(string(data))
	if passphrase == "" {
		return "", fmt.Errorf("master passphrase file is empty: %s", path)
	}
	return passphrase, nil
}

// Identity returns the identity CLI operations act as.
func (a *App) Identity() string {
	return a.cfg.Identity
}

// Register creates and stores a keypair for a new identity.
func (a *App) Register(identity string) error {
	return a.service.RegisterIdentity(identity)
}

// Send reads the file at filePath and shares it with recipient, gated by
// pw until expiresAt. Returns the new transfer ID.
func (a *App) Send(recipient, filePath, pw string, expiresAt time.Time) (string, error) {
	if a.cfg.Identity == "" {
		return "", fmt.Errorf("no identity configured: set identity in the config or pass --as")
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return a.service.CreateTransfer(a.cfg.Identity, recipient, content, filepath.Base(filePath), pw, expiresAt)
}

// Accept performs the password-gated acceptance of a transfer addressed to
// the configured identity.
func (a *App) Accept(transferID, pw string) error {
	return a.service.Accept(transferID, a.cfg.Identity, pw)
}

// Receive downloads and decrypts an accepted transfer, writing the
// plaintext to outPath (or the transfer's original filename in the current
// directory when outPath is empty). Returns the path written.
func (a *App) Receive(transferID, outPath string) (string, error) {
	plaintext, filename, err := a.service.Download(transferID, a.cfg.Identity)
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = filename
	}
	if err := os.WriteFile(outPath, plaintext, 0600); err != nil {
		return "", fmt.Errorf("writing decrypted file: %w", err)
	}
	return outPath, nil
}

// ListSent returns transfers sent by the configured identity.
func (a *App) ListSent(limit, offset int) ([]*adrop.TransferSummary, int64, error) {
	return a.service.ListSent(a.cfg.Identity, limit, offset)
}

// ListReceived returns accepted transfers addressed to the configured identity.
func (a *App) ListReceived(limit, offset int) ([]*adrop.TransferSummary, int64, error) {
	return a.service.ListReceived(a.cfg.Identity, limit, offset)
}

// ListPending returns transfers awaiting acceptance by the configured identity.
func (a *App) ListPending(limit, offset int) ([]*adrop.TransferSummary, int64, error) {
	return a.service.ListPendingReceived(a.cfg.Identity, limit, offset)
}

// Purge removes expired transfers and their ciphertext blobs.
func (a *App) Purge() (int, error) {
	return a.service.PurgeExpired()
}

// Close closes all resources.
func (a *App) Close() error {
	var firstErr error

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
