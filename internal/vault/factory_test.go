package vault

import (
	"testing"

	"adrop/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  config.VaultConfig{Type: "memory", Name: "test"},
		},
		{
			name: "filesystem",
			cfg:  config.VaultConfig{Type: "filesystem", Name: "test", FSVaultRoot: t.TempDir()},
		},
		{
			name:    "filesystem without root",
			cfg:     config.VaultConfig{Type: "filesystem", Name: "test"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     config.VaultConfig{Type: "tape", Name: "test"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVaultFromConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got vault %T", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewVaultFromConfig failed: %v", err)
			}
			if v == nil {
				t.Fatal("expected a vault")
			}
		})
	}
}
