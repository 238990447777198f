// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

var ErrWalletNotFound = errors.New("wallet not found")

// Wallet представляет именованный кошелёк Solana.
type Wallet struct {
	Name       string
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(name, privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	// вторая половина ключа должна совпадать с публичным ключом, выведенным из seed
	derived := ed25519.NewKeyFromSeed(privateKeyBytes[:ed25519.SeedSize]).Public().(ed25519.PublicKey)
	if !solana.PublicKeyFromBytes(derived).Equals(privateKey.PublicKey()) {
		return nil, errors.New("private key does not match its public half")
	}
	return &Wallet{
		Name:       name,
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// Generate создаёт кошелёк со случайным ключом.
func Generate(name string) *Wallet {
	key := solana.NewWallet().PrivateKey
	return &Wallet{Name: name, PrivateKey: key, PublicKey: key.PublicKey()}
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.PublicKey.String()
}

// walletFile represents the structure of wallets YAML file
type walletFile struct {
	Wallets []walletEntry `yaml:"wallets"`
}

type walletEntry struct {
	Name       string `yaml:"name"`
	PrivateKey string `yaml:"private_key"`
}

// Set is a collection of wallets addressed by name.
type Set map[string]*Wallet

// Get returns the named wallet.
func (s Set) Get(name string) (*Wallet, error) {
	w, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

// Names returns the wallet names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadWallets загружает кошельки из YAML-файла.
func LoadWallets(path string) (Set, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file walletFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets found in %s", path)
	}

	wallets := make(Set, len(file.Wallets))
	for i, entry := range file.Wallets {
		if entry.Name == "" {
			return nil, fmt.Errorf("wallet #%d has no name", i+1)
		}
		if _, dup := wallets[entry.Name]; dup {
			return nil, fmt.Errorf("duplicate wallet name %q", entry.Name)
		}
		w, err := NewWallet(entry.Name, entry.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", entry.Name, err)
		}
		wallets[entry.Name] = w
	}
	return wallets, nil
}

// SaveWallets пишет кошельки в YAML-файл с правами 0600.
func SaveWallets(path string, wallets Set) error {
	var file walletFile
	for _, name := range wallets.Names() {
		file.Wallets = append(file.Wallets, walletEntry{
			Name:       name,
			PrivateKey: base58.Encode(wallets[name].PrivateKey),
		})
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode wallets: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
