// internal/launch/manager.go
package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager loads and parses launch task definitions.
type Manager struct {
	logger *zap.Logger
}

// TaskConfig represents the structure of launches YAML file
type TaskConfig struct {
	Tasks []struct {
		TaskName   string `yaml:"task_name"`
		Wallet     string `yaml:"wallet"`
		Collection struct {
			Name            string `yaml:"name"`
			URI             string `yaml:"uri"`
			UpdateAuthority string `yaml:"update_authority"`
		} `yaml:"collection"`
		Store struct {
			Name          string `yaml:"name"`
			URL           string `yaml:"url"`
			ManifestID    string `yaml:"manifest_id"`
			NumberOfItems uint64 `yaml:"number_of_items"`
		} `yaml:"store"`
		UsePass           bool `yaml:"use_pass"`
		SingleTransaction bool `yaml:"single_transaction"`
	} `yaml:"tasks"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger.Named("launch-manager")}
}

// LoadTasks reads launch tasks from a YAML file. Invalid tasks are skipped
// with a warning; a file without any valid task is an error.
func (m *Manager) LoadTasks(path string) ([]*Task, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config TaskConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(config.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in configuration")
	}

	tasks := make([]*Task, 0, len(config.Tasks))
	for i, taskData := range config.Tasks {
		if taskData.TaskName == "" || taskData.Wallet == "" || taskData.Collection.Name == "" || taskData.Store.Name == "" {
			m.logger.Warn("Skipping task with missing required fields",
				zap.Int("index", i),
				zap.String("task_name", taskData.TaskName),
				zap.String("wallet", taskData.Wallet))
			continue
		}

		var authority solana.PublicKey
		if taskData.Collection.UpdateAuthority != "" {
			authority, err = solana.PublicKeyFromBase58(taskData.Collection.UpdateAuthority)
			if err != nil {
				m.logger.Warn("Skipping task with invalid update authority",
					zap.String("task_name", taskData.TaskName),
					zap.Error(err))
				continue
			}
		}

		tasks = append(tasks, &Task{
			ID:         i,
			TaskName:   taskData.TaskName,
			WalletName: taskData.Wallet,
			Collection: CollectionConfig{
				Name:            taskData.Collection.Name,
				URI:             taskData.Collection.URI,
				UpdateAuthority: authority,
			},
			Store: StoreConfig{
				Name:          taskData.Store.Name,
				URL:           taskData.Store.URL,
				ManifestID:    taskData.Store.ManifestID,
				NumberOfItems: taskData.Store.NumberOfItems,
			},
			UsePass:           taskData.UsePass,
			SingleTransaction: taskData.SingleTransaction,
			CreatedAt:         time.Now(),
		})
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no valid tasks loaded")
	}

	m.logger.Info("Loaded tasks", zap.Int("count", len(tasks)))
	return tasks, nil
}
