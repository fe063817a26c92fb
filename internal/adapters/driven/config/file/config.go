package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// ConfigFileName is the file read from the config directory.
const ConfigFileName = "config.toml"

// Backend and provider names accepted in the config file.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config is the full application configuration.
type Config struct {
	// Verbose enables diagnostic logging.
	Verbose bool `toml:"verbose"`

	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Extractor ExtractorConfig `toml:"extractor"`
}

// StoreConfig selects and locates the vector store backend.
type StoreConfig struct {
	// Backend is one of "json", "sqlite" or "memory" (default: json).
	Backend string `toml:"backend"`

	// DataDir overrides the data directory (default: ~/.hearth/data).
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "ollama" or "openai" (default: ollama).
	Provider string `toml:"provider"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates against hosted providers.
	APIKey string `toml:"api_key"`

	// Dimensions overrides the embedding vector size.
	Dimensions int `toml:"dimensions"`

	// RequestsPerSecond caps the request rate for local providers.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// RetrievalConfig holds the runtime-tunable retrieval parameters.
type RetrievalConfig struct {
	// Lambda is the relevance/diversity trade-off in [0, 1].
	Lambda float64 `toml:"lambda"`

	// CandidatePool bounds the similarity candidates re-ranked for
	// diversity.
	CandidatePool int `toml:"candidate_pool"`

	// TopK is the default number of results.
	TopK int `toml:"top_k"`

	// PerSectionCap is the default per-section result limit.
	PerSectionCap int `toml:"per_section_cap"`

	// CharBudget is the default context size in characters.
	CharBudget int `toml:"char_budget"`

	// Weights maps section type names to relevance multipliers.
	Weights map[string]float64 `toml:"weights"`
}

// ExtractorConfig configures the external conversion tool for binary
// document formats. Empty Command leaves only plain text support.
type ExtractorConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// DefaultConfigDir returns ~/.hearth.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".hearth"), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendJSON,
		},
		Embedding: EmbeddingConfig{
			Provider: ProviderOllama,
		},
		Retrieval: RetrievalConfig{
			Lambda:        0.7,
			CandidatePool: domain.DefaultCandidatePool,
			TopK:          domain.DefaultTopK,
			PerSectionCap: domain.DefaultPerSectionCap,
		},
	}
}

// Load reads the config file from configDir, filling defaults for
// anything the file omits. A missing file yields the defaults.
// If configDir is empty, ~/.hearth is used and created when absent.
func Load(configDir string) (Config, string, error) {
	cfg := DefaultConfig()

	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return cfg, "", err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return cfg, "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, ConfigFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, path, nil
		}
		return cfg, path, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, path, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, path, nil
}

// Save writes the configuration to path with restricted permissions.
func Save(cfg Config, path string) error {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values with defaults so a sparse file
// behaves like the full default config.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = def.Embedding.Provider
	}
	if c.Retrieval.Lambda == 0 {
		c.Retrieval.Lambda = def.Retrieval.Lambda
	}
	if c.Retrieval.CandidatePool == 0 {
		c.Retrieval.CandidatePool = def.Retrieval.CandidatePool
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = def.Retrieval.TopK
	}
	if c.Retrieval.PerSectionCap == 0 {
		c.Retrieval.PerSectionCap = def.Retrieval.PerSectionCap
	}
}

// SectionWeights converts the configured weight names to domain
// section types, dropping unknown names.
func (c RetrievalConfig) SectionWeights() map[domain.SectionType]float64 {
	if len(c.Weights) == 0 {
		return nil
	}
	weights := make(map[domain.SectionType]float64, len(c.Weights))
	for name, w := range c.Weights {
		st := domain.SectionType(name)
		if st.Valid() {
			weights[st] = w
		}
	}
	return weights
}
