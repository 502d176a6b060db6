package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobapplicator.
type Config struct {
	Query           string // search term sent to every board
	DataDir         string // letters, follow-ups, lock file and default stores
	MaxApply        int
	PollingInterval time.Duration
	Applicant       ApplicantConfig
	Boards          BoardsConfig
	Filters         FilterConfig
	OpenAI          OpenAIConfig
	Scrape          ScrapeConfig
	Store           StoreConfig
	Notification    NotificationConfig
	Mood            MoodConfig
}

// ApplicantConfig is the profile the letters are written for.
type ApplicantConfig struct {
	Name        string
	Skills      []string
	CareerGoals string
	StyleFile   string // optional free-form voice guidance, read at startup
}

// BoardsConfig selects the boards to scrape.
type BoardsConfig struct {
	Craigslist     CraigslistConfig
	RemoteOK       bool
	WeWorkRemotely bool
	Generic        []GenericBoard
}

// CraigslistConfig lists the Craigslist sites (subdomains) to search.
type CraigslistConfig struct {
	Enabled bool
	Sites   []string
}

// GenericBoard is any page whose listings are <article> elements with a link.
type GenericBoard struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FilterConfig holds keyword and posting-age filters.
type FilterConfig struct {
	TitleKeywords        []string
	TitleExcludeKeywords []string
	MaxAge               time.Duration // 0 disables the age check
}

// OpenAIConfig controls the embeddings and chat completion calls.
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration // per-request timeout
}

// ScrapeConfig controls board requests.
type ScrapeConfig struct {
	Timeout   time.Duration
	UserAgent string
	MinDelay  time.Duration // minimum gap between requests to the same host
}

// StoreConfig selects the seen-cache backend.
type StoreConfig struct {
	Type      string        // "sqlite", "json" or "none"
	Path      string        // defaults to {data_dir}/seen.db or seen.json
	Retention time.Duration // seen entries older than this are dropped; 0 keeps all
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// MoodConfig controls the mood circuit.
type MoodConfig struct {
	Shots int // 0 uses exact expectations
}

const (
	defaultQuery          = "python developer"
	defaultDataDir        = "jobapplicator_data"
	defaultMaxApply       = 3
	defaultInterval       = 6 * time.Hour
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultChatModel      = "gpt-4o"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultTimeout        = 45 * time.Second
	defaultUserAgent      = "Mozilla/5.0 (JobApplicatorBot/6.0)"
	defaultMinDelay       = 2 * time.Second
	defaultStyleFile      = "my_style_prompt.txt"
	defaultShots          = 2048
)

// EnvConfigPath names the variable consulted when no --config flag is given.
const EnvConfigPath = "JOBAPPLICATOR_CONFIG"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Query           string             `yaml:"query"`
	DataDir         string             `yaml:"data_dir"`
	MaxApply        int                `yaml:"max_apply"`
	PollingInterval string             `yaml:"polling_interval"`
	Applicant       rawApplicantConfig `yaml:"applicant"`
	Boards          rawBoardsConfig    `yaml:"boards"`
	Filters         rawFilterConfig    `yaml:"filters"`
	OpenAI          rawOpenAIConfig    `yaml:"openai"`
	Scrape          rawScrapeConfig    `yaml:"scrape"`
	Store           rawStoreConfig     `yaml:"store"`
	Notification    NotificationConfig `yaml:"notification"`
	Mood            rawMoodConfig      `yaml:"mood"`
}

type rawApplicantConfig struct {
	Name        string   `yaml:"name"`
	Skills      []string `yaml:"skills"`
	CareerGoals string   `yaml:"career_goals"`
	StyleFile   string   `yaml:"style_file"`
}

type rawBoardsConfig struct {
	Craigslist     rawCraigslistConfig `yaml:"craigslist"`
	RemoteOK       rawToggle           `yaml:"remoteok"`
	WeWorkRemotely rawToggle           `yaml:"weworkremotely"`
	Generic        []GenericBoard      `yaml:"generic"`
}

type rawCraigslistConfig struct {
	Enabled *bool    `yaml:"enabled"`
	Sites   []string `yaml:"sites"`
}

type rawToggle struct {
	Enabled *bool `yaml:"enabled"`
}

type rawFilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	MaxAge               string   `yaml:"max_age"`
}

type rawOpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	Timeout        string `yaml:"timeout"`
}

type rawScrapeConfig struct {
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
	MinDelay  string `yaml:"min_delay"`
}

type rawStoreConfig struct {
	Type      string `yaml:"type"`
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

type rawMoodConfig struct {
	Shots *int `yaml:"shots"`
}

// defaultSkills and defaultGoals describe the built-in sample applicant.
var (
	defaultName   = "Ada Quantum-Smith"
	defaultSkills = []string{
		"Custom AES-GCM encryption platform (0 CVEs).",
		"20+ web apps (Django/FastAPI/React) with OWASP-top-10 hardening.",
		"12 Android apps (Kotlin), 500k installs, <0.2% ANR.",
		"Reverse geocoder: <6 MB RAM, <1 ms lookup, edge-ready.",
		"CMS-driven sites with CSP and Subresource Integrity.",
		"Fine-tuned Llama-3-70B for code-gen; built multi-agent AI devbot.",
	}
	defaultGoals = "Lead secure, AI-augmented engineering teams building products " +
		"with outsized social impact while protecting personal time for " +
		"family, fitness, and open-source mentorship."
)

// Resolve picks the config file: the flag value, then $JOBAPPLICATOR_CONFIG,
// then ./config.yaml if it exists. An empty result means defaults only.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// LoadEnvFiles loads KEY=value pairs from the given .env files into the
// process environment. Missing files are skipped; existing variables win.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, applies defaults and
// environment overrides, validates it, and returns Config. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given, before
// environment overrides.
func Default() *Config {
	cfg, err := build(rawConfig{})
	if err != nil {
		panic(err) // defaults always parse
	}
	return cfg
}

func build(raw rawConfig) (*Config, error) {
	interval, err := parseDuration("polling_interval", raw.PollingInterval, defaultInterval)
	if err != nil {
		return nil, err
	}
	maxAge, err := parseDuration("filters.max_age", raw.Filters.MaxAge, 0)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := parseDuration("openai.timeout", raw.OpenAI.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}
	scrapeTimeout, err := parseDuration("scrape.timeout", raw.Scrape.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("scrape.min_delay", raw.Scrape.MinDelay, defaultMinDelay)
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("store.retention", raw.Store.Retention, 0)
	if err != nil {
		return nil, err
	}

	shots := defaultShots
	if raw.Mood.Shots != nil {
		shots = *raw.Mood.Shots
	}

	cfg := &Config{
		Query:           strings.ToLower(strings.TrimSpace(orDefault(raw.Query, defaultQuery))),
		DataDir:         orDefault(raw.DataDir, defaultDataDir),
		MaxApply:        raw.MaxApply,
		PollingInterval: interval,
		Applicant: ApplicantConfig{
			Name:        orDefault(raw.Applicant.Name, defaultName),
			Skills:      raw.Applicant.Skills,
			CareerGoals: orDefault(raw.Applicant.CareerGoals, defaultGoals),
			StyleFile:   orDefault(raw.Applicant.StyleFile, defaultStyleFile),
		},
		Boards: BoardsConfig{
			Craigslist: CraigslistConfig{
				Enabled: enabled(raw.Boards.Craigslist.Enabled),
				Sites:   raw.Boards.Craigslist.Sites,
			},
			RemoteOK:       enabled(raw.Boards.RemoteOK.Enabled),
			WeWorkRemotely: enabled(raw.Boards.WeWorkRemotely.Enabled),
			Generic:        raw.Boards.Generic,
		},
		Filters: FilterConfig{
			TitleKeywords:        raw.Filters.TitleKeywords,
			TitleExcludeKeywords: raw.Filters.TitleExcludeKeywords,
			MaxAge:               maxAge,
		},
		OpenAI: OpenAIConfig{
			BaseURL:        orDefault(raw.OpenAI.BaseURL, defaultOpenAIBaseURL),
			APIKey:         raw.OpenAI.APIKey,
			ChatModel:      orDefault(raw.OpenAI.ChatModel, defaultChatModel),
			EmbeddingModel: orDefault(raw.OpenAI.EmbeddingModel, defaultEmbeddingModel),
			Timeout:        aiTimeout,
		},
		Scrape: ScrapeConfig{
			Timeout:   scrapeTimeout,
			UserAgent: orDefault(raw.Scrape.UserAgent, defaultUserAgent),
			MinDelay:  minDelay,
		},
		Store: StoreConfig{
			Type:      orDefault(raw.Store.Type, "sqlite"),
			Path:      raw.Store.Path,
			Retention: retention,
		},
		Notification: raw.Notification,
		Mood:         MoodConfig{Shots: shots},
	}
	if cfg.MaxApply == 0 {
		cfg.MaxApply = defaultMaxApply
	}
	if len(cfg.Applicant.Skills) == 0 {
		cfg.Applicant.Skills = append([]string(nil), defaultSkills...)
	}
	if len(cfg.Boards.Craigslist.Sites) == 0 {
		cfg.Boards.Craigslist.Sites = []string{"newyork"}
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	return cfg, nil
}

// applyEnv lets the well-known variables override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TARGET_QID")); v != "" {
		cfg.Query = strings.ToLower(v)
	}
	if v := os.Getenv("CRAIGSLIST_SITES"); v != "" {
		var sites []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sites = append(sites, s)
			}
		}
		if len(sites) > 0 {
			cfg.Boards.Craigslist.Sites = sites
		}
	}
	if v := os.Getenv("USER_STYLE_FILE"); v != "" {
		cfg.Applicant.StyleFile = v
	}
	if v := os.Getenv("APPLICANT_NAME"); v != "" {
		cfg.Applicant.Name = v
	}
}

func validate(cfg *Config) error {
	if cfg.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if cfg.MaxApply < 1 {
		return fmt.Errorf("max_apply must be at least 1, got %d", cfg.MaxApply)
	}
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.Filters.MaxAge < 0 {
		return fmt.Errorf("filters.max_age must not be negative, got %v", cfg.Filters.MaxAge)
	}
	if cfg.Scrape.Timeout <= 0 {
		return fmt.Errorf("scrape.timeout must be positive, got %v", cfg.Scrape.Timeout)
	}
	if cfg.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive, got %v", cfg.OpenAI.Timeout)
	}
	if cfg.Mood.Shots < 0 {
		return fmt.Errorf("mood.shots must not be negative, got %d", cfg.Mood.Shots)
	}

	for i, g := range cfg.Boards.Generic {
		if !strings.HasPrefix(g.URL, "http://") && !strings.HasPrefix(g.URL, "https://") {
			return fmt.Errorf("boards.generic[%d].url must be an http(s) URL, got %q", i, g.URL)
		}
	}
	if len(cfg.Boards.Enabled()) == 0 {
		return fmt.Errorf("at least one board must be enabled")
	}

	switch cfg.Store.Type {
	case "sqlite", "json", "none":
	default:
		return fmt.Errorf("store.type must be sqlite, json or none, got %q", cfg.Store.Type)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be log or slack, got %q", cfg.Notification.Type)
	}

	return nil
}

// ErrNoAPIKey is returned by RequireOpenAI when no key is configured.
var ErrNoAPIKey = errors.New("openai.api_key (or OPENAI_API_KEY) is required")

// RequireOpenAI reports whether the commands that call OpenAI can run.
func (c *Config) RequireOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// Enabled returns a short name for every board that will be scraped.
func (b BoardsConfig) Enabled() []string {
	var names []string
	if b.Craigslist.Enabled {
		for _, s := range b.Craigslist.Sites {
			names = append(names, "Craigslist-"+s)
		}
	}
	if b.RemoteOK {
		names = append(names, "RemoteOK")
	}
	if b.WeWorkRemotely {
		names = append(names, "WWR")
	}
	for _, g := range b.Generic {
		names = append(names, g.DisplayName())
	}
	return names
}

// DisplayName is the board label used on jobs from this page.
func (g GenericBoard) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return "Generic"
}

// StorePath returns the seen-cache location for the configured store type.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Type == "json" {
		return filepath.Join(c.DataDir, "seen.json")
	}
	return filepath.Join(c.DataDir, "seen.db")
}

// LockPath is the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, ".lock")
}

// Style returns the contents of the applicant's style file, or "" when the
// file does not exist.
func (c *Config) Style() (string, error) {
	if c.Applicant.StyleFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Applicant.StyleFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read style file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func enabled(b *bool) bool {
	return b == nil || *b
}
