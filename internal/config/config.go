// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go-jss-crawler/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "configs/config.yaml"

type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Browser BrowserConfig `yaml:"browser"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Log     logger.Config `yaml:"log"`

	//Credentials come from env only (JASOSEOL_ID / JASOSEOL_PASSWORD)
	LoginID       string `yaml:"-"`
	LoginPassword string `yaml:"-"`

	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Scheduler
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`

	//Paths
	StatePath     string `yaml:"state_path" env:"STATE_PATH"`
	OutputDir     string `yaml:"output_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

type SiteConfig struct {
	BaseURL     string `yaml:"base_url"`
	CalendarURL string `yaml:"calendar_url"`
}

type BrowserConfig struct {
	Headless       bool     `yaml:"headless" env:"HEADLESS"`
	UserAgent      string   `yaml:"user_agent"`
	ViewportWidth  int      `yaml:"viewport_width"`
	ViewportHeight int      `yaml:"viewport_height"`
	BlockResources []string `yaml:"block_resources"`
}

type CrawlConfig struct {
	MaxMonthPages int `yaml:"max_month_pages"`
	// DetailPagesPerMinute paces detail-page visits; 0 disables pacing.
	DetailPagesPerMinute int      `yaml:"detail_pages_per_minute"`
	Timeouts             Timeouts `yaml:"timeouts"`
}

// Timeouts bounds every wait of a crawl. Settle values are plain pauses
// after clicks that trigger a re-render.
type Timeouts struct {
	Navigation   time.Duration `yaml:"navigation"`
	NetworkIdle  time.Duration `yaml:"network_idle"`
	Popup        time.Duration `yaml:"popup"`
	LoginForm    time.Duration `yaml:"login_form"`
	LoginConfirm time.Duration `yaml:"login_confirm"`
	TypingPause  time.Duration `yaml:"typing_pause"`
	Click        time.Duration `yaml:"click"`
	DayLookup    time.Duration `yaml:"day_lookup"`
	MonthChange  time.Duration `yaml:"month_change"`
	MonthSettle  time.Duration `yaml:"month_settle"`
	Overlay      time.Duration `yaml:"overlay"`
	OverlayIdle  time.Duration `yaml:"overlay_idle"`
	OverlayClose time.Duration `yaml:"overlay_close"`
	EndDate      time.Duration `yaml:"end_date"`
	JobList      time.Duration `yaml:"job_list"`
	EssayBlocks  time.Duration `yaml:"essay_blocks"`
	EssaySettle  time.Duration `yaml:"essay_settle"`
}

// problems lists bounded waits that are not positive (Playwright reads 0 as
// "wait forever") and pauses that are negative.
func (t Timeouts) problems() []string {
	waits := []struct {
		key string
		d   time.Duration
	}{
		{"navigation", t.Navigation},
		{"network_idle", t.NetworkIdle},
		{"popup", t.Popup},
		{"login_form", t.LoginForm},
		{"login_confirm", t.LoginConfirm},
		{"click", t.Click},
		{"day_lookup", t.DayLookup},
		{"month_change", t.MonthChange},
		{"overlay", t.Overlay},
		{"overlay_idle", t.OverlayIdle},
		{"overlay_close", t.OverlayClose},
		{"end_date", t.EndDate},
		{"job_list", t.JobList},
		{"essay_blocks", t.EssayBlocks},
	}
	pauses := []struct {
		key string
		d   time.Duration
	}{
		{"typing_pause", t.TypingPause},
		{"month_settle", t.MonthSettle},
		{"essay_settle", t.EssaySettle},
	}

	var out []string
	for _, w := range waits {
		if w.d <= 0 {
			out = append(out, fmt.Sprintf("crawl.timeouts.%s must be > 0, got %s", w.key, w.d))
		}
	}
	for _, p := range pauses {
		if p.d < 0 {
			out = append(out, fmt.Sprintf("crawl.timeouts.%s must be >= 0, got %s", p.key, p.d))
		}
	}
	return out
}

// DefaultTimeouts mirrors what the site needs on a normal day.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Navigation:   60 * time.Second,
		NetworkIdle:  20 * time.Second,
		Popup:        5 * time.Second,
		LoginForm:    15 * time.Second,
		LoginConfirm: 15 * time.Second,
		TypingPause:  800 * time.Millisecond,
		Click:        10 * time.Second,
		DayLookup:    15 * time.Second,
		MonthChange:  15 * time.Second,
		MonthSettle:  1500 * time.Millisecond,
		Overlay:      10 * time.Second,
		OverlayIdle:  5 * time.Second,
		OverlayClose: 5 * time.Second,
		EndDate:      10 * time.Second,
		JobList:      10 * time.Second,
		EssayBlocks:  5 * time.Second,
		EssaySettle:  500 * time.Millisecond,
	}
}

// Default returns a config with every default applied.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:     "https://jasoseol.com",
			CalendarURL: "https://jasoseol.com/recruit",
		},
		Browser: BrowserConfig{
			Headless:       true,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			ViewportWidth:  1200,
			ViewportHeight: 800,
			BlockResources: []string{"image", "media", "font"},
		},
		Crawl: CrawlConfig{
			MaxMonthPages:        12,
			DetailPagesPerMinute: 30,
			Timeouts:             DefaultTimeouts(),
		},
		Log:           logger.Config{Level: "info"},
		Schedule:      "0 7 * * *",
		Timezone:      "Asia/Seoul",
		StatePath:     "../.state/state.json",
		OutputDir:     "logs",
		ScreenshotDir: "logs/screenshots",
	}
}

// Load reads defaults, then the YAML file at path (missing file is fine),
// then .env and the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		//run on defaults + env
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("JASOSEOL_ID"); v != "" {
		c.LoginID = v
	}
	if v := os.Getenv("JASOSEOL_PASSWORD"); v != "" {
		c.LoginPassword = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Browser.Headless = b
	}
	if v := os.Getenv("STATE_PATH"); v != "" {
		c.StatePath = v
	}
	return nil
}

// Validate rejects configs the crawler cannot run with. Credentials are not
// checked here: a saved session makes them unnecessary.
func (c *Config) Validate() error {
	var problems []string
	if c.Site.BaseURL == "" {
		problems = append(problems, "site.base_url is required")
	}
	if c.Site.CalendarURL == "" {
		problems = append(problems, "site.calendar_url is required")
	}
	if c.StatePath == "" {
		problems = append(problems, "state_path is required")
	}
	if c.Crawl.MaxMonthPages < 1 {
		problems = append(problems, "crawl.max_month_pages must be >= 1")
	}
	problems = append(problems, c.Crawl.Timeouts.problems()...)
	if c.Crawl.DetailPagesPerMinute < 0 {
		problems = append(problems, "crawl.detail_pages_per_minute must be >= 0")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		problems = append(problems, "telegram_token and telegram_chat_id must be set together")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("timezone %q: %v", c.Timezone, err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
