package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Groq        GroqConfig        `yaml:"groq"`
	Vision      VisionConfig      `yaml:"vision"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Anthropic   AnthropicConfig   `yaml:"anthropic"`
	Speech      SpeechConfig      `yaml:"speech"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
	GTTS        GTTSConfig        `yaml:"gtts"`
	Artifacts   ArtifactsConfig   `yaml:"artifacts"`
	Server      ServerConfig      `yaml:"server"`
	Recorder    RecorderConfig    `yaml:"recorder"`
	Prompt      PromptConfig      `yaml:"prompt"`
	Arbitration ArbitrationConfig `yaml:"arbitration"`
	Log         LogConfig         `yaml:"log"`
}

type GroqConfig struct {
	APIKey      string        `yaml:"api_key" env:"GROQ_API_KEY"`
	BaseURL     string        `yaml:"base_url"`
	STTModel    string        `yaml:"stt_model"`
	VisionModel string        `yaml:"vision_model"`
	Language    string        `yaml:"language"`
	Timeout     time.Duration `yaml:"timeout"`
}

type VisionConfig struct {
	Backend      string `yaml:"backend"`
	MaxImageSize int64  `yaml:"max_image_size"`
}

type GeminiConfig struct {
	APIKey  string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey  string        `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
}

type ElevenLabsConfig struct {
	APIKey       string `yaml:"api_key" env:"ELEVENLABS_API_KEY"`
	VoiceID      string `yaml:"voice_id"`
	Model        string `yaml:"model"`
	OutputFormat string `yaml:"output_format"`
}

type GTTSConfig struct {
	Language string `yaml:"language"`
	TLD      string `yaml:"tld"`
}

type ArtifactsConfig struct {
	Dir           string        `yaml:"dir"`
	Retention     time.Duration `yaml:"retention"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" env:"DOCTOR_ADDR"`
	AuthToken   string `yaml:"auth_token" env:"DOCTOR_AUTH_TOKEN"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	RateLimit   int    `yaml:"rate_limit"`
	// TrustedProxies lists peer IPs or CIDRs whose X-Forwarded-For header
	// is believed for rate limiting.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type RecorderConfig struct {
	SampleRate     int           `yaml:"sample_rate"`
	StartTimeout   time.Duration `yaml:"start_timeout"`
	MaxDuration    time.Duration `yaml:"max_duration"`
	SilenceTimeout time.Duration `yaml:"silence_timeout"`
}

type PromptConfig struct {
	System   string `yaml:"system"`
	Fallback string `yaml:"fallback"`
}

type ArbitrationConfig struct {
	TextRecovery bool `yaml:"text_recovery"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// LoadDotEnv loads variables from path into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the YAML file at path, expanding ${VAR} references, then lets
// environment variables override credentials, log settings, and the listen
// address.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration built only from the environment, for
// running without a config file.
func Default() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = "https://api.groq.com/openai/v1/"
	}
	if c.Groq.STTModel == "" {
		c.Groq.STTModel = "whisper-large-v3"
	}
	if c.Groq.VisionModel == "" {
		c.Groq.VisionModel = "llama-3.2-11b-vision-preview"
	}
	if c.Groq.Language == "" {
		c.Groq.Language = "en"
	}
	if c.Groq.Timeout == 0 {
		c.Groq.Timeout = 60 * time.Second
	}
	if c.Vision.Backend == "" {
		c.Vision.Backend = "groq"
	}
	if c.Vision.MaxImageSize == 0 {
		c.Vision.MaxImageSize = 15 * 1024 * 1024
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = 60 * time.Second
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Anthropic.Timeout == 0 {
		c.Anthropic.Timeout = 60 * time.Second
	}
	if c.Speech.Backend == "" {
		c.Speech.Backend = "elevenlabs"
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = 60 * time.Second
	}
	if c.ElevenLabs.VoiceID == "" {
		c.ElevenLabs.VoiceID = "9BWtsMINqrJLrRacOk9x"
	}
	if c.ElevenLabs.Model == "" {
		c.ElevenLabs.Model = "eleven_turbo_v2"
	}
	if c.ElevenLabs.OutputFormat == "" {
		c.ElevenLabs.OutputFormat = "mp3_22050_32"
	}
	if c.GTTS.Language == "" {
		c.GTTS.Language = "en"
	}
	if c.GTTS.TLD == "" {
		c.GTTS.TLD = "com"
	}
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "./artifacts"
	}
	if c.Artifacts.Retention == 0 {
		c.Artifacts.Retention = time.Hour
	}
	if c.Artifacts.SweepInterval == 0 {
		c.Artifacts.SweepInterval = 10 * time.Minute
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":7860"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 10
	}
	if c.Recorder.SampleRate == 0 {
		c.Recorder.SampleRate = 16000
	}
	if c.Recorder.StartTimeout == 0 {
		c.Recorder.StartTimeout = 20 * time.Second
	}
	if c.Recorder.MaxDuration == 0 {
		c.Recorder.MaxDuration = 30 * time.Second
	}
	if c.Recorder.SilenceTimeout == 0 {
		c.Recorder.SilenceTimeout = time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	switch c.Vision.Backend {
	case "groq", "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown vision backend %q", c.Vision.Backend)
	}

	switch c.Speech.Backend {
	case "elevenlabs", "gtts":
	default:
		return fmt.Errorf("unknown speech backend %q", c.Speech.Backend)
	}

	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must not be negative")
	}

	return nil
}
