package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileEnv names the optional TOML file layered under the environment.
const ConfigFileEnv = "SMARTCHAT_CONFIG"

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	OCR     OCRConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	UploadMaxBytes int64
}

// OCRConfig 描述图片文字识别配置。
type OCRConfig struct {
	Engine        string
	TesseractPath string
	Language      string
	VisionModel   string
	Timeout       time.Duration
}

// SessionConfig bounds the in-memory conversation buffers.
type SessionConfig struct {
	HistoryLimit int
	ContextLimit int
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, falling back to the TOML
// file named by SMARTCHAT_CONFIG and then to defaults.
func Load() (*Config, error) {
	src, err := newSource(strings.TrimSpace(os.Getenv(ConfigFileEnv)))
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig(src)
	if err != nil {
		return nil, err
	}
	ai, err := loadAIConfig(src)
	if err != nil {
		return nil, err
	}
	ocr, err := loadOCRConfig(src)
	if err != nil {
		return nil, err
	}
	session, err := loadSessionConfig(src)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		OCR:     ocr,
		Session: session,
		Log: LogConfig{
			Level:  src.getOrDefault("LOG_LEVEL", "info"),
			Format: src.getOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

// newSource loads the optional TOML file. Keys are matched case-insensitively
// against the environment variable names, e.g. `ollama_model = "llava"`.
func newSource(path string) (source, error) {
	src := source{file: map[string]string{}}
	if path == "" {
		return src, nil
	}

	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return source{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	for key, value := range raw {
		switch v := value.(type) {
		case map[string]any, []map[string]any:
			return source{}, fmt.Errorf("config file %s: key %q must be a plain value", path, key)
		default:
			src.file[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return src, nil
}

func (s source) get(key string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(s.file[key])
}

func (s source) getOrDefault(key, defaultValue string) string {
	if value := s.get(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) intOrDefault(key string, defaultValue int) (int, error) {
	raw := s.get(key)
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func (s source) secondsOrDefault(key string, defaultValue int) (time.Duration, error) {
	seconds, err := s.intOrDefault(key, defaultValue)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(src source) (ServerConfig, error) {
	port := src.getOrDefault("PORT", "5000")

	maxBytes, err := src.intOrDefault("UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		return ServerConfig{}, err
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	addr := port
	if !strings.Contains(port, ":") {
		addr = ":" + port
	}
	return ServerConfig{Addr: addr, UploadMaxBytes: int64(maxBytes)}, nil
}

func loadOCRConfig(src source) (OCRConfig, error) {
	engine := strings.ToLower(src.getOrDefault("OCR_ENGINE", "tesseract"))
	switch engine {
	case "tesseract", "vision", "none":
	default:
		return OCRConfig{}, fmt.Errorf("invalid OCR_ENGINE value %q", engine)
	}

	timeout, err := src.secondsOrDefault("OCR_TIMEOUT", 60)
	if err != nil {
		return OCRConfig{}, err
	}

	return OCRConfig{
		Engine:        engine,
		TesseractPath: src.getOrDefault("TESSERACT_PATH", "tesseract"),
		Language:      src.getOrDefault("OCR_LANGUAGE", "eng"),
		VisionModel:   src.getOrDefault("OCR_VISION_MODEL", "llava"),
		Timeout:       timeout,
	}, nil
}

func loadSessionConfig(src source) (SessionConfig, error) {
	history, err := src.intOrDefault("HISTORY_LIMIT", 20)
	if err != nil {
		return SessionConfig{}, err
	}
	contextLimit, err := src.intOrDefault("CONTEXT_LIMIT", 10)
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{HistoryLimit: history, ContextLimit: contextLimit}, nil
}
