package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/codec"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the client agent. Values are resolved once
// at startup: defaults first, then the optional YAML file, then environment
// variables. Components receive the resolved values through their
// constructors and never read the environment themselves.
type Config struct {
	ServerBaseURL string `yaml:"server_base_url"`

	ClientID      string `yaml:"client_id"`
	Authorization string `yaml:"authorization"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`

	Codec string `yaml:"codec"`

	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`

	Launcher           string `yaml:"launcher"`
	TrainingExecutor   string `yaml:"training_executor"`
	TrainingScript     string `yaml:"training_script"`
	TrainingWorkingDir string `yaml:"training_working_dir"`

	KubeConfigPath string `yaml:"kube_config_path"`
	K8sNamespace   string `yaml:"k8s_namespace"`
	TrainingImage  string `yaml:"training_image"`

	TLSCertPath string `yaml:"tls_cert_path"`
	TLSKeyPath  string `yaml:"tls_key_path"`
	TLSCAPath   string `yaml:"tls_ca_path"`

	LogLevel string `yaml:"log_level"`
}

// Load resolves the configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
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

func defaults() *Config {
	return &Config{
		ServerBaseURL:      "http://localhost:8000",
		Codec:              codec.Raw_CodecName,
		ListenHost:         "0.0.0.0",
		ListenPort:         8101,
		Launcher:           launcher.Exec_LauncherName,
		TrainingExecutor:   "python",
		TrainingScript:     "src/main.py",
		TrainingWorkingDir: ".",
		K8sNamespace:       "fl",
		LogLevel:           "INFO",
	}
}

func (cfg *Config) applyEnv() error {
	cfg.ServerBaseURL = getenv("FL_SERVER_BASE_URL", cfg.ServerBaseURL)
	cfg.ClientID = getenv("FL_CLIENT_ID", cfg.ClientID)
	cfg.Authorization = getenv("FL_AUTHORIZATION", cfg.Authorization)
	cfg.Username = getenv("FL_USERNAME", cfg.Username)
	cfg.Password = getenv("FL_PASSWORD", cfg.Password)
	cfg.Codec = getenv("FL_CODEC", cfg.Codec)
	cfg.ListenHost = getenv("FL_CLIENT_LISTEN_HOST", cfg.ListenHost)
	cfg.Launcher = getenv("FL_LAUNCHER", cfg.Launcher)
	cfg.TrainingExecutor = getenv("FL_TRAINING_EXECUTOR", cfg.TrainingExecutor)
	cfg.TrainingScript = getenv("FL_TRAINING_SCRIPT", cfg.TrainingScript)
	cfg.TrainingWorkingDir = getenv("FL_TRAINING_WORKING_DIR", cfg.TrainingWorkingDir)
	cfg.KubeConfigPath = getenv("FL_KUBE_CONFIG_PATH", cfg.KubeConfigPath)
	cfg.K8sNamespace = getenv("FL_K8S_NAMESPACE", cfg.K8sNamespace)
	cfg.TrainingImage = getenv("FL_TRAINING_IMAGE", cfg.TrainingImage)
	cfg.TLSCertPath = getenv("FL_TLS_CERT_PATH", cfg.TLSCertPath)
	cfg.TLSKeyPath = getenv("FL_TLS_KEY_PATH", cfg.TLSKeyPath)
	cfg.TLSCAPath = getenv("FL_TLS_CA_PATH", cfg.TLSCAPath)
	cfg.LogLevel = getenv("FL_LOG_LEVEL", cfg.LogLevel)

	if value, ok := os.LookupEnv("FL_CLIENT_LISTEN_PORT"); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parsing FL_CLIENT_LISTEN_PORT: %w", err)
		}
		cfg.ListenPort = port
	}
	return nil
}

// Validate rejects configurations the agent could not run with. Codec and
// launcher names are resolved separately at startup, which already rejects
// unknown names.
func (cfg *Config) Validate() error {
	if cfg.ServerBaseURL == "" {
		return fmt.Errorf("server_base_url must not be empty")
	}
	if cfg.ListenPort <= 0 || cfg.ListenPort > 65535 {
		return fmt.Errorf("listen_port out of range: %d", cfg.ListenPort)
	}
	if cfg.ClientID != "" {
		if _, err := uuid.Parse(cfg.ClientID); err != nil {
			return fmt.Errorf("client_id is not a valid UUID: %w", err)
		}
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return fmt.Errorf("username and password must be configured together")
	}
	if cfg.Launcher == launcher.K8s_LauncherName && cfg.TrainingImage == "" {
		return fmt.Errorf("training_image must be set for the k8s launcher")
	}
	if (cfg.TLSCertPath == "") != (cfg.TLSKeyPath == "") {
		return fmt.Errorf("tls_cert_path and tls_key_path must be configured together")
	}
	return nil
}

// ListenAddress returns the host:port the notification server binds to.
func (cfg *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", cfg.ListenHost, cfg.ListenPort)
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
