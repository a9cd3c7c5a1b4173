package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port           int           `yaml:"port" default:"5001"`
		Host           string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout    time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout   time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout    time.Duration `yaml:"idle_timeout" default:"60s"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"90s"`
		MaxBodySize    string        `yaml:"max_body_size" default:"16M"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps" default:"5"`
		RateLimitBurst int           `yaml:"rate_limit_burst" default:"10"`
	} `yaml:"server"`

	Rendering struct {
		APIToken    string        `yaml:"api_token"`
		AccountID   string        `yaml:"account_id"`
		BaseURL     string        `yaml:"base_url" default:"https://api.cloudflare.com/client/v4"`
		HTTPTimeout time.Duration `yaml:"http_timeout" default:"0"` // 0 disables the local timeout

		Presets struct {
			Navigation struct {
				WaitUntil string        `yaml:"wait_until" default:"networkidle0"`
				Timeout   time.Duration `yaml:"timeout" default:"30s"`
			} `yaml:"navigation"`
			Screenshot struct {
				FullPage       *bool `yaml:"full_page" default:"true"`
				OmitBackground *bool `yaml:"omit_background" default:"false"`
			} `yaml:"screenshot"`
			Viewport struct {
				Width  int `yaml:"width" default:"1280"`
				Height int `yaml:"height" default:"720"`
			} `yaml:"viewport"`
			PDF struct {
				RejectResourceTypes  []string `yaml:"reject_resource_types"`
				RejectRequestPattern []string `yaml:"reject_request_pattern"`
			} `yaml:"pdf"`
		} `yaml:"presets"`
	} `yaml:"rendering"`

	Storage struct {
		Directory string `yaml:"directory" default:"screenshots"`
	} `yaml:"storage"`

	LLM struct {
		Provider     string        `yaml:"provider" default:"claude"`
		APIKey       string        `yaml:"api_key"`
		Model        string        `yaml:"model" default:"claude-3-7-sonnet-latest"`
		MaxTokens    int           `yaml:"max_tokens" default:"2048"`
		Temperature  float32       `yaml:"temperature" default:"0.7"`
		Timeout      time.Duration `yaml:"timeout" default:"120s"`
		MaxPageChars int           `yaml:"max_page_chars" default:"12000"`
	} `yaml:"llm"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		// Extra field names to redact on top of the built-in list
		RedactKeys []string `yaml:"redact_keys"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		ShareTTL time.Duration `yaml:"share_ttl" default:"24h"`
	} `yaml:"redis"`

	DigitalOcean struct {
		Spaces struct {
			BucketURL       string `yaml:"bucket_url"`
			CDNEndpoint     string `yaml:"cdn_endpoint"`
			AccessKeyID     string `yaml:"access_key_id"`
			AccessKeySecret string `yaml:"access_key_secret"`
			Region          string `yaml:"region" default:"blr1"`
			BucketName      string `yaml:"bucket_name"`
			Prefix          string `yaml:"prefix" default:"webshot"`
		} `yaml:"spaces"`
	} `yaml:"digitalocean"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 5001
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 120 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.RequestTimeout = 90 * time.Second
	config.Server.MaxBodySize = "16M"
	config.Server.RateLimitRPS = 5
	config.Server.RateLimitBurst = 10

	config.Rendering.BaseURL = "https://api.cloudflare.com/client/v4"
	config.Rendering.Presets.Navigation.WaitUntil = "networkidle0"
	config.Rendering.Presets.Navigation.Timeout = 30 * time.Second
	config.Rendering.Presets.Screenshot.FullPage = boolPtr(true)
	config.Rendering.Presets.Screenshot.OmitBackground = boolPtr(false)
	config.Rendering.Presets.Viewport.Width = 1280
	config.Rendering.Presets.Viewport.Height = 720
	config.Rendering.Presets.PDF.RejectResourceTypes = []string{"image"}
	config.Rendering.Presets.PDF.RejectRequestPattern = []string{`/^.*\.(css)`}

	config.Storage.Directory = "screenshots"

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-7-sonnet-latest"
	config.LLM.MaxTokens = 2048
	config.LLM.Temperature = 0.7
	config.LLM.Timeout = 120 * time.Second
	config.LLM.MaxPageChars = 12000

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second
	config.Redis.ShareTTL = 24 * time.Hour

	config.DigitalOcean.Spaces.Region = "blr1"
	config.DigitalOcean.Spaces.Prefix = "webshot"

	return config
}

func boolPtr(b bool) *bool { return &b }

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			c.Server.RateLimitRPS = v
		}
	}

	// Rendering service credentials
	if token := os.Getenv("CLOUDFLARE_API_TOKEN"); token != "" {
		c.Rendering.APIToken = token
	}

	if accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID"); accountID != "" {
		c.Rendering.AccountID = accountID
	}

	if baseURL := os.Getenv("CLOUDFLARE_API_BASE_URL"); baseURL != "" {
		c.Rendering.BaseURL = baseURL
	}

	if httpTimeout := os.Getenv("RENDERING_HTTP_TIMEOUT"); httpTimeout != "" {
		if timeout, err := time.ParseDuration(httpTimeout); err == nil {
			c.Rendering.HTTPTimeout = timeout
		}
	}

	if folder := os.Getenv("SCREENSHOT_FOLDER"); folder != "" {
		c.Storage.Directory = folder
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	// DigitalOcean Spaces configuration
	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.DigitalOcean.Spaces.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.DigitalOcean.Spaces.CDNEndpoint = cdnEndpoint
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.DigitalOcean.Spaces.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.DigitalOcean.Spaces.AccessKeySecret = accessKeySecret
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.DigitalOcean.Spaces.Region = region
	}

	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.DigitalOcean.Spaces.BucketName = bucketName
	}
}

// SpacesEnabled reports whether enough Spaces settings are present to mirror artifacts
func (c *Config) SpacesEnabled() bool {
	s := c.DigitalOcean.Spaces
	return s.AccessKeyID != "" && s.AccessKeySecret != "" && s.BucketName != ""
}

// RedisEnabled reports whether a Redis URL was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

// LLMEnabled reports whether an LLM API key was configured
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}
