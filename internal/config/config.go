package config

import (
  "fmt"
  "strings"

  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/utils"
)

const (
  StorePostgres   = "postgres"
  StoreMongo      = "mongo"
  StoreFirestore  = "firestore"
  StoreMemory     = "memory"

  LLMGemini       = "gemini"
  LLMEcho         = "echo"

  GeminiBackendAPI    = "gemini"
  GeminiBackendVertex = "vertex"
)

type Postgres struct {
  Host        string
  Port        string
  User        string
  Password    string
  Name        string
  SSLMode     string
}

type Mongo struct {
  URI         string
  Database    string
}

type Gemini struct {
  APIKey      string
  Model       string
  Backend     string
  Project     string
  Location    string
}

type Auth struct {
  JWTSecret   string
  Issuer      string
  Audience    string
  CookieName  string
}

type Redis struct {
  Address     string
  Password    string
  Channel     string
  DB          int
  // Required makes startup fail instead of falling back to local-only events.
  Required    bool
}

// DefaultMaxCompletionBodyBytes bounds how much of a completion request is read.
const DefaultMaxCompletionBodyBytes = 1 << 20

type Config struct {
  Port              string
  StoreDriver       string
  LLMDriver         string
  CORSOrigins       []string
  FirestoreProject  string
  MaxCompletionBodyBytes  int

  Postgres          Postgres
  Mongo             Mongo
  Gemini            Gemini
  Auth              Auth
  Redis             Redis
}

// Load reads configuration from the environment.
func Load(log *logger.Logger) (*Config, error) {
  log.Info("Attempting to load environment variables for Config now...")
  cfg := &Config{
    Port:             utils.GetEnv("PORT", "8080", log),
    StoreDriver:      strings.ToLower(utils.GetEnv("STORE_DRIVER", StorePostgres, log)),
    LLMDriver:        strings.ToLower(utils.GetEnv("LLM_DRIVER", LLMGemini, log)),
    CORSOrigins:      utils.GetEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}, log),
    FirestoreProject: utils.GetEnv("FIRESTORE_PROJECT", utils.GetEnv("GCP_PROJECT", "", log), log),
    MaxCompletionBodyBytes: utils.GetEnvAsInt("COMPLETION_MAX_BODY_BYTES", DefaultMaxCompletionBodyBytes, log),
    Postgres: Postgres{
      Host:       utils.GetEnv("POSTGRES_HOST", "localhost", log),
      Port:       utils.GetEnv("POSTGRES_PORT", "5432", log),
      User:       utils.GetEnv("POSTGRES_USER", "postgres", log),
      Password:   utils.GetSecretEnv("POSTGRES_PASSWORD", "", log),
      Name:       utils.GetEnv("POSTGRES_NAME", "batai", log),
      SSLMode:    utils.GetEnv("POSTGRES_SSLMODE", "disable", log),
    },
    Mongo: Mongo{
      URI:        utils.GetSecretEnv("MONGO_URI", "", log),
      Database:   utils.GetEnv("MONGO_DATABASE", "batai", log),
    },
    Gemini: Gemini{
      APIKey:     utils.GetSecretEnv("GEMINI_API_KEY", "", log),
      Model:      utils.GetEnv("GEMINI_MODEL", "gemini-1.5-flash", log),
      Backend:    strings.ToLower(utils.GetEnv("GEMINI_BACKEND", GeminiBackendAPI, log)),
      Project:    utils.GetEnv("GCP_PROJECT", "", log),
      Location:   utils.GetEnv("GCP_LOCATION", "us-central1", log),
    },
    Auth: Auth{
      JWTSecret:  utils.GetSecretEnv("AUTH_JWT_SECRET", "", log),
      Issuer:     utils.GetEnv("AUTH_ISSUER", "", log),
      Audience:   utils.GetEnv("AUTH_AUDIENCE", "", log),
      CookieName: utils.GetEnv("AUTH_COOKIE_NAME", "", log),
    },
    Redis: Redis{
      Address:    utils.GetEnv("REDIS_ADDRESS", "", log),
      Password:   utils.GetSecretEnv("REDIS_PASSWORD", "", log),
      Channel:    utils.GetEnv("REDIS_CHANNEL", "batai_conversation_events", log),
      DB:         utils.GetEnvAsInt("REDIS_DB", 0, log),
      Required:   utils.GetEnvAsBool("REDIS_REQUIRED", false, log),
    },
  }
  if err := cfg.Validate(); err != nil {
    return nil, err
  }
  log.Info("Environment variables loaded for Config :)", "storeDriver", cfg.StoreDriver, "llmDriver", cfg.LLMDriver)
  return cfg, nil
}

func (c *Config) Validate() error {
  switch c.StoreDriver {
  case StorePostgres, StoreMemory:
  case StoreMongo:
    if c.Mongo.URI == "" {
      return fmt.Errorf("STORE_DRIVER=mongo requires MONGO_URI")
    }
  case StoreFirestore:
    if c.FirestoreProject == "" {
      return fmt.Errorf("STORE_DRIVER=firestore requires FIRESTORE_PROJECT or GCP_PROJECT")
    }
  default:
    return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
  }
  switch c.LLMDriver {
  case LLMEcho:
  case LLMGemini:
    switch c.Gemini.Backend {
    case GeminiBackendAPI:
      if c.Gemini.APIKey == "" {
        return fmt.Errorf("LLM_DRIVER=gemini requires GEMINI_API_KEY")
      }
    case GeminiBackendVertex:
      if c.Gemini.Project == "" {
        return fmt.Errorf("GEMINI_BACKEND=vertex requires GCP_PROJECT")
      }
    default:
      return fmt.Errorf("unknown GEMINI_BACKEND %q", c.Gemini.Backend)
    }
  default:
    return fmt.Errorf("unknown LLM_DRIVER %q", c.LLMDriver)
  }
  if c.Auth.JWTSecret == "" {
    return fmt.Errorf("AUTH_JWT_SECRET is required")
  }
  if c.MaxCompletionBodyBytes <= 0 {
    return fmt.Errorf("COMPLETION_MAX_BODY_BYTES must be positive, got %d", c.MaxCompletionBodyBytes)
  }
  if c.Redis.DB < 0 {
    return fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB)
  }
  if c.Redis.Required && c.Redis.Address == "" {
    return fmt.Errorf("REDIS_REQUIRED=true requires REDIS_ADDRESS")
  }
  return nil
}
