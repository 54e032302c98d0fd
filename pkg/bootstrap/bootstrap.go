package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"

	shared "github.com/Megloux/mosaic/pkg"
	"github.com/Megloux/mosaic/pkg/backend"
	apperrors "github.com/Megloux/mosaic/pkg/errors"
	"github.com/Megloux/mosaic/pkg/formstore"
	"github.com/Megloux/mosaic/pkg/infrastructure/database"
	infrapubsub "github.com/Megloux/mosaic/pkg/infrastructure/pubsub"
	"github.com/Megloux/mosaic/pkg/infrastructure/secrets"
	infrastorage "github.com/Megloux/mosaic/pkg/infrastructure/storage"
)

// Database backends selectable with DATABASE_BACKEND.
const (
	BackendSupabase  = "supabase"
	BackendFirestore = "firestore"
)

// Config holds standard configuration for all services
type Config struct {
	ProjectID       string
	EnablePublish   bool
	EnableGCS       bool
	DatabaseBackend string
	ImportSource    string
	FormRulesFile   string
	Backend         *backend.Config
}

// Service holds initialized dependencies
type Service struct {
	DB      shared.Database
	Store   shared.BlobStore // nil unless ENABLE_GCS=true
	Pub     shared.Publisher
	Secrets shared.SecretStore
	Admin   *backend.Client // service-role client, nil on the firestore backend
	Config  *Config

	FormRules formstore.Rules
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = shared.ProjectID
	}

	dbBackend := strings.ToLower(os.Getenv("DATABASE_BACKEND"))
	if dbBackend == "" {
		dbBackend = BackendSupabase
	}

	importSource := os.Getenv("IMPORT_SOURCE")
	if importSource == "" {
		importSource = shared.DefaultImportSource
	}

	return &Config{
		ProjectID:       projectID,
		EnablePublish:   os.Getenv("ENABLE_PUBLISH") == "true",
		EnableGCS:       os.Getenv("ENABLE_GCS") == "true",
		DatabaseBackend: dbBackend,
		ImportSource:    importSource,
		FormRulesFile:   os.Getenv("FORM_RULES_FILE"),
		Backend:         backend.LoadConfig(),
	}
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to Cloud Logging keys
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler prefixes the message with [component] when the record
// carries a component attribute, and drops the attribute.
type ComponentHandler struct {
	slog.Handler
	component string
}

// Handle implements slog.Handler
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
			return false
		}
		return true
	})

	if component != "" {
		out := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", component, r.Message), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			if a.Key != "component" {
				out.AddAttrs(a)
			}
			return true
		})
		r = out
	}

	return h.Handler.Handle(ctx, r)
}

// WithAttrs keeps component handling for loggers derived with With.
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "component" {
			component = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	return &ComponentHandler{Handler: h.Handler.WithAttrs(rest), component: component}
}

// WithGroup keeps component handling for grouped loggers.
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithGroup(name), component: h.component}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return &ComponentHandler{Handler: slog.NewJSONHandler(w, GetSlogHandlerOptions(level))}
}

var logOutput io.Writer = os.Stdout

// SetLogOutput redirects loggers created afterwards. CLIs send logs to
// stderr so stdout stays readable.
func SetLogOutput(w io.Writer) {
	logOutput = w
}

// InitLogger configures structured logging with Cloud Logging compatible keys
func InitLogger() {
	slog.SetDefault(slog.New(newHandler(logOutput, parseLevel(os.Getenv("LOG_LEVEL")))))
}

// NewLogger creates a configured logger instance
func NewLogger(serviceName string) *slog.Logger {
	return slog.New(newHandler(logOutput, parseLevel(os.Getenv("LOG_LEVEL")))).With("service", serviceName)
}

// LoadFormRules returns the form coercion rules, layering FORM_RULES_FILE
// over the defaults when it is set.
func LoadFormRules(cfg *Config) (formstore.Rules, error) {
	if cfg.FormRulesFile == "" {
		return formstore.DefaultRules(), nil
	}
	f, err := os.Open(cfg.FormRulesFile)
	if err != nil {
		return nil, apperrors.ErrValidation.WithMessage("cannot open form rules file").WithCause(err)
	}
	defer f.Close()
	return formstore.LoadRules(f)
}

// NewFormStore returns a form store that coerces values with the service's
// form rules.
func (s *Service) NewFormStore(opts ...formstore.Option) *formstore.Store {
	rules := s.FormRules
	if rules == nil {
		rules = formstore.DefaultRules()
	}
	base := []formstore.Option{
		formstore.WithRules(rules),
		formstore.WithLogger(NewLogger("formstore")),
	}
	return formstore.NewStore(append(base, opts...)...)
}

// resolveServiceKey fills the service-role key from the secret store when
// the environment did not provide it.
func resolveServiceKey(ctx context.Context, cfg *Config, store shared.SecretStore) error {
	if cfg.Backend.ServiceRoleKey != "" {
		return nil
	}
	key, err := store.GetSecret(ctx, cfg.ProjectID, shared.SecretServiceRoleKey)
	if err != nil {
		return fmt.Errorf("resolve service role key: %w", err)
	}
	cfg.Backend.ServiceRoleKey = key
	return nil
}

// NewService initializes all standard dependencies
func NewService(ctx context.Context) (*Service, error) {
	InitLogger()
	cfg := LoadConfig()

	slog.Info("Initializing service", "project_id", cfg.ProjectID, "database", cfg.DatabaseBackend)

	rules, err := LoadFormRules(cfg)
	if err != nil {
		slog.Error("Form rules invalid", "file", cfg.FormRulesFile, "error", err)
		return nil, err
	}

	svc := &Service{
		Secrets:   &secrets.SecretsAdapter{},
		Config:    cfg,
		FormRules: rules,
	}

	// Database
	switch cfg.DatabaseBackend {
	case BackendSupabase:
		if err := resolveServiceKey(ctx, cfg, svc.Secrets); err != nil {
			slog.Error("Service role key unavailable", "error", err)
			return nil, err
		}
		admin, err := backend.NewAdminClient(backend.ContextServer, cfg.Backend)
		if err != nil {
			slog.Error("Supabase init failed", "error", err)
			return nil, fmt.Errorf("supabase init: %w", err)
		}
		svc.Admin = admin
		svc.DB = database.NewSupabaseAdapter(admin)
	case BackendFirestore:
		fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			slog.Error("Firestore init failed", "error", err)
			return nil, fmt.Errorf("firestore init: %w", err)
		}
		svc.DB = database.NewFirestoreAdapter(fsClient)
	default:
		return nil, apperrors.ErrBackendConfigInvalid.WithMessage("unknown DATABASE_BACKEND " + cfg.DatabaseBackend)
	}

	// Pub/Sub
	if cfg.EnablePublish {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			slog.Error("PubSub init failed", "error", err)
			return nil, fmt.Errorf("pubsub init: %w", err)
		}
		svc.Pub = &infrapubsub.PubSubAdapter{Client: psClient}
		slog.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	} else {
		svc.Pub = &infrapubsub.LogPublisher{}
		slog.Info("Pub/Sub: MOCK (LogPublisher)")
	}

	// Storage
	if cfg.EnableGCS {
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			slog.Error("Storage init failed", "error", err)
			return nil, fmt.Errorf("storage init: %w", err)
		}
		svc.Store = &infrastorage.StorageAdapter{Client: gcsClient}
	}

	return svc, nil
}
