package assist

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/subassist/internal/core/config"
	"github.com/hay-kot/subassist/internal/core/journal"
	"github.com/hay-kot/subassist/internal/core/rules"
	"github.com/hay-kot/subassist/internal/data/db"
)

// App is the central entry point for all subassist operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	Rules   *rules.Registry
	Journal journal.Store
	Runner  *Runner
	DB      *db.DB
}

// NewApp constructs an App from explicit dependencies. A nil store disables
// the journal.
func NewApp(cfg *config.Config, database *db.DB, store journal.Store, log zerolog.Logger) *App {
	if store == nil {
		store = journal.Nop{}
	}
	registry := rules.NewRegistry(cfg.RuleSettings())
	return &App{
		Config:  cfg,
		Rules:   registry,
		Journal: store,
		Runner:  NewRunner(registry, OptionsFromConfig(cfg), store, log),
		DB:      database,
	}
}
