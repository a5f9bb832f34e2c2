// internal/config/model.go
//
// Typed configuration model for Stocklot.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `STOCKLOT_`-prefixed environment overrides – highest precedence.
//
// Any string value beginning with `vault:` is resolved through the
// secrets client after unmarshalling, so downstream code only ever sees
// plain strings (see internal/secrets).
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.
package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database describes the control store and the data directory for
// embedded tenant stores.
//
// The control store is always the embedded engine: shared-strategy
// tenants live inside it, and the SHARED ⇒ embedded invariant keeps the
// default store file-based.  `ControlPath` is the SQLite file; `DataDir`
// is where dedicated embedded tenant stores are created.
type Database struct {
	ControlPath string `koanf:"control_path" validate:"required"`
	DataDir     string `koanf:"data_dir"     validate:"required"`
}

//
// Auth section
//

// Auth carries the shared JWT signing secret and the default scheme used
// for requests outside any tenant scope.  `SecretKey` may be a `vault:`
// reference; it is resolved before this struct is handed out.
type Auth struct {
	SecretKey     string `koanf:"secret_key" validate:"required,min=16"`
	DefaultScheme string `koanf:"default_scheme" validate:"omitempty,oneof=TOKEN JWT_TOKEN"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or STOCKLOT_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Paths    Paths    `koanf:"-"`
}
