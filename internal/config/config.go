package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"repoeval/internal/flags"
	"repoeval/internal/output"
	"repoeval/internal/workspace"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// EnvWorkspace overrides the workspace root when --workspace is not given.
const EnvWorkspace = "REPOEVAL_WORKSPACE"

type Config struct {
	// MAINTAINER NOTE: fields that can be set from the config file must also be
	// handled in ApplyFile, and fields with a flag in internal/cli/run.go.
	Workspace Workspace `yaml:"workspace"`
	Toolchain Toolchain `yaml:"toolchain"`
	Output    Output    `yaml:"output"`
	Runtime   Runtime   `yaml:"-"`
}

type Workspace struct {
	// Root is the directory every repository name is resolved against (see --workspace).
	// A leading ~ is expanded to the user's home directory.
	Root string `yaml:"root"`

	// Repositories is the ordered list of repositories to evaluate.
	Repositories []Repository `yaml:"repositories"`

	// RepoArgs holds raw --repos values as NAME or NAME:KIND. When set, it
	// replaces Repositories during Validate.
	RepoArgs []string `yaml:"-"`
}

// Repository is a configured repository. Kind is optional; when empty it is
// inferred from the name suffix.
type Repository struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind,omitempty"`
}

// UnmarshalYAML accepts either a bare name or a {name, kind} mapping.
func (r *Repository) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Name = node.Value
		r.Kind = ""
		return nil
	}
	type plain Repository
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = Repository(p)
	return nil
}

type Toolchain struct {
	// Python is the interpreter used to probe imports (see --python).
	Python string `yaml:"python"`

	// Installer is the package installer command line run inside node
	// repositories (see --installer). It is split on whitespace.
	Installer string `yaml:"installer"`

	// Env holds extra KEY=VALUE entries added to the environment of every
	// import probe and installer run (see --env).
	Env []string `yaml:"env"`
}

type Output struct {
	// ConsoleFormat controls the console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string `yaml:"console_format"`

	// Report writes a Markdown report to this path (see --report).
	Report string `yaml:"report"`

	// Out writes structured output to this path (see --out).
	Out string `yaml:"out"`

	// OutFormat selects the format for --out. If empty, it is inferred from
	// the --out file extension.
	OutFormat string `yaml:"out_format"`

	// Emit writes an additional structured stream to stdout (see --emit).
	Emit []string `yaml:"emit"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `yaml:"no_console"`
}

type Runtime struct {
	// ConfigFile is the YAML config path (see --config).
	ConfigFile string

	// Verbose enables debug diagnostics on stderr.
	Verbose bool
}

// DefaultRepositories is the repository list evaluated when none is configured.
var DefaultRepositories = []string{
	"voice_kit_webgpu_cjs",
	"ipfs_accelerate_py",
	"ipfs_transformers_py",
	"ipfs_parquet_to_car_js",
	"hallucinate_app",
}

func New() *Config {
	repos := make([]Repository, 0, len(DefaultRepositories))
	for _, name := range DefaultRepositories {
		repos = append(repos, Repository{Name: name})
	}
	return &Config{
		Workspace: Workspace{
			Root:         "agentic_workspace",
			Repositories: repos,
		},
		Toolchain: Toolchain{
			Python:    "python3",
			Installer: "npm install",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
	}
}

// ApplyFile loads a YAML config file over c. Values whose flag was set on the
// command line (changed reports true) are left alone.
func (c *Config) ApplyFile(path string, changed func(flag string) bool) error {
	if changed == nil {
		changed = func(string) bool { return false }
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var fc Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	setString := func(dst *string, v, flag string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	setString(&c.Workspace.Root, fc.Workspace.Root, flags.FlagWorkspace)
	setString(&c.Toolchain.Python, fc.Toolchain.Python, flags.FlagPython)
	setString(&c.Toolchain.Installer, fc.Toolchain.Installer, flags.FlagInstaller)
	setString(&c.Output.ConsoleFormat, fc.Output.ConsoleFormat, flags.FlagConsoleFormat)
	setString(&c.Output.Report, fc.Output.Report, flags.FlagReport)
	setString(&c.Output.Out, fc.Output.Out, flags.FlagOut)
	setString(&c.Output.OutFormat, fc.Output.OutFormat, flags.FlagOutFormat)

	if fc.Workspace.Repositories != nil && !changed(flags.FlagRepos) {
		c.Workspace.Repositories = fc.Workspace.Repositories
	}
	if len(fc.Toolchain.Env) > 0 && !changed(flags.FlagEnv) {
		c.Toolchain.Env = fc.Toolchain.Env
	}
	if len(fc.Output.Emit) > 0 && !changed(flags.FlagEmit) {
		c.Output.Emit = fc.Output.Emit
	}
	if fc.Output.NoConsole && !changed(flags.FlagNoConsole) {
		c.Output.NoConsole = true
	}
	return nil
}

// ApplyEnv applies environment overrides for values not set by flag.
func (c *Config) ApplyEnv(changed func(flag string) bool) {
	if changed != nil && changed(flags.FlagWorkspace) {
		return
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkspace)); v != "" {
		c.Workspace.Root = v
	}
}

func (c *Config) Validate() error {
	// Workspace validation
	root := strings.TrimSpace(c.Workspace.Root)
	if root == "" {
		return errors.New("--workspace must not be empty")
	}
	expanded, err := homedir.Expand(root)
	if err != nil {
		return fmt.Errorf("invalid --workspace value: %w", err)
	}
	c.Workspace.Root = expanded

	if args := splitCommaList(c.Workspace.RepoArgs); len(args) > 0 {
		repos := make([]Repository, 0, len(args))
		for _, a := range args {
			name, kind, _ := strings.Cut(a, ":")
			repos = append(repos, Repository{Name: strings.TrimSpace(name), Kind: strings.TrimSpace(kind)})
		}
		c.Workspace.Repositories = repos
		c.Workspace.RepoArgs = nil
	}

	seen := make(map[string]struct{}, len(c.Workspace.Repositories))
	for i := range c.Workspace.Repositories {
		r := &c.Workspace.Repositories[i]
		r.Name = strings.TrimSpace(r.Name)
		if err := validateRepoName(r.Name); err != nil {
			return err
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate repository %q", r.Name)
		}
		seen[r.Name] = struct{}{}

		kind, err := workspace.ParseKind(r.Kind)
		if err != nil {
			return fmt.Errorf("repository %q: %w", r.Name, err)
		}
		r.Kind = string(kind)
	}

	// Toolchain validation
	c.Toolchain.Python = strings.TrimSpace(c.Toolchain.Python)
	if c.Toolchain.Python == "" {
		return errors.New("--python must not be empty")
	}
	if len(strings.Fields(c.Toolchain.Installer)) == 0 {
		return errors.New("--installer must not be empty")
	}
	for i, kv := range c.Toolchain.Env {
		kv = strings.TrimSpace(kv)
		key, _, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" || strings.ContainsAny(key, " \t") {
			return fmt.Errorf("invalid --env value %q: must be KEY=VALUE", c.Toolchain.Env[i])
		}
		c.Toolchain.Env[i] = kv
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	c.Output.Emit = splitCommaList(c.Output.Emit)
	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
		c.Output.Emit[i] = v
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			format, err := output.InferFormat(c.Output.Out)
			if err != nil {
				return fmt.Errorf("%w; use --out-format", err)
			}
			c.Output.OutFormat = format
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	return nil
}

// Repositories returns the configured repositories resolved against the root.
// Call after Validate.
func (c *Config) Repositories() []workspace.Repository {
	specs := make([]workspace.Spec, 0, len(c.Workspace.Repositories))
	for _, r := range c.Workspace.Repositories {
		specs = append(specs, workspace.Spec{Name: r.Name, Kind: workspace.Kind(r.Kind)})
	}
	return workspace.Resolve(c.Workspace.Root, specs)
}

// InstallerArgs returns the installer command line as argv.
func (c *Config) InstallerArgs() []string {
	return strings.Fields(c.Toolchain.Installer)
}

func validateRepoName(name string) error {
	if name == "" {
		return errors.New("repository name must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid repository name %q: must be a single directory name", name)
	}
	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
