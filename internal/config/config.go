package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-playground/validator/v10"
	"github.com/k1LoW/duration"
	"github.com/muesli/reflow/indent"
	"github.com/usbdeck/usbdeck/internal/env"
	"gopkg.in/yaml.v2"
)

var validate *validator.Validate

type Config struct {
	Core    Core    `yaml:"core"`
	UI      UI      `yaml:"ui"`
	Watcher Watcher `yaml:"watcher"`
	Browser Browser `yaml:"browser"`
}

type Core struct {
	Refresh Refresh `yaml:"refresh"`
}

type Refresh struct {
	// Timeout bounds one device scan ("30 seconds", "1 minute").
	Timeout string `yaml:"timeout" validate:"validDuration"`
}

type UI struct {
	Style       StyleConfig `yaml:"style"`
	ExitMessage string      `yaml:"exit_message"`
}

type StyleConfig struct {
	Sidebar  SidebarStyle `yaml:"sidebar"`
	ErrorFg  string       `yaml:"error_fg"`
	StatusFg string       `yaml:"status_fg"`
}

type SidebarStyle struct {
	Cursor string `yaml:"cursor"`
	Border string `yaml:"border"`
}

type Watcher struct {
	Enabled bool `yaml:"enabled"`
	// Interval between device fingerprint polls.
	Interval string `yaml:"interval" validate:"validDuration"`
	// Debounce delays the automatic refresh after a detected change, so a
	// burst of hotplug events ends in a single scan.
	Debounce string `yaml:"debounce" validate:"validDuration"`
}

type Browser struct {
	ShowHidden bool          `yaml:"show_hidden"`
	Exclude    ExcludeConfig `yaml:"exclude"`
}

type ExcludeConfig struct {
	Files    []string   `yaml:"files"`
	Patterns []string   `yaml:"patterns"`
	Globs    []string   `yaml:"globs"`
	Size     SizeConfig `yaml:"size"`
}

type SizeConfig struct {
	Min string `yaml:"min" validate:"validSize"`
	Max string `yaml:"max" validate:"validSize"`
}

type configError struct {
	configPath string
	configDir  string
	parser     parser
	err        error
}

type parser struct{}

func validSize(fl validator.FieldLevel) bool {
	value := strings.ToUpper(fl.Field().String())
	if value == "" {
		return true
	}
	re := regexp.MustCompile(`^\d+(KB|MB|GB|TB|PB)$`)
	return re.MatchString(value)
}

func validDuration(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := duration.Parse(value)
	return err == nil
}

// Duration parses a config duration, falling back to the given default when
// the field is empty or unparsable.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := duration.Parse(value)
	if err != nil {
		slog.Warn("failed to parse duration, using default", "value", value, "default", fallback)
		return fallback
	}
	return d
}

func (p parser) getDefaultConfig() Config {
	return Config{
		Core: Core{
			Refresh: Refresh{
				Timeout: "1 minute",
			},
		},
		UI: UI{
			ExitMessage: "bye!",
			Style: StyleConfig{
				Sidebar: SidebarStyle{
					Cursor: "#AD58B4", // Purple
					Border: "#3C3C3C",
				},
				ErrorFg:  "#E06C75",
				StatusFg: "#EEEEDD",
			},
		},
		Watcher: Watcher{
			Enabled:  true,
			Interval: "2 seconds",
			Debounce: "600ms",
		},
		Browser: Browser{
			ShowHidden: false,
			Exclude: ExcludeConfig{
				Files: []string{
					// In macOS, .DS_Store is a file that stores custom attributes of its
					// containing folder, such as folder view options, icon positions,
					// and other visual information
					".DS_Store",
				},
				Patterns: []string{},
				Globs:    []string{},
				Size: SizeConfig{
					Min: "",
					Max: "",
				},
			},
		},
	}
}

func (p parser) getDefaultConfigContents() string {
	defaultConfig := p.getDefaultConfig()
	content, _ := yaml.Marshal(defaultConfig)
	return string(content)
}

func (e configError) Error() string {
	return heredoc.Docf(`
		Couldn't find the "%s" config file.
		Please try again after creating it or specifying a valid config path.
		The recommended config path is %s (default).
		Example YAML file contents:
		---
		%s
		---
		Original error:
		%s
		`,
		e.configPath,
		env.USBDECK_CONFIG_PATH,
		e.parser.getDefaultConfigContents(),
		indent.String(e.err.Error(), 2),
	)
}

func (p parser) createConfigFile(path string) error {
	// Ensure directory exists
	if err := p.ensureDirExists(filepath.Dir(path)); err != nil {
		return err
	}

	// Create the config file if missing
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("creating config file as it does not exist", "config-file", path)
		newConfigFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
		if err != nil {
			return err
		}
		defer newConfigFile.Close()

		// Write default config contents
		if err := p.writeConfigFileContents(newConfigFile); err != nil {
			return err
		}
	}

	return nil
}

func (p parser) ensureDirExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		slog.Warn("creating directory as it does not exist", "dir", dirPath)
		if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
			return err
		}
	}
	return nil
}

func (p parser) writeConfigFileContents(file *os.File) error {
	_, err := file.WriteString(p.getDefaultConfigContents())
	return err
}

func (p parser) ensureConfigFile() (string, error) {
	path := env.USBDECK_CONFIG_PATH

	// Ensure directory exists before creating file
	if err := p.ensureDirExists(filepath.Dir(path)); err != nil {
		return "", err
	}

	// Create file if missing
	if err := p.createConfigFile(path); err != nil {
		return "", configError{
			parser:    p,
			configDir: filepath.Dir(path),
			err:       err,
		}
	}

	return path, nil
}

type parsingError struct {
	err error
}

func (e parsingError) Error() string {
	return fmt.Sprintf("failed to parse config: %v", e.err)
}

func (p parser) readConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, configError{
			configPath: path,
			configDir:  filepath.Dir(path),
			parser:     p,
			err:        err,
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if err := validate.Struct(cfg); err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			return cfg, fmt.Errorf("validation error: Field %s, %q is invalid\n", err.Field(), err.Value())
		}
	}
	return cfg, nil
}

func initParser() parser {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("validSize", validSize)
	_ = validate.RegisterValidation("validDuration", validDuration)

	return parser{}
}

func Parse(path string) (Config, error) {
	parser := initParser()

	var cfg Config
	var err error
	var configPath string

	if path == "" {
		configPath, err = parser.ensureConfigFile()
		if err != nil {
			return cfg, parsingError{err: err}
		}
	} else {
		configPath = path
	}
	slog.Debug("config file found", "config-file", configPath)

	cfg, err = parser.readConfigFile(configPath)
	if err != nil {
		return cfg, parsingError{err: err}
	}

	return cfg, nil
}
