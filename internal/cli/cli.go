package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"
	"github.com/rs/xid"
	"github.com/usbdeck/usbdeck/internal/browser"
	"github.com/usbdeck/usbdeck/internal/config"
	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/env"
	"github.com/usbdeck/usbdeck/internal/fsys"
	"github.com/usbdeck/usbdeck/internal/panel"
	"github.com/usbdeck/usbdeck/internal/ui"
	"github.com/usbdeck/usbdeck/internal/utils/debug"
)

type Option struct {
	Config string `long:"config" description:"Path to config file" default:""`

	Meta MetaOption `group:"Meta Options"`
}

type MetaOption struct {
	Version bool   `short:"V" long:"version" description:"Show version"`
	Debug   string `long:"debug" description:"View debug logs (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`
}

type CLI struct {
	version Version
	option  Option
	config  config.Config
}

var runID = sync.OnceValue(func() string {
	id := xid.New().String()
	return id
})

func Run(v Version) error {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Name = v.AppName
	parser.Usage = "[options]"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	logDir := filepath.Dir(env.USBDECK_LOG_PATH)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		err := os.MkdirAll(logDir, 0755)
		if err != nil {
			return err
		}
	}

	var w io.Writer
	if file, err := os.OpenFile(env.USBDECK_LOG_PATH, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		w = file
	} else {
		w = os.Stderr
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           log.DebugLevel,
		Formatter: func() log.Formatter {
			if strings.ToLower(opt.Meta.Debug) == "json" {
				return log.JSONFormatter
			}
			return log.TextFormatter
		}(),
	})
	logger.SetOutput(w)
	slog.SetDefault(slog.New(logger.With("run_id", runID())))

	defer slog.Debug("main function finished\n\n\n")
	slog.Debug("main function started", "version", v.Version, "revision", v.Revision, "buildDate", v.BuildDate)

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}

	cli := CLI{
		version: v,
		option:  opt,
		config:  cfg,
	}

	if err := cli.Run(); err != nil {
		slog.Error("exit", "error", fmt.Errorf("cli.run failed: %w", err))
		return err
	}
	return nil
}

func (c CLI) Run() error {
	switch {
	case c.option.Meta.Version:
		fmt.Fprint(os.Stdout, c.version.Print())
		return nil

	default:
		switch c.option.Meta.Debug {
		case "live":
			return debug.Logs(os.Stdout, true)
		case "full":
			return debug.Logs(os.Stdout, false)
		}
		return c.runPanel()
	}
}

// runPanel wires the device backend into the state aggregate and hands both
// to the terminal UI. The aggregate is the only owner of panel state; the
// UI goroutine drives it through the Bubble Tea update loop.
func (c CLI) runPanel() error {
	area := panel.New(
		device.NewEnumerator(),
		device.NewEjector(),
		func(info device.StorageInfo) fsys.FS {
			return fsys.NewLocal(info.MountRoot())
		},
		panel.Config{
			RefreshTimeout: config.Duration(c.config.Core.Refresh.Timeout, time.Minute),
			Filter: browser.Filter{
				HideHidden: !c.config.Browser.ShowHidden,
				Files:      c.config.Browser.Exclude.Files,
				Patterns:   c.config.Browser.Exclude.Patterns,
				Globs:      c.config.Browser.Exclude.Globs,
				MinSize:    c.config.Browser.Exclude.Size.Min,
				MaxSize:    c.config.Browser.Exclude.Size.Max,
			},
		},
	)

	var watcher *device.Watcher
	if c.config.Watcher.Enabled {
		interval := config.Duration(c.config.Watcher.Interval, 2*time.Second)
		watcher = device.NewWatcher(interval, nil)
		watcher.Start()
	}

	model := ui.New(area, watcher, c.config)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()

	// Teardown order matters: the closing flag is already set by the quit
	// handler inside the loop; now stop the watcher, then release pages.
	if watcher != nil {
		watcher.Stop()
	}
	area.Close()

	if err != nil {
		return fmt.Errorf("failed to run panel: %w", err)
	}
	return nil
}
