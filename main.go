// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command docquery is a terminal client for a document question-answering
// service: upload documents, ask questions about them, and fall back to
// local operation when the service is out of reach.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/docquery-tui/internal/api"
	"github.com/jeranaias/docquery-tui/internal/chat"
	"github.com/jeranaias/docquery-tui/internal/config"
	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/registry"
	"github.com/jeranaias/docquery-tui/internal/session"
	"github.com/jeranaias/docquery-tui/internal/storage"
	"github.com/jeranaias/docquery-tui/internal/ui/app"
	"github.com/jeranaias/docquery-tui/internal/upload"
)

// version is stamped by the release build.
var version = "dev"

func main() {
	offline := flag.Bool("offline", false, "start in offline mode")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("docquery " + version)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "docquery: requires an interactive terminal")
		os.Exit(1)
	}

	if err := run(*offline); err != nil {
		fmt.Fprintln(os.Stderr, "docquery:", err)
		os.Exit(1)
	}
}

func run(offline bool) error {
	fileCfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve config directory: %w", err)
	}

	kv, closeKV, err := openStore(fileCfg, dir)
	if err != nil {
		return err
	}
	defer closeKV()

	cfgStore := config.NewStore(kv, fileCfg)
	config.SetGlobal(cfgStore)
	cfgStore.Load()

	// Mode always starts online unless the flag says otherwise; it is
	// never persisted across runs.
	modes := mode.NewController()
	if offline {
		modes.Set(mode.ModeOffline)
	}

	var sess *session.Manager
	client := api.NewClient(cfgStore, func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	})
	sess = session.NewManager(kv, client)
	sess.Restore()

	reg := registry.New(kv, client, func() bool {
		return modes.Current() == mode.ModeOnline && cfgStore.Loaded() && sess.Authenticated()
	})
	reg.Restore()

	var a *app.App
	driver := chat.New(modes, client, cfgStore.Loaded, sess.Authenticated, func(e chat.Event) {
		a.OnChatEvent(e)
	})
	uploads := upload.New(client, reg, func(e upload.Event) {
		a.OnUploadEvent(e)
	})

	a = app.New(app.Deps{
		Modes:    modes,
		Driver:   driver,
		Registry: reg,
		Session:  sess,
		Uploads:  uploads,
	})

	if fs, ok := kv.(*storage.FileStore); ok {
		if w := watchRuntimeConfig(cfgStore, fs, a); w != nil {
			defer w.Close()
		}
	}

	p := tea.NewProgram(a, tea.WithAltScreen())
	a.AttachProgram(p)

	_, err = p.Run()
	return err
}

// openStore builds the persistence backend the config selects.
func openStore(cfg *config.Config, dir string) (storage.Store, func(), error) {
	if cfg.Storage.Backend == "sqlite" {
		s, err := storage.NewSQLiteStore(filepath.Join(dir, "docquery.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, func() { s.Close() }, nil
	}

	s, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file store: %w", err)
	}
	return s, func() {}, nil
}

// watchRuntimeConfig wires the fsnotify watcher over the persisted
// endpoint config so edits from outside the TUI take effect live. Watch
// failures are non-fatal; the TUI just loses live reload.
func watchRuntimeConfig(cfgStore *config.Store, fs *storage.FileStore, a *app.App) *config.Watcher {
	path := fs.Path(storage.KeyAPIConfig)
	if _, err := os.Stat(path); err != nil {
		// Seed the file so the watcher has something to attach to.
		if err := cfgStore.Update(cfgStore.Get()); err != nil {
			return nil
		}
	}

	w, err := config.WatchFile(cfgStore, path, func() {
		a.Send(app.ConfigReloadedMsg{})
	})
	if err != nil {
		return nil
	}
	return w
}
