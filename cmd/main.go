package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"scpedit/internal/buffer"
	"scpedit/internal/config"
	"scpedit/internal/editor"
	sshclient "scpedit/internal/ssh"
	"scpedit/internal/storage"
	"scpedit/internal/syntax"
	"scpedit/internal/ui"
)

var version = "0.1.0"

const (
	loadTimeout = 30 * time.Second
	saveTimeout = 30 * time.Second
	// quietPeriod hides the watcher events caused by our own writes.
	quietPeriod = 2 * time.Second
)

// options are the parsed command-line arguments.
type options struct {
	configPath  string
	syntax      string
	password    bool
	insecure    bool
	showVersion bool
	recent      bool
	target      string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("scpedit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	fs.StringVar(&o.syntax, "syntax", "", "highlighter: "+strings.Join(syntax.Names(), ", "))
	fs.BoolVar(&o.password, "password", false, "ask for an SSH password before connecting")
	fs.BoolVar(&o.insecure, "insecure", false, "do not verify the remote host key")
	fs.BoolVar(&o.showVersion, "version", false, "print the version and exit")
	fs.BoolVar(&o.recent, "recent", false, "pick the file from the recently saved list")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: scpedit [flags] [file | [user@]host:path | ssh://[user@]host[:port]/path]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		o.target = fs.Arg(0)
	default:
		fs.Usage()
		return o, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}
	if o.recent && o.target != "" {
		return o, errors.New("-recent cannot be combined with a file argument")
	}
	return o, nil
}

// ---------------------------------------------------------------------------
// Backend selection
// ---------------------------------------------------------------------------

// backend is the storage for the open document plus whatever has to be
// released when the editor exits.
type backend struct {
	store   storage.Storage
	client  *sshclient.Client
	watcher *storage.Watcher
}

func (b *backend) Close() {
	if b.watcher != nil {
		if err := b.watcher.Close(); err != nil {
			log.Printf("[main] close watcher: %v", err)
		}
	}
	if b.client != nil {
		if err := b.client.Close(); err != nil {
			log.Printf("[main] close client: %v", err)
		}
	}
}

// passwordFunc asks the user for a password using prompt.
type passwordFunc func(prompt string) (string, error)

func openBackend(cfg *config.Config, t storage.Target, ask passwordFunc) (*backend, error) {
	if t.Remote() {
		client, err := connect(cfg, t, ask)
		if err != nil {
			return nil, err
		}
		label := client.User() + "@" + t.Host
		return &backend{store: storage.NewRemote(client, label), client: client}, nil
	}

	b := &backend{store: storage.Local{AfterCreate: config.FixOwnership}}
	if t.Path != "" {
		w, err := storage.Watch(t.Path)
		if err != nil {
			log.Printf("[main] watch %s: %v", t.Path, err)
		} else {
			b.watcher = w
		}
	}
	return b, nil
}

func connect(cfg *config.Config, t storage.Target, ask passwordFunc) (*sshclient.Client, error) {
	ep := cfg.Resolve(config.LoadSSHConfig(), t.Host, t.Port, t.User)
	log.Printf("[main] connecting to %s@%s:%s", ep.User, ep.Host, ep.Port)

	hk, err := sshclient.HostKeyCallback(cfg.KnownHostsPath(), cfg.SSH.InsecureIgnoreHostKey)
	if err != nil {
		return nil, err
	}

	var password string
	if ask != nil {
		password, err = ask(fmt.Sprintf("%s@%s's password: ", ep.User, ep.Host))
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
	}

	methods, release := authMethods(ep, password)
	defer release()
	if len(methods) == 0 {
		return nil, fmt.Errorf("no authentication methods available for %s@%s (try -password)", ep.User, ep.Host)
	}
	return sshclient.New(ep.Host, ep.Port, ep.User, methods, hk)
}

// authMethods returns key, agent and password methods in the order they are
// offered to the server. release closes the agent connection.
func authMethods(ep config.Endpoint, password string) ([]ssh.AuthMethod, func()) {
	var methods []ssh.AuthMethod
	release := func() {}

	keys := defaultIdentityFiles()
	if ep.IdentityFile != "" {
		keys = []string{ep.IdentityFile}
	}
	for _, k := range keys {
		am, err := sshclient.PubKeyAuth(k)
		if err != nil {
			log.Printf("[main] skip key %s: %v", k, err)
			continue
		}
		methods = append(methods, am)
	}

	if am, closeAgent, err := sshclient.AgentAuth(); err == nil {
		methods = append(methods, am)
		release = func() {
			if err := closeAgent(); err != nil {
				log.Printf("[main] close agent: %v", err)
			}
		}
	}

	if password != "" {
		methods = append(methods, sshclient.PasswordAuth(password))
	}
	return methods, release
}

// defaultIdentityFiles lists the usual private keys that exist in ~/.ssh.
func defaultIdentityFiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var out []string
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		p := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// loadBuffer reads path through store. A file that does not exist yet opens
// as an empty buffer that will be created on the first save.
func loadBuffer(ctx context.Context, store storage.Storage, path string) (*buffer.Buffer, error) {
	if path == "" {
		return buffer.New(""), nil
	}
	text, err := store.Load(ctx, path)
	if storage.IsNotExist(err) {
		log.Printf("[main] %s does not exist yet", store.Describe(path))
		return buffer.New(path), nil
	}
	if err != nil {
		return nil, err
	}
	return buffer.FromText(path, text), nil
}

// ---------------------------------------------------------------------------
// AppModel
// ---------------------------------------------------------------------------

// AppModel owns the storage backend and performs the I/O the editor asks for.
type AppModel struct {
	editor  ui.EditorModel
	store   storage.Storage
	watcher *storage.Watcher
	cfg     *config.Config
	cfgPath string
}

func newAppModel(s *editor.Session, be *backend, cfg *config.Config, cfgPath string) AppModel {
	return AppModel{
		editor: ui.NewEditorModel(s, ui.Options{
			QuitTimes:      cfg.QuitTimes,
			MessageTimeout: cfg.MessageTimeout(),
			Describe:       be.store.Describe,
		}),
		store:   be.store,
		watcher: be.watcher,
		cfg:     cfg,
		cfgPath: cfgPath,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.editor.Init(), waitForChange(m.watcher))
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SaveRequestMsg:
		log.Printf("[AppModel] SaveRequestMsg: path=%s bytes=%d", msg.Path, len(msg.Text))
		return m, saveCmd(m.store, m.watcher, msg)

	case ui.SaveDoneMsg:
		if msg.Err == nil {
			m.rememberRecent(msg.Path)
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd

	case ui.FileChangedMsg:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, tea.Batch(cmd, waitForChange(m.watcher))
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	return m.editor.View()
}

func (m AppModel) rememberRecent(path string) {
	if m.cfg == nil || m.cfgPath == "" || m.cfg.ReadOnly() {
		return
	}
	entry := m.store.Describe(path)
	if _, local := m.store.(storage.Local); local {
		if abs, err := filepath.Abs(path); err == nil {
			entry = abs
		}
	}
	m.cfg.AddRecent(entry)
	if err := config.SaveTo(m.cfg, m.cfgPath); err != nil {
		log.Printf("[AppModel] save config: %v", err)
	}
}

// saveCmd writes the document off the UI goroutine and reports back with a
// SaveDoneMsg.
func saveCmd(store storage.Storage, w *storage.Watcher, req ui.SaveRequestMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if w != nil {
			w.Quiet(quietPeriod)
		}
		n, err := store.Save(ctx, req.Path, req.Text)
		if err != nil {
			log.Printf("[AppModel] save %s: %v", req.Path, err)
		}
		return ui.SaveDoneMsg{Path: req.Path, Bytes: n, Err: err}
	}
}

// waitForChange blocks until the watcher reports an outside modification.
func waitForChange(w *storage.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return ui.FileChangedMsg{Path: p}
	}
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

// logPath returns the path for the debug log file.
// When running from the project directory (go run / ./bin/scpedit), logs go
// to .logs/debug.log. When installed, logs go to
// ~/.local/state/scpedit/debug.log following XDG conventions.
func logPath() string {
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		cwd, _ := os.Getwd()
		if strings.HasPrefix(exeDir, cwd) || strings.Contains(exeDir, "go-build") {
			dir := filepath.Join(cwd, ".logs")
			_ = os.MkdirAll(dir, 0o755)
			return filepath.Join(dir, "debug.log")
		}
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "scpedit")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "debug.log")
}

// pickRecent shows the recent files list and returns the chosen target.
func pickRecent(files []string) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no recent files")
	}
	final, err := tea.NewProgram(ui.NewRecentModel(files), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(ui.RecentModel).Choice(), nil
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return string(b), err
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "scpedit: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "scpedit:", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println("scpedit", version)
		return
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fail("stdin and stdout must be a terminal")
	}

	f, err := tea.LogToFile(logPath(), "debug")
	if err != nil {
		fail("could not open debug log: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.Printf("=== scpedit %s starting (log: %s) ===", version, logPath())

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		fail("%v", err)
	}
	if opts.insecure {
		cfg.SSH.InsecureIgnoreHostKey = true
	}

	if opts.recent {
		choice, err := pickRecent(cfg.RecentFiles)
		if err != nil {
			fail("%v", err)
		}
		if choice == "" {
			return
		}
		opts.target = choice
	}

	name := cfg.Syntax
	if opts.syntax != "" {
		name = opts.syntax
	}
	hl, err := syntax.Lookup(name)
	if err != nil {
		fail("%v (available: %s)", err, strings.Join(syntax.Names(), ", "))
	}

	target, err := storage.ParseTarget(opts.target)
	if err != nil {
		fail("%v", err)
	}
	var ask passwordFunc
	if opts.password {
		ask = readPassword
	}
	be, err := openBackend(cfg, target, ask)
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	buf, err := loadBuffer(ctx, be.store, target.Path)
	cancel()
	if err != nil {
		be.Close()
		fail("open %s: %v", be.store.Describe(target.Path), err)
	}

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols, rows = 80, 24
	}
	session := editor.New(buf, hl, cols, max(rows-2, 1))
	if cfg.Welcome {
		session.SetWelcome("scpedit -- version " + version)
	}

	p := tea.NewProgram(newAppModel(session, be, cfg, cfgPath), tea.WithAltScreen())
	_, err = p.Run()
	be.Close()
	if err != nil {
		fail("%v", err)
	}
	log.Printf("=== scpedit exiting ===")
}
