package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrUnknownScript is returned when a script name was never loaded.
var ErrUnknownScript = errors.New("unknown script")

// Env is the game state exposed to a script as globals.
type Env struct {
	CharacterName  string
	CharacterLevel int
	MonsterName    string
	MonsterLevel   int
}

// Output collects what a script asked to show the player.
type Output struct {
	Announcements []string
}

// OnceTracker records which one-time scripts a character has already seen.
type OnceTracker interface {
	HasSeenScript(name string) bool
	MarkScriptSeen(name string) bool
}

// Manager holds compiled scripts and runs each call in a fresh sandboxed VM.
// Not safe for concurrent use.
type Manager struct {
	protos    map[string]*lua.FunctionProto
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scripts.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	return &Manager{
		protos: make(map[string]*lua.FunctionProto),
		roller: roller,
		logger: logger,
	}
}

// LoadDirectory compiles every *.lua file in scriptDir. A script is named by
// its file name without the extension.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: a syntax error in any file fails the whole load.
func (m *Manager) LoadDirectory(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	protos := make(map[string]*lua.FunctionProto, len(files))
	for _, f := range files {
		path := filepath.Join(scriptDir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		proto, err := compile(string(data), path)
		if err != nil {
			return err
		}
		protos[strings.TrimSuffix(f, ".lua")] = proto
	}
	for name, p := range protos {
		m.protos[name] = p
	}
	m.instLimit = instLimit
	return nil
}

// Add compiles src and registers it under name.
func (m *Manager) Add(name, src string) error {
	proto, err := compile(src, name)
	if err != nil {
		return err
	}
	m.protos[name] = proto
	return nil
}

func compile(src, name string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("scripting: parsing %q: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	return proto, nil
}

// Has reports whether a script called name is loaded.
func (m *Manager) Has(name string) bool {
	_, ok := m.protos[name]
	return ok
}

// Names returns every loaded script name in order.
func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.protos))
	for name := range m.protos {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run executes the named script with env exposed as globals.
//
// Postcondition: returns ErrUnknownScript for names never loaded; Lua
// runtime errors are logged at Warn level and returned.
func (m *Manager) Run(ctx context.Context, name string, env Env) (Output, error) {
	proto, ok := m.protos[name]
	if !ok {
		return Output{}, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	L, cancel := NewSandboxedState(ctx, m.instLimit)
	defer cancel()
	defer L.Close()

	var out Output
	m.registerModules(L, name, env, &out)

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", name),
			zap.Error(err),
		)
		return Output{}, fmt.Errorf("scripting: running %q: %w", name, err)
	}
	return out, nil
}

// RunOnce runs the named script unless seen has already recorded it. The
// script is recorded only after it completes without error.
//
// Postcondition: ran is true iff the script executed successfully this call.
func (m *Manager) RunOnce(ctx context.Context, seen OnceTracker, name string, env Env) (out Output, ran bool, err error) {
	if seen.HasSeenScript(name) {
		return Output{}, false, nil
	}
	out, err = m.Run(ctx, name, env)
	if err != nil {
		return Output{}, false, err
	}
	seen.MarkScriptSeen(name)
	m.logger.Debug("scripting: one-time script ran", zap.String("script", name))
	return out, true, nil
}

// registerModules installs the env globals and the functions scripts may call:
// log(msg), announce(msg) and engine.roll(lo, hi).
func (m *Manager) registerModules(L *lua.LState, name string, env Env, out *Output) {
	L.SetGlobal("character_name", lua.LString(env.CharacterName))
	L.SetGlobal("character_level", lua.LNumber(env.CharacterLevel))
	L.SetGlobal("monster_name", lua.LString(env.MonsterName))
	L.SetGlobal("monster_level", lua.LNumber(env.MonsterLevel))

	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("script", zap.String("script", name), zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("announce", L.NewFunction(func(L *lua.LState) int {
		out.Announcements = append(out.Announcements, L.CheckString(1))
		return 0
	}))

	engine := L.NewTable()
	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		lo := L.CheckInt(1)
		hi := L.CheckInt(2)
		L.Push(lua.LNumber(m.roller.Range("script:"+name, lo, hi).Value))
		return 1
	}))
	L.SetGlobal("engine", engine)
}
