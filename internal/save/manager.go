package save

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/appengine-ltd/ghost-protocol/internal/game"
)

const (
	PrimaryFile      = "game_save.json"
	DefaultSlotCount = 5
)

type Options struct {
	SlotCount int
	Logger    *logrus.Logger
	Now       func() time.Time
}

// Manager owns every save file under a single directory.
type Manager struct {
	dir   string
	slots int
	log   *logrus.Entry
	now   func() time.Time
}

type SlotInfo struct {
	Index      int
	Path       string
	Exists     bool
	Corrupt    bool
	ModifiedAt time.Time
	Summary    string
}

// Recovery describes where LoadOrNew found its state.
type Recovery string

const (
	RecoveredPrimary Recovery = "primary"
	RecoveredBackup  Recovery = "backup"
	RecoveredFresh   Recovery = "fresh"
)

func NewManager(dir string, opts Options) *Manager {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if opts.SlotCount <= 0 {
		opts.SlotCount = DefaultSlotCount
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		dir:   dir,
		slots: opts.SlotCount,
		log:   logger.WithField("component", "save"),
		now:   opts.Now,
	}
}

func (m *Manager) Dir() string { return m.dir }

func (m *Manager) SlotCount() int { return m.slots }

func (m *Manager) PrimaryPath() string { return filepath.Join(m.dir, PrimaryFile) }

func (m *Manager) SlotPath(index int) (string, error) {
	if index < 0 || index >= m.slots {
		return "", fmt.Errorf("%w: %d not in 0..%d", ErrSlotRange, index, m.slots-1)
	}
	return filepath.Join(m.dir, fmt.Sprintf("save_slot_%d.json", index)), nil
}

// Save writes the primary save file. It satisfies game.Checkpointer.
func (m *Manager) Save(state *game.GameState) error {
	return m.SaveTo(m.PrimaryPath(), state)
}

func (m *Manager) Load() (*game.GameState, error) {
	return m.LoadFrom(m.PrimaryPath())
}

func (m *Manager) SaveSlot(index int, state *game.GameState) error {
	path, err := m.SlotPath(index)
	if err != nil {
		return err
	}
	return m.SaveTo(path, state)
}

func (m *Manager) LoadSlot(index int) (*game.GameState, error) {
	path, err := m.SlotPath(index)
	if err != nil {
		return nil, err
	}
	return m.LoadFrom(path)
}

func (m *Manager) DeleteSlot(index int) error {
	path, err := m.SlotPath(index)
	if err != nil {
		return err
	}
	for _, p := range []string{path, path + backupSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	m.log.WithField("slot", index).Info("slot deleted")
	return nil
}

// SaveTo encodes state and atomically replaces path. A previous file that
// still decodes is kept as path+".bak".
func (m *Manager) SaveTo(path string, state *game.GameState) error {
	data, err := Encode(state, m.now())
	if err != nil {
		return err
	}
	entry := m.log.WithField("path", path)

	if fileExists(path) {
		if prev, err := readDataFile(path, maxSaveFileBytes); err == nil {
			if _, err := Decode(prev); err == nil {
				if err := copyFile(path, path+backupSuffix, 0o600); err != nil {
					entry.WithError(err).Warn("could not refresh backup")
				}
			}
		}
	}

	if err := writeFileAtomic(path, data); err != nil {
		entry.WithError(err).Error("save failed")
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	entry.WithFields(logrus.Fields{"version": CurrentVersion, "bytes": len(data)}).Debug("saved")
	return nil
}

func (m *Manager) LoadFrom(path string) (*game.GameState, error) {
	entry := m.log.WithField("path", path)
	data, err := readDataFile(path, maxSaveFileBytes)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	case errors.Is(err, errTooLarge):
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	doc, stored, err := decodeDocument(data)
	if err != nil {
		entry.WithError(err).Warn("save rejected")
		return nil, err
	}
	if stored != CurrentVersion {
		entry.WithFields(logrus.Fields{"from": stored, "to": CurrentVersion}).Info("save migrated")
	}
	return doc.state(), nil
}

// ListSlots reports every slot in index order. A slot that exists but does not
// decode is marked Corrupt rather than failing the listing.
func (m *Manager) ListSlots() []SlotInfo {
	out := make([]SlotInfo, 0, m.slots)
	for i := range m.slots {
		path, _ := m.SlotPath(i)
		info := SlotInfo{Index: i, Path: path}
		stat, err := os.Stat(path)
		if err != nil {
			out = append(out, info)
			continue
		}
		info.Exists = true
		info.ModifiedAt = stat.ModTime()
		state, err := m.LoadFrom(path)
		if err != nil {
			info.Corrupt = true
			info.Summary = "corrupt"
		} else {
			info.Summary = summary(state)
		}
		out = append(out, info)
	}
	return out
}

func summary(s *game.GameState) string {
	return fmt.Sprintf("%s L%d (%d xp)", s.PlayerName, s.CurrentLevel, s.Experience)
}

// Export renders state as a portable document.
func (m *Manager) Export(state *game.GameState) (string, error) {
	data, err := Encode(state, m.now())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import parses text produced by Export, or by any earlier schema version.
func (m *Manager) Import(text string) (*game.GameState, error) {
	if len(text) > maxSaveFileBytes {
		return nil, fmt.Errorf("%w: import exceeds %d bytes", ErrCorrupt, maxSaveFileBytes)
	}
	return Decode([]byte(text))
}

// LoadOrNew loads the primary save, falling back to its backup and then to a
// fresh state. It never fails.
func (m *Manager) LoadOrNew(name string) (*game.GameState, Recovery) {
	return m.loadOrNew(m.PrimaryPath(), name)
}

func (m *Manager) loadOrNew(path, name string) (*game.GameState, Recovery) {
	entry := m.log.WithField("path", path)
	state, err := m.LoadFrom(path)
	if err == nil {
		return state, RecoveredPrimary
	}
	if !errors.Is(err, ErrNotFound) {
		entry.WithError(err).Warn("save unreadable, trying backup")
	}

	backup, berr := m.LoadFrom(path + backupSuffix)
	if berr == nil {
		entry.Info("restored from backup")
		return backup, RecoveredBackup
	}
	if !errors.Is(berr, ErrNotFound) {
		entry.WithError(berr).Warn("no usable backup, starting fresh")
	}
	return game.NewGameState(name), RecoveredFresh
}

// Target binds a Manager to one save file so a session can checkpoint to it.
type Target struct {
	m    *Manager
	path string
}

func (m *Manager) Target(slot int) (Target, error) {
	if slot < 0 {
		return Target{m: m, path: m.PrimaryPath()}, nil
	}
	path, err := m.SlotPath(slot)
	if err != nil {
		return Target{}, err
	}
	return Target{m: m, path: path}, nil
}

func (t Target) Path() string { return t.path }

func (t Target) Save(state *game.GameState) error {
	return t.m.SaveTo(t.path, state)
}

func (t Target) Load() (*game.GameState, error) {
	return t.m.LoadFrom(t.path)
}

func (t Target) LoadOrNew(name string) (*game.GameState, Recovery) {
	return t.m.loadOrNew(t.path, name)
}
