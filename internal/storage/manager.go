package storage

import (
	"os"
	"path/filepath"
	"strings"

	"videocrawl/internal/model"
	"videocrawl/pkg/validator"
)

// UnknownChannel names the directory for records without a channel name
const UnknownChannel = "unknown_channel"

const sidecarSuffix = "_info.json"

// Manager lays out downloaded media under a root directory:
// <root>/<channel>/<title>_<id>.<ext>, with a <title>_<id>_info.json sidecar.
type Manager struct {
	root string
}

// NewManager creates a new storage manager
func NewManager(root string) *Manager {
	if root == "" {
		root = "."
	}
	return &Manager{root: root}
}

// Root returns the output directory
func (m *Manager) Root() string {
	return m.root
}

// EnsureDir creates dir and its parents
func (m *Manager) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// ChannelDir returns the per-channel directory for a record
func (m *Manager) ChannelDir(rec *model.Record) string {
	name := validator.SanitizeFilename(rec.Channel.Name)
	// "." and ".." would resolve to the root or its parent
	if strings.Trim(name, ".") == "" {
		name = UnknownChannel
	}
	return filepath.Join(m.root, name)
}

// MediaPath returns where the media file for rec is written
func (m *Manager) MediaPath(rec *model.Record, ext string) string {
	return filepath.Join(m.ChannelDir(rec), m.baseName(rec)+"."+ext)
}

// SidecarPath returns where the metadata copy for rec is written
func (m *Manager) SidecarPath(rec *model.Record) string {
	return filepath.Join(m.ChannelDir(rec), m.baseName(rec)+sidecarSuffix)
}

// Exists reports whether path is an existing regular file
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (m *Manager) baseName(rec *model.Record) string {
	title := validator.SanitizeFilename(rec.Title)
	if title == "" {
		title = rec.VideoID
	}
	return title + "_" + rec.VideoID
}
