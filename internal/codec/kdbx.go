package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/models"
	"github.com/google/uuid"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
)

const (
	kdbxExtension = ".kdbx"

	keyTitle    = "Title"
	keyUserName = "UserName"
	keyPassword = "Password"
	keyURL      = "URL"
	keyNotes    = "Notes"

	keyEmail            = "Email"
	keyAutoType         = "AutoType"
	keyRunCommand       = "RunCommand"
	keyPasswordModified = "PasswordModified"

	metaLastSaveTime = "psafecache.LastSaveTime"
	metaLastSaveHost = "psafecache.LastSaveHost"
	metaLastSaveUser = "psafecache.LastSaveUser"

	groupSeparator = "."
)

// kdbxSignature is the fixed file prefix of every KeePass 2.x database.
var kdbxSignature = []byte{0x03, 0xD9, 0xA2, 0x9A, 0x67, 0xFB, 0x4B, 0xB5}

// KDBXOptions tunes the KeePass codec.
type KDBXOptions struct {
	// AppName is written as the container generator on every save.
	AppName string

	// LockTimeout bounds how long Lock waits for a busy container.
	LockTimeout time.Duration

	// LockRetryDelay is the polling interval while waiting for the lock.
	LockRetryDelay time.Duration
}

type kdbxCodec struct {
	opts   KDBXOptions
	logger *logger.Logger
}

// NewKDBXCodec returns a Codec for KeePass KDBX files.
func NewKDBXCodec(opts KDBXOptions, log *logger.Logger) Codec {
	if opts.LockRetryDelay <= 0 {
		opts.LockRetryDelay = 50 * time.Millisecond
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 10 * time.Second
	}
	if opts.AppName == "" {
		opts.AppName = "psafecache"
	}
	return &kdbxCodec{opts: opts, logger: log}
}

func (c *kdbxCodec) Extension() string {
	return kdbxExtension
}

func (c *kdbxCodec) Locker(path string) Locker {
	return newFileLock(path, c.opts.LockTimeout, c.opts.LockRetryDelay)
}

func (c *kdbxCodec) Probe(path string) error {
	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return checkSignature(f)
}

func (c *kdbxCodec) Open(ctx context.Context, path, password string, mode Mode) (Handle, error) {
	log := logger.FromContext(ctx)

	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err = checkSignature(f); err != nil {
		log.Err(err).Str("func", "kdbxCodec.Open").Str("path", path).Msg("bad container signature")
		return nil, err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	if err = decode(f, db); err != nil {
		log.Debug().Err(err).Str("func", "kdbxCodec.Open").Str("path", path).Msg("failed to decrypt container")
		return nil, err
	}
	if err = db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if db.Content == nil || db.Content.Root == nil || len(db.Content.Root.Groups) == 0 {
		return nil, fmt.Errorf("%w: no root group", ErrCorrupt)
	}

	h := c.newHandle(path, mode, db)
	h.load()
	return h, nil
}

// decode runs the KeePass decoder and sorts its failures into a bad
// credential or a damaged container. The decoder panics on some malformed
// payloads (short cipher blocks, bad block lengths).
func decode(r io.Reader, db *gokeepasslib.Database) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrCorrupt, rec)
		}
	}()

	if err = gokeepasslib.NewDecoder(r).Decode(db); err != nil {
		if isCredentialError(err) {
			return fmt.Errorf("%w: %w", ErrBadCredential, err)
		}
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}

// isCredentialError reports whether the decoder rejected the key rather than
// the data. gokeepasslib keeps its header HMAC and start-bytes errors
// unexported; both messages open with "Wrong password?".
func isCredentialError(err error) bool {
	if errors.Is(err, gokeepasslib.ErrInvalidDatabaseOrCredentials) {
		return true
	}
	return strings.HasPrefix(err.Error(), "Wrong password?")
}

func (c *kdbxCodec) Create(ctx context.Context, path, password string, header models.Header) (Handle, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("error creating container directory: %w", err)
	}

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content = gokeepasslib.NewContent()
	db.Content.Meta.CustomData = []gokeepasslib.CustomData{}

	root := gokeepasslib.NewGroup()
	root.Name = header.Name
	root.UUID = gokeepasslib.NewUUID()
	db.Content.Root = &gokeepasslib.RootData{
		Groups: []gokeepasslib.Group{root},
	}

	h := c.newHandle(path, ReadWrite, db)
	h.load()
	h.SetHeader(header)
	if err := h.Save(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *kdbxCodec) newHandle(path string, mode Mode, db *gokeepasslib.Database) *kdbxHandle {
	return &kdbxHandle{
		path: path,
		mode: mode,
		db:   db,
		lock: newFileLock(path, c.opts.LockTimeout, c.opts.LockRetryDelay),
		opts: c.opts,
	}
}

type kdbxHandle struct {
	path string
	mode Mode
	opts KDBXOptions

	db      *gokeepasslib.Database
	entries []*Entry
	header  models.Header

	// groups remembers every group below the root by path, so groups keep
	// their identity and attributes across saves.
	groups     map[string]gokeepasslib.Group
	groupOrder []string

	lock *fileLock
}

func (h *kdbxHandle) Lock(ctx context.Context) error { return h.lock.Lock(ctx) }

func (h *kdbxHandle) Unlock() error { return h.lock.Unlock() }

func (h *kdbxHandle) Path() string { return h.path }

func (h *kdbxHandle) Mode() Mode { return h.mode }

func (h *kdbxHandle) ContainerUUID() string {
	return uuid.UUID(h.db.Content.Root.Groups[0].UUID).String()
}

func (h *kdbxHandle) Header() models.Header { return h.header }

func (h *kdbxHandle) SetHeader(header models.Header) { h.header = header }

func (h *kdbxHandle) Entries() []*Entry { return h.entries }

func (h *kdbxHandle) InsertEntry(index int, e *Entry) {
	index = max(0, min(index, len(h.entries)))
	h.entries = append(h.entries, nil)
	copy(h.entries[index+1:], h.entries[index:])
	h.entries[index] = e
}

func (h *kdbxHandle) RemoveEntry(e *Entry) bool {
	for i, cur := range h.entries {
		if cur == e {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (h *kdbxHandle) Save(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if h.mode != ReadWrite {
		return ErrReadOnly
	}

	h.stampLastSave()
	h.store()

	if err := h.db.LockProtectedEntries(); err != nil {
		return fmt.Errorf("error locking protected values: %w", err)
	}
	defer func() {
		if err := h.db.UnlockProtectedEntries(); err != nil {
			log.Warn().Err(err).Str("func", "kdbxHandle.Save").Msg("failed to unlock protected values after save")
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(h.path), ".psafecache-*"+kdbxExtension)
	if err != nil {
		return fmt.Errorf("error creating temp container: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err = gokeepasslib.NewEncoder(tmp).Encode(h.db); err != nil {
		tmp.Close()
		log.Err(err).Str("func", "kdbxHandle.Save").Str("path", h.path).Msg("failed to encode container")
		return fmt.Errorf("error encoding container: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing container: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing container: %w", err)
	}
	if err = os.Rename(tmpName, h.path); err != nil {
		return fmt.Errorf("error replacing container: %w", err)
	}

	log.Debug().Str("func", "kdbxHandle.Save").Str("path", h.path).Int("entries", len(h.entries)).Msg("container saved")
	return nil
}

func (h *kdbxHandle) stampLastSave() {
	h.header.LastSaveTime = time.Now().UTC()
	h.header.LastSaveApp = h.opts.AppName
	if host, err := os.Hostname(); err == nil {
		h.header.LastSaveHost = host
	}
	if h.header.LastSaveUser != "" {
		return
	}
	if u, err := user.Current(); err == nil {
		h.header.LastSaveUser = u.Username
	}
}

// load flattens the decoded group tree into the entry list and header.
func (h *kdbxHandle) load() {
	meta := h.db.Content.Meta
	if meta == nil {
		meta = gokeepasslib.NewMetaData()
		h.db.Content.Meta = meta
	}
	h.header = models.Header{
		Name:         meta.DatabaseName,
		Description:  meta.DatabaseDescription,
		LastSaveApp:  meta.Generator,
		LastSaveHost: customData(meta, metaLastSaveHost),
		LastSaveUser: customData(meta, metaLastSaveUser),
	}
	if ts := customData(meta, metaLastSaveTime); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			h.header.LastSaveTime = t
		}
	}

	h.groups = make(map[string]gokeepasslib.Group)
	h.groupOrder = nil
	h.entries = nil

	root := h.db.Content.Root.Groups[0]
	h.walk(nil, root)
}

func (h *kdbxHandle) walk(path []string, g gokeepasslib.Group) {
	groupPath := strings.Join(path, groupSeparator)
	for _, raw := range g.Entries {
		h.entries = append(h.entries, entryFromKDBX(groupPath, raw))
	}
	for _, sub := range g.Groups {
		subPath := append(append([]string{}, path...), sub.Name)
		key := strings.Join(subPath, groupSeparator)
		if _, seen := h.groups[key]; !seen {
			tmpl := sub
			tmpl.Entries = nil
			tmpl.Groups = nil
			h.groups[key] = tmpl
			h.groupOrder = append(h.groupOrder, key)
		}
		h.walk(subPath, sub)
	}
}

// store rebuilds the group tree and meta data from the entry list.
func (h *kdbxHandle) store() {
	meta := h.db.Content.Meta
	meta.DatabaseName = h.header.Name
	meta.DatabaseDescription = h.header.Description
	meta.Generator = h.header.LastSaveApp
	meta.CustomData = setCustomData(meta.CustomData, metaLastSaveTime, h.header.LastSaveTime.UTC().Format(time.RFC3339Nano))
	meta.CustomData = setCustomData(meta.CustomData, metaLastSaveHost, h.header.LastSaveHost)
	meta.CustomData = setCustomData(meta.CustomData, metaLastSaveUser, h.header.LastSaveUser)

	root := &groupNode{group: h.db.Content.Root.Groups[0]}
	root.group.Entries = nil
	root.group.Groups = nil
	root.group.Name = h.header.Name

	for _, key := range h.groupOrder {
		h.ensureGroup(root, key)
	}
	for _, e := range h.entries {
		node := h.ensureGroup(root, e.group)
		node.group.Entries = append(node.group.Entries, entryToKDBX(e))
	}

	h.db.Content.Root.Groups[0] = root.build()
}

func (h *kdbxHandle) ensureGroup(root *groupNode, path string) *groupNode {
	if path == "" {
		return root
	}
	node := root
	parts := strings.Split(path, groupSeparator)
	for i, name := range parts {
		key := strings.Join(parts[:i+1], groupSeparator)
		child, ok := node.children[name]
		if !ok {
			g, known := h.groups[key]
			if !known {
				g = gokeepasslib.NewGroup()
				g.Name = name
				h.groups[key] = g
				h.groupOrder = append(h.groupOrder, key)
			}
			child = &groupNode{group: g}
			node.add(name, child)
		}
		node = child
	}
	return node
}

type groupNode struct {
	group    gokeepasslib.Group
	order    []string
	children map[string]*groupNode
}

func (n *groupNode) add(name string, child *groupNode) {
	if n.children == nil {
		n.children = make(map[string]*groupNode)
	}
	n.children[name] = child
	n.order = append(n.order, name)
}

func (n *groupNode) build() gokeepasslib.Group {
	g := n.group
	g.Groups = make([]gokeepasslib.Group, 0, len(n.order))
	for _, name := range n.order {
		g.Groups = append(g.Groups, n.children[name].build())
	}
	return g
}

func entryFromKDBX(group string, raw gokeepasslib.Entry) *Entry {
	e := &Entry{
		uuid:       uuid.UUID(raw.UUID).String(),
		group:      group,
		title:      raw.GetContent(keyTitle),
		username:   raw.GetContent(keyUserName),
		password:   raw.GetContent(keyPassword),
		url:        raw.GetContent(keyURL),
		notes:      raw.GetContent(keyNotes),
		email:      raw.GetContent(keyEmail),
		autoType:   raw.GetContent(keyAutoType),
		runCommand: raw.GetContent(keyRunCommand),
		created:    timeOf(raw.Times.CreationTime),
		accessed:   timeOf(raw.Times.LastAccessTime),
		expires:    timeOf(raw.Times.ExpiryTime),
		modified:   timeOf(raw.Times.LastModificationTime),
		native:     raw,
	}
	if ts := raw.GetContent(keyPasswordModified); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.passwordModified = t.UTC()
		}
	}

	for _, hist := range raw.Histories {
		for _, old := range hist.Entries {
			e.history = append(e.history, models.HistoryItem{
				Password:     old.GetContent(keyPassword),
				CreationTime: timeOf(old.Times.LastModificationTime),
			})
		}
	}
	e.stored = len(e.history)
	return e
}

func entryToKDBX(e *Entry) gokeepasslib.Entry {
	raw, ok := e.native.(gokeepasslib.Entry)
	if !ok {
		raw = gokeepasslib.NewEntry()
	}
	if u, err := uuid.Parse(e.uuid); err == nil {
		raw.UUID = gokeepasslib.UUID(u)
	}
	// Snapshots of pushed passwords carry the attributes the entry had
	// before this save.
	previous := append([]gokeepasslib.ValueData(nil), raw.Values...)
	raw.Values = append([]gokeepasslib.ValueData(nil), raw.Values...)

	var passwordModified string
	if !e.passwordModified.IsZero() {
		passwordModified = e.passwordModified.UTC().Format(time.RFC3339Nano)
	}
	for _, kv := range [][2]string{
		{keyTitle, e.title},
		{keyUserName, e.username},
		{keyURL, e.url},
		{keyNotes, e.notes},
		{keyEmail, e.email},
		{keyAutoType, e.autoType},
		{keyRunCommand, e.runCommand},
		{keyPasswordModified, passwordModified},
	} {
		raw.Values = setValue(raw.Values, kv[0], kv[1], false)
	}
	raw.Values = setValue(raw.Values, keyPassword, e.password, true)

	raw.Times.CreationTime = timeWrapper(e.created)
	raw.Times.LastAccessTime = timeWrapper(e.accessed)
	raw.Times.LastModificationTime = timeWrapper(e.modified)
	raw.Times.ExpiryTime = timeWrapper(e.expires)

	if pushed := e.history[min(e.stored, len(e.history)):]; len(pushed) > 0 {
		if len(raw.Histories) == 0 {
			raw.Histories = []gokeepasslib.History{{}}
		} else {
			raw.Histories = append([]gokeepasslib.History(nil), raw.Histories...)
		}
		last := &raw.Histories[len(raw.Histories)-1]
		last.Entries = append([]gokeepasslib.Entry(nil), last.Entries...)
		for _, item := range pushed {
			old := gokeepasslib.NewEntry()
			old.UUID = raw.UUID
			old.Values = append([]gokeepasslib.ValueData(nil), previous...)
			if len(old.Values) == 0 {
				old.Values = setValue(old.Values, keyTitle, e.title, false)
			}
			old.Values = setValue(old.Values, keyPassword, item.Password, true)
			old.Times.CreationTime = raw.Times.CreationTime
			old.Times.LastModificationTime = timeWrapper(item.CreationTime)
			last.Entries = append(last.Entries, old)
		}
	}
	e.stored = len(e.history)

	e.native = raw
	return raw
}

func setValue(values []gokeepasslib.ValueData, key, content string, protected bool) []gokeepasslib.ValueData {
	v := gokeepasslib.V{Content: content}
	if protected {
		v.Protected = w.NewBoolWrapper(true)
	}
	for i := range values {
		if values[i].Key == key {
			values[i].Value = v
			return values
		}
	}
	if content == "" && !protected {
		return values
	}
	return append(values, gokeepasslib.ValueData{Key: key, Value: v})
}

func customData(meta *gokeepasslib.MetaData, key string) string {
	for _, item := range meta.CustomData {
		if item.Key == key {
			return item.Value
		}
	}
	return ""
}

func setCustomData(items []gokeepasslib.CustomData, key, value string) []gokeepasslib.CustomData {
	for i := range items {
		if items[i].Key == key {
			items[i].Value = value
			return items
		}
	}
	return append(items, gokeepasslib.CustomData{Key: key, Value: value})
}

func timeOf(tw *w.TimeWrapper) time.Time {
	if tw == nil {
		return time.Time{}
	}
	return tw.Time.UTC()
}

func timeWrapper(t time.Time) *w.TimeWrapper {
	if t.IsZero() {
		return nil
	}
	return &w.TimeWrapper{Time: t.UTC()}
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
}

func checkSignature(r io.Reader) error {
	sig := make([]byte, len(kdbxSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if !bytes.Equal(sig, kdbxSignature) {
		return ErrCorrupt
	}
	return nil
}
